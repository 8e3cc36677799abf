package repository

import (
	"context"

	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/pitabwire/frame"
)

func Migrate(ctx context.Context, svc *frame.Service, migrationPath string) error {
	return svc.MigrateDatastore(ctx, migrationPath,
		&models.User{}, &models.File{}, &models.ShareGrant{}, &models.AuditEntry{})
}
