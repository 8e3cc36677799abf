package repository

import (
	"context"

	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/pitabwire/frame"
)

// AuditRepository is append only. Entries are never updated or removed;
// the interface deliberately exposes no delete so the trail survives file
// and grant lifecycle changes.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	GetByFileID(ctx context.Context, fileID string) ([]*models.AuditEntry, error)
}

func NewAuditRepository(service *frame.Service) AuditRepository {
	auditRepo := auditRepository{
		service: service,
	}
	return &auditRepo
}

type auditRepository struct {
	service *frame.Service
}

func (ar *auditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	if entry.GetID() == "" {
		entry.GenID(ctx)
	}
	return ar.service.DB(ctx, false).Create(entry).Error
}

func (ar *auditRepository) GetByFileID(ctx context.Context, fileID string) ([]*models.AuditEntry, error) {
	entryList := make([]*models.AuditEntry, 0)
	err := ar.service.DB(ctx, true).
		Where(" file_id = ?", fileID).
		Order("created_at DESC").
		Find(&entryList).Error
	if err != nil {
		return nil, err
	}

	return entryList, nil
}
