package repository_test

import (
	"testing"
	"time"

	"github.com/antinvestor/service-fileshare/internal/tests"
	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/pitabwire/frame/frametests/definition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuditRepositoryTestSuite struct {
	tests.BaseTestSuite
}

func TestAuditRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(AuditRepositoryTestSuite))
}

func (suite *AuditRepositoryTestSuite) TestAppendAndOrder() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		repo := repository.NewAuditRepository(svc)

		owner := createTestUser(t, ctx, svc, "audit-owner")
		file := createTestFile(t, ctx, svc, owner.GetID(), "audit.txt")

		for _, action := range []types.Action{types.ActionUpload, types.ActionShare, types.ActionDownload} {
			err := repo.Append(ctx, &models.AuditEntry{
				FileID:  file.GetID(),
				ActorID: owner.GetID(),
				Role:    string(types.RoleOwner),
				Action:  string(action),
			})
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
		}

		entries, err := repo.GetByFileID(ctx, file.GetID())
		require.NoError(t, err)
		require.Len(t, entries, 3)

		// Newest first.
		assert.Equal(t, string(types.ActionDownload), entries[0].Action)
		assert.Equal(t, string(types.ActionUpload), entries[2].Action)
	})
}

func (suite *AuditRepositoryTestSuite) TestTrailSurvivesGrantRemoval() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		auditRepo := repository.NewAuditRepository(svc)
		grantRepo := repository.NewGrantRepository(svc)

		owner := createTestUser(t, ctx, svc, "trail-owner")
		grantee := createTestUser(t, ctx, svc, "trail-grantee")
		file := createTestFile(t, ctx, svc, owner.GetID(), "trail.txt")

		_, err := grantRepo.CreateUserGrants(ctx, file.GetID(), []string{grantee.GetID()}, nil, nil)
		require.NoError(t, err)

		err = auditRepo.Append(ctx, &models.AuditEntry{
			FileID:  file.GetID(),
			ActorID: grantee.GetID(),
			Role:    string(types.RoleViewer),
			Action:  string(types.ActionDownload),
		})
		require.NoError(t, err)

		err = grantRepo.DeleteByFileID(ctx, file.GetID())
		require.NoError(t, err)

		entries, err := auditRepo.GetByFileID(ctx, file.GetID())
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
