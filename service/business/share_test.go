package business_test

import (
	"testing"
	"time"

	"github.com/antinvestor/service-fileshare/internal/tests"
	"github.com/antinvestor/service-fileshare/service/business"
	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/frametests/definition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ShareServiceTestSuite struct {
	tests.BaseTestSuite
}

func TestShareServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShareServiceTestSuite))
}

func newShareService(svc *frame.Service) (business.ShareService, repository.AuditRepository) {
	fileRepo := repository.NewFileRepository(svc)
	grantRepo := repository.NewGrantRepository(svc)
	userRepo := repository.NewUserRepository(svc)
	auditRepo := repository.NewAuditRepository(svc)
	engine := business.NewAuthorizationEngine(fileRepo, grantRepo)
	return business.NewShareService(engine, grantRepo, userRepo), auditRepo
}

func (suite *ShareServiceTestSuite) TestShareWithUsers() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		shares, auditRepo := newShareService(svc)

		owner := newTestUser(t, ctx, svc, "share-owner")
		alice := newTestUser(t, ctx, svc, "share-alice")
		bob := newTestUser(t, ctx, svc, "share-bob")
		file := newTestFile(t, ctx, svc, owner.GetID(), "share.txt")

		result, err := shares.ShareWithUsers(ctx, owner.GetID(), file.GetID(),
			[]string{alice.GetID(), bob.GetID(), alice.GetID()}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result.SharedCount)
		assert.Empty(t, result.AlreadyShared)

		// Repeat shares reconcile and report the holders, not an error.
		result, err = shares.ShareWithUsers(ctx, owner.GetID(), file.GetID(),
			[]string{alice.GetID()}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.SharedCount)
		require.Len(t, result.AlreadyShared, 1)
		assert.Equal(t, alice.GetID(), result.AlreadyShared[0].ID)

		// Each completed share request lands exactly one audit entry.
		entries, err := auditRepo.GetByFileID(ctx, file.GetID())
		require.NoError(t, err)
		shareEntries := 0
		for _, entry := range entries {
			if entry.Action == string(types.ActionShare) {
				shareEntries++
				assert.Equal(t, owner.GetID(), entry.ActorID)
				assert.Equal(t, string(types.RoleOwner), entry.Role)
			}
		}
		assert.Equal(t, 2, shareEntries)
	})
}

func (suite *ShareServiceTestSuite) TestShareWithUsersRejections() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		shares, _ := newShareService(svc)

		owner := newTestUser(t, ctx, svc, "sharefail-owner")
		alice := newTestUser(t, ctx, svc, "sharefail-alice")
		file := newTestFile(t, ctx, svc, owner.GetID(), "sharefail.txt")

		_, err := shares.ShareWithUsers(ctx, owner.GetID(), file.GetID(), nil, nil)
		assert.ErrorIs(t, err, types.ErrEmptyGranteeSet)

		_, err = shares.ShareWithUsers(ctx, owner.GetID(), file.GetID(), []string{owner.GetID()}, nil)
		assert.ErrorIs(t, err, types.ErrSelfShare)

		_, err = shares.ShareWithUsers(ctx, owner.GetID(), file.GetID(), []string{"ghost"}, nil)
		assert.ErrorIs(t, err, types.ErrInvalidGrantee)

		// Only the owner may share.
		_, err = shares.ShareWithUsers(ctx, alice.GetID(), file.GetID(), []string{alice.GetID()}, nil)
		assert.ErrorIs(t, err, types.ErrForbidden)
	})
}

func (suite *ShareServiceTestSuite) TestCreateShareLink() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		shares, auditRepo := newShareService(svc)

		owner := newTestUser(t, ctx, svc, "link-owner")
		outsider := newTestUser(t, ctx, svc, "link-outsider")
		file := newTestFile(t, ctx, svc, owner.GetID(), "link.txt")

		token, err := shares.CreateShareLink(ctx, owner.GetID(), file.GetID(), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		// Reuse hands back the outstanding token and is not re-audited.
		again, err := shares.CreateShareLink(ctx, owner.GetID(), file.GetID(), nil)
		require.NoError(t, err)
		assert.Equal(t, token, again)

		entries, err := auditRepo.GetByFileID(ctx, file.GetID())
		require.NoError(t, err)
		linkEntries := 0
		for _, entry := range entries {
			if entry.Action == string(types.ActionShareLink) {
				linkEntries++
			}
		}
		assert.Equal(t, 1, linkEntries)

		_, err = shares.CreateShareLink(ctx, outsider.GetID(), file.GetID(), nil)
		assert.ErrorIs(t, err, types.ErrForbidden)
	})
}

func (suite *ShareServiceTestSuite) TestListShares() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		shares, _ := newShareService(svc)

		owner := newTestUser(t, ctx, svc, "list-owner")
		alice := newTestUser(t, ctx, svc, "list-alice")
		outsider := newTestUser(t, ctx, svc, "list-outsider")
		file := newTestFile(t, ctx, svc, owner.GetID(), "list.txt")

		past := time.Now().Add(-time.Hour)
		_, err := shares.ShareWithUsers(ctx, owner.GetID(), file.GetID(), []string{alice.GetID()}, &past)
		require.NoError(t, err)

		token, err := shares.CreateShareLink(ctx, owner.GetID(), file.GetID(), nil)
		require.NoError(t, err)

		// Expired grants are listed too so the owner can see history.
		shareList, err := shares.ListShares(ctx, owner.GetID(), file.GetID())
		require.NoError(t, err)
		require.Len(t, shareList, 2)

		var sawLink bool
		for _, share := range shareList {
			if share.ShareToken != "" {
				sawLink = true
				assert.Equal(t, token, share.ShareToken)
			}
		}
		assert.True(t, sawLink)

		_, err = shares.ListShares(ctx, outsider.GetID(), file.GetID())
		assert.ErrorIs(t, err, types.ErrForbidden)
	})
}
