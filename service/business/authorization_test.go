package business_test

import (
	"context"
	"testing"
	"time"

	"github.com/antinvestor/service-fileshare/internal/tests"
	"github.com/antinvestor/service-fileshare/service/business"
	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/frametests/definition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthorizationEngineTestSuite struct {
	tests.BaseTestSuite
}

func TestAuthorizationEngineTestSuite(t *testing.T) {
	suite.Run(t, new(AuthorizationEngineTestSuite))
}

func newTestUser(t *testing.T, ctx context.Context, svc *frame.Service, username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
	}
	err := repository.NewUserRepository(svc).Save(ctx, user)
	require.NoError(t, err)
	return user
}

func newTestFile(t *testing.T, ctx context.Context, svc *frame.Service, ownerID string, name string) *models.File {
	file := &models.File{
		OwnerID:      ownerID,
		Name:         name,
		OriginalName: name,
		Ext:          "txt",
		Size:         32,
		Mimetype:     "text/plain",
		BucketName:   "fileshare",
		Provider:     "MEM",
	}
	err := repository.NewFileRepository(svc).Save(ctx, file)
	require.NoError(t, err)
	return file
}

func (suite *AuthorizationEngineTestSuite) TestOwnerSupremacy() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		engine := business.NewAuthorizationEngine(
			repository.NewFileRepository(svc), repository.NewGrantRepository(svc))

		owner := newTestUser(t, ctx, svc, "authz-owner")
		file := newTestFile(t, ctx, svc, owner.GetID(), "supremacy.txt")

		for _, action := range []types.Action{
			types.ActionDownload, types.ActionInfo, types.ActionShare,
			types.ActionShareLink, types.ActionListShares, types.ActionAuditLog,
			types.ActionDelete,
		} {
			decision, err := engine.Authorize(ctx, &business.AuthRequest{
				ActorID: owner.GetID(),
				FileID:  file.GetID(),
				Action:  action,
			})
			require.NoError(t, err)
			assert.True(t, decision.Allow, "owner denied %s", action)
			assert.Equal(t, types.RoleOwner, decision.Role)
		}
	})
}

func (suite *AuthorizationEngineTestSuite) TestGranteeAccess() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		grantRepo := repository.NewGrantRepository(svc)
		engine := business.NewAuthorizationEngine(repository.NewFileRepository(svc), grantRepo)

		owner := newTestUser(t, ctx, svc, "grantee-owner")
		grantee := newTestUser(t, ctx, svc, "grantee-viewer")
		stranger := newTestUser(t, ctx, svc, "grantee-stranger")
		file := newTestFile(t, ctx, svc, owner.GetID(), "grantee.txt")

		_, err := grantRepo.CreateUserGrants(ctx, file.GetID(), []string{grantee.GetID()}, nil, nil)
		require.NoError(t, err)

		decision, err := engine.Authorize(ctx, &business.AuthRequest{
			ActorID: grantee.GetID(), FileID: file.GetID(), Action: types.ActionDownload,
		})
		require.NoError(t, err)
		assert.True(t, decision.Allow)
		assert.Equal(t, types.RoleViewer, decision.Role)

		// A grant confers read access only; owner operations stay denied
		// without consulting grant state.
		decision, err = engine.Authorize(ctx, &business.AuthRequest{
			ActorID: grantee.GetID(), FileID: file.GetID(), Action: types.ActionShare,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrForbidden)

		// A user with no grant at all is not distinguishable from one denied.
		decision, err = engine.Authorize(ctx, &business.AuthRequest{
			ActorID: stranger.GetID(), FileID: file.GetID(), Action: types.ActionDownload,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrNotShared)
	})
}

func (suite *AuthorizationEngineTestSuite) TestExpiredGrant() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		grantRepo := repository.NewGrantRepository(svc)
		engine := business.NewAuthorizationEngine(repository.NewFileRepository(svc), grantRepo)

		owner := newTestUser(t, ctx, svc, "expiry-owner")
		grantee := newTestUser(t, ctx, svc, "expiry-grantee")
		file := newTestFile(t, ctx, svc, owner.GetID(), "expiry.txt")

		past := time.Now().Add(-time.Minute)
		_, err := grantRepo.CreateUserGrants(ctx, file.GetID(), []string{grantee.GetID()}, &past, nil)
		require.NoError(t, err)

		decision, err := engine.Authorize(ctx, &business.AuthRequest{
			ActorID: grantee.GetID(), FileID: file.GetID(), Action: types.ActionDownload,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrGrantExpired)

		// Re-sharing restores access; the expired row stays behind.
		_, err = grantRepo.CreateUserGrants(ctx, file.GetID(), []string{grantee.GetID()}, nil, nil)
		require.NoError(t, err)

		decision, err = engine.Authorize(ctx, &business.AuthRequest{
			ActorID: grantee.GetID(), FileID: file.GetID(), Action: types.ActionDownload,
		})
		require.NoError(t, err)
		assert.True(t, decision.Allow)
	})
}

func (suite *AuthorizationEngineTestSuite) TestTokenPath() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		grantRepo := repository.NewGrantRepository(svc)
		engine := business.NewAuthorizationEngine(repository.NewFileRepository(svc), grantRepo)

		owner := newTestUser(t, ctx, svc, "token-owner")
		redeemer := newTestUser(t, ctx, svc, "token-redeemer")
		file := newTestFile(t, ctx, svc, owner.GetID(), "token.txt")
		otherFile := newTestFile(t, ctx, svc, owner.GetID(), "other.txt")

		token, _, err := grantRepo.CreateOrReuseLinkGrant(ctx, file.GetID(), nil, nil)
		require.NoError(t, err)

		decision, err := engine.Authorize(ctx, &business.AuthRequest{
			ActorID: redeemer.GetID(), FileID: file.GetID(), Action: types.ActionDownload, Token: token,
		})
		require.NoError(t, err)
		assert.True(t, decision.Allow)
		assert.Equal(t, types.RoleViewer, decision.Role)

		// Token possession without authentication is not enough.
		decision, err = engine.Authorize(ctx, &business.AuthRequest{
			FileID: file.GetID(), Action: types.ActionDownload, Token: token,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrForbidden)

		// A token only opens the file it was minted for.
		decision, err = engine.Authorize(ctx, &business.AuthRequest{
			ActorID: redeemer.GetID(), FileID: otherFile.GetID(), Action: types.ActionDownload, Token: token,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrInvalidOrExpiredLink)

		// Unknown tokens fail the same way expired ones do.
		decision, err = engine.Authorize(ctx, &business.AuthRequest{
			ActorID: redeemer.GetID(), FileID: file.GetID(), Action: types.ActionDownload, Token: "bogus-token",
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrInvalidOrExpiredLink)
	})
}

func (suite *AuthorizationEngineTestSuite) TestMissingFile() {
	suite.WithTestDependancies(suite.T(), func(t *testing.T, dep *definition.DependancyOption) {
		svc, ctx := suite.CreateService(t, dep, "../../migrations/0001")

		engine := business.NewAuthorizationEngine(
			repository.NewFileRepository(svc), repository.NewGrantRepository(svc))

		actor := newTestUser(t, ctx, svc, "missing-actor")

		// Missing and forbidden files produce the same denial.
		decision, err := engine.Authorize(ctx, &business.AuthRequest{
			ActorID: actor.GetID(), FileID: "no-such-file", Action: types.ActionDownload,
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrForbidden)

		decision, err = engine.Authorize(ctx, &business.AuthRequest{
			ActorID: actor.GetID(), FileID: "no-such-file", Action: types.ActionDownload, Token: "some-token",
		})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
		assert.ErrorIs(t, decision.Reason, types.ErrInvalidOrExpiredLink)
	})
}
