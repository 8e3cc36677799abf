package business

import (
	"context"
	"time"

	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/pitabwire/util"
)

type shareService struct {
	authz     AuthorizationEngine
	grantRepo repository.GrantRepository
	userRepo  repository.UserRepository
}

func NewShareService(
	authz AuthorizationEngine,
	grantRepo repository.GrantRepository,
	userRepo repository.UserRepository,
) ShareService {
	return &shareService{
		authz:     authz,
		grantRepo: grantRepo,
		userRepo:  userRepo,
	}
}

func (ss *shareService) ShareWithUsers(ctx context.Context, ownerID string, fileID string, granteeIDs []string, expiresAt *time.Time) (*ShareResult, error) {

	if len(granteeIDs) == 0 {
		return nil, types.ErrEmptyGranteeSet
	}

	decision, err := ss.authz.Authorize(ctx, &AuthRequest{
		ActorID: ownerID,
		FileID:  fileID,
		Action:  types.ActionShare,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allow {
		return nil, decision.Reason
	}

	// The audit entry commits with the grants or not at all; a share is
	// never left behind without its trail.
	reconciliation, err := ss.grantRepo.CreateUserGrants(ctx, fileID, dedupe(granteeIDs), expiresAt, &models.AuditEntry{
		FileID:  fileID,
		ActorID: ownerID,
		Role:    string(decision.Role),
		Action:  string(types.ActionShare),
	})
	if err != nil {
		return nil, err
	}

	alreadyShared, err := ss.resolveUsers(ctx, reconciliation.AlreadyActive)
	if err != nil {
		return nil, err
	}

	util.Log(ctx).
		WithField("file_id", fileID).
		WithField("created", len(reconciliation.Created)).
		WithField("already_active", len(reconciliation.AlreadyActive)).
		Debug("file shared with users")

	return &ShareResult{
		SharedCount:   len(reconciliation.Created),
		AlreadyShared: alreadyShared,
	}, nil
}

func (ss *shareService) CreateShareLink(ctx context.Context, ownerID string, fileID string, expiresAt *time.Time) (string, error) {

	decision, err := ss.authz.Authorize(ctx, &AuthRequest{
		ActorID: ownerID,
		FileID:  fileID,
		Action:  types.ActionShareLink,
	})
	if err != nil {
		return "", err
	}
	if !decision.Allow {
		return "", decision.Reason
	}

	// The entry is recorded only when a fresh token is minted, in the
	// same transaction as the grant.
	token, _, err := ss.grantRepo.CreateOrReuseLinkGrant(ctx, fileID, expiresAt, &models.AuditEntry{
		FileID:  fileID,
		ActorID: ownerID,
		Role:    string(decision.Role),
		Action:  string(types.ActionShareLink),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func (ss *shareService) ListShares(ctx context.Context, ownerID string, fileID string) ([]*types.ShareRecord, error) {

	decision, err := ss.authz.Authorize(ctx, &AuthRequest{
		ActorID: ownerID,
		FileID:  fileID,
		Action:  types.ActionListShares,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allow {
		return nil, decision.Reason
	}

	grants, err := ss.grantRepo.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	shareList := make([]*types.ShareRecord, len(grants))
	for i, grant := range grants {
		shareList[i] = grant.ToApi()
	}

	return shareList, nil
}

func (ss *shareService) resolveUsers(ctx context.Context, ids []string) ([]*types.UserRecord, error) {
	userList := make([]*types.UserRecord, 0, len(ids))
	if len(ids) == 0 {
		return userList, nil
	}

	users, err := ss.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		userList = append(userList, user.ToApi())
	}

	return userList, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
