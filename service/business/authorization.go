package business

import (
	"context"
	"time"

	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/pitabwire/frame"
)

type authorizationEngine struct {
	fileRepo  repository.FileRepository
	grantRepo repository.GrantRepository
}

func NewAuthorizationEngine(fileRepo repository.FileRepository, grantRepo repository.GrantRepository) AuthorizationEngine {
	return &authorizationEngine{
		fileRepo:  fileRepo,
		grantRepo: grantRepo,
	}
}

// ownerOnly actions are decided solely on ownership; grant state is never
// consulted so their denial cannot leak whether grants exist.
func ownerOnly(action types.Action) bool {
	switch action {
	case types.ActionUpload, types.ActionShare, types.ActionShareLink,
		types.ActionListShares, types.ActionAuditLog, types.ActionDelete:
		return true
	}
	return false
}

func deny(reason error) *Decision {
	return &Decision{Allow: false, Role: types.RoleNone, Reason: reason}
}

func allow(role types.Role) *Decision {
	return &Decision{Allow: true, Role: role}
}

func (ae *authorizationEngine) Authorize(ctx context.Context, req *AuthRequest) (*Decision, error) {

	file, err := ae.fileRepo.GetByID(ctx, req.FileID)
	if err != nil {
		if !frame.ErrorIsNoRows(err) {
			return nil, err
		}
		// A missing file is indistinguishable from a forbidden one.
		if req.Token != "" {
			return deny(types.ErrInvalidOrExpiredLink), nil
		}
		return deny(types.ErrForbidden), nil
	}

	// Ownership always wins, regardless of grant state; an owner is never
	// locked out of their own file.
	if req.ActorID != "" && req.ActorID == file.OwnerID {
		return allow(types.RoleOwner), nil
	}

	if ownerOnly(req.Action) {
		return deny(types.ErrForbidden), nil
	}

	now := time.Now()

	if req.Token != "" {
		// Bearer possession alone is insufficient: the caller must also be
		// an authenticated account holder.
		if req.ActorID == "" {
			return deny(types.ErrForbidden), nil
		}

		grant, resolveErr := ae.grantRepo.ResolveByToken(ctx, req.Token)
		if resolveErr != nil {
			if frame.ErrorIsNoRows(resolveErr) {
				return deny(types.ErrInvalidOrExpiredLink), nil
			}
			return nil, resolveErr
		}

		if grant.FileID != req.FileID || !grant.IsActive(now) {
			return deny(types.ErrInvalidOrExpiredLink), nil
		}

		return allow(types.RoleViewer), nil
	}

	if req.ActorID == "" {
		return deny(types.ErrForbidden), nil
	}

	grants, err := ae.grantRepo.GetUserGrants(ctx, req.FileID, req.ActorID)
	if err != nil {
		return nil, err
	}

	expired := false
	for _, grant := range grants {
		if grant.IsActive(now) {
			return allow(types.RoleViewer), nil
		}
		expired = true
	}

	if expired {
		return deny(types.ErrGrantExpired), nil
	}

	return deny(types.ErrNotShared), nil
}
