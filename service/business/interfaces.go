package business

import (
	"context"
	"io"
	"time"

	"github.com/antinvestor/service-fileshare/service/types"
)

// Decision is the outcome of one authorization check. Reason carries the
// deny cause from the error taxonomy and is nil when access is allowed.
type Decision struct {
	Allow  bool
	Role   types.Role
	Reason error
}

// AuthRequest identifies an already-authenticated actor, the file acted on
// and the intended action. Token is set only on the share-link path.
type AuthRequest struct {
	ActorID string
	FileID  string
	Action  types.Action
	Token   string
}

type AuthorizationEngine interface {
	Authorize(ctx context.Context, req *AuthRequest) (*Decision, error)
}

// ShareResult reconciles a user share request: grantees that already held
// an active grant are reported, not treated as failures, so callers can
// surface partial success.
type ShareResult struct {
	SharedCount   int                 `json:"sharedCount"`
	AlreadyShared []*types.UserRecord `json:"alreadyShared"`
}

type ShareService interface {
	ShareWithUsers(ctx context.Context, ownerID string, fileID string, granteeIDs []string, expiresAt *time.Time) (*ShareResult, error)
	CreateShareLink(ctx context.Context, ownerID string, fileID string, expiresAt *time.Time) (string, error)
	ListShares(ctx context.Context, ownerID string, fileID string) ([]*types.ShareRecord, error)
}

type UploadRequest struct {
	OwnerID     string
	Filename    string
	ContentType string
	Data        io.Reader
}

type DownloadResult struct {
	File *types.FileRecord
	Data io.Reader
	// Cleanup releases the underlying storage reader and must be called
	// once the data has been consumed.
	Cleanup func()
}

// AccessGateway is the single enforcement point for every file-affecting
// operation. Each allowed upload, download, share and share_link action
// appends exactly one audit entry carrying the role the actor held.
type AccessGateway interface {
	Upload(ctx context.Context, req *UploadRequest) (*types.FileRecord, error)
	Download(ctx context.Context, actorID string, fileID string) (*DownloadResult, error)
	DownloadByToken(ctx context.Context, actorID string, token string) (*DownloadResult, error)
	GetInfo(ctx context.Context, actorID string, fileID string) (*types.FileRecord, error)
	GetInfoByToken(ctx context.Context, actorID string, token string) (*types.FileRecord, error)
	GetAuditLog(ctx context.Context, ownerID string, fileID string) ([]*types.AuditRecord, error)
	Delete(ctx context.Context, ownerID string, fileID string) error
	ListOwned(ctx context.Context, actorID string) ([]*types.FileRecord, error)
	ListSharedWith(ctx context.Context, actorID string) ([]*types.FileRecord, error)
}
