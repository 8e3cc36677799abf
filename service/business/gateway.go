package business

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/antinvestor/service-fileshare/config"
	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/storage"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/pitabwire/frame"
	"github.com/pitabwire/util"
	"github.com/pkg/errors"
)

type accessGateway struct {
	cfg       *config.FileshareConfig
	authz     AuthorizationEngine
	fileRepo  repository.FileRepository
	userRepo  repository.UserRepository
	grantRepo repository.GrantRepository
	auditRepo repository.AuditRepository
	provider  storage.Provider
}

func NewAccessGateway(
	cfg *config.FileshareConfig,
	authz AuthorizationEngine,
	fileRepo repository.FileRepository,
	userRepo repository.UserRepository,
	grantRepo repository.GrantRepository,
	auditRepo repository.AuditRepository,
	provider storage.Provider,
) AccessGateway {
	return &accessGateway{
		cfg:       cfg,
		authz:     authz,
		fileRepo:  fileRepo,
		userRepo:  userRepo,
		grantRepo: grantRepo,
		auditRepo: auditRepo,
		provider:  provider,
	}
}

func (ag *accessGateway) Upload(ctx context.Context, req *UploadRequest) (*types.FileRecord, error) {

	if req.OwnerID == "" {
		return nil, types.ErrForbidden
	}
	if req.Filename == "" {
		return nil, fmt.Errorf("invalid parameter: a file name is required")
	}

	file := &models.File{
		OwnerID:      req.OwnerID,
		OriginalName: req.Filename,
		Ext:          strings.TrimPrefix(filepath.Ext(req.Filename), "."),
		Mimetype:     req.ContentType,
		BucketName:   ag.provider.Bucket(),
		Provider:     ag.provider.Name(),
	}
	file.GenID(ctx)
	file.Name = file.GetID()
	if file.Ext != "" {
		file.Name = file.GetID() + "." + file.Ext
	}

	reader := req.Data
	if ag.cfg.MaxFileSizeBytes > 0 {
		reader = io.LimitReader(reader, int64(ag.cfg.MaxFileSizeBytes)+1)
	}

	hasher := sha256.New()
	written, err := ag.provider.UploadFile(ctx, file.BucketName, file.GetID(), io.TeeReader(reader, hasher))
	if err != nil {
		return nil, errors.Wrap(err, "storing file content")
	}

	if ag.cfg.MaxFileSizeBytes > 0 && written > int64(ag.cfg.MaxFileSizeBytes) {
		delErr := ag.provider.DeleteFile(ctx, file.BucketName, file.GetID())
		if delErr != nil {
			util.Log(ctx).WithError(delErr).Warn("failed to discard oversize upload")
		}
		return nil, fmt.Errorf("invalid parameter: upload is greater than the maximum allowed size (%d)", ag.cfg.MaxFileSizeBytes)
	}

	file.Size = written
	file.Hash = hex.EncodeToString(hasher.Sum(nil))

	err = ag.fileRepo.Save(ctx, file)
	if err != nil {
		delErr := ag.provider.DeleteFile(ctx, file.BucketName, file.GetID())
		if delErr != nil {
			util.Log(ctx).WithError(delErr).Warn("failed to discard unsaved upload")
		}
		return nil, err
	}

	err = ag.appendAudit(ctx, file.GetID(), req.OwnerID, types.RoleOwner, types.ActionUpload)
	if err != nil {
		// An upload that cannot be attributed is not an upload; unwind
		// both the metadata and the stored bytes.
		delErr := ag.fileRepo.Delete(ctx, file.GetID())
		if delErr != nil {
			util.Log(ctx).WithError(delErr).Warn("failed to discard unaudited upload")
		}
		delErr = ag.provider.DeleteFile(ctx, file.BucketName, file.GetID())
		if delErr != nil {
			util.Log(ctx).WithError(delErr).Warn("failed to discard unaudited upload content")
		}
		return nil, err
	}

	util.Log(ctx).
		WithField("file_id", file.GetID()).
		WithField("size", written).
		Info("file uploaded")

	return file.ToApi(), nil
}

func (ag *accessGateway) Download(ctx context.Context, actorID string, fileID string) (*DownloadResult, error) {
	return ag.download(ctx, actorID, fileID, "")
}

func (ag *accessGateway) DownloadByToken(ctx context.Context, actorID string, token string) (*DownloadResult, error) {
	fileID, err := ag.resolveTokenFile(ctx, token)
	if err != nil {
		return nil, err
	}
	return ag.download(ctx, actorID, fileID, token)
}

func (ag *accessGateway) download(ctx context.Context, actorID string, fileID string, token string) (*DownloadResult, error) {

	decision, err := ag.authz.Authorize(ctx, &AuthRequest{
		ActorID: actorID,
		FileID:  fileID,
		Action:  types.ActionDownload,
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allow {
		return nil, decision.Reason
	}

	file, err := ag.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	data, cleanup, err := ag.provider.DownloadFile(ctx, file.BucketName, file.GetID())
	if err != nil {
		return nil, errors.Wrap(err, "retrieving file content")
	}

	err = ag.appendAudit(ctx, fileID, actorID, decision.Role, types.ActionDownload)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &DownloadResult{
		File:    file.ToApi(),
		Data:    data,
		Cleanup: cleanup,
	}, nil
}

func (ag *accessGateway) GetInfo(ctx context.Context, actorID string, fileID string) (*types.FileRecord, error) {
	return ag.info(ctx, actorID, fileID, "")
}

func (ag *accessGateway) GetInfoByToken(ctx context.Context, actorID string, token string) (*types.FileRecord, error) {
	fileID, err := ag.resolveTokenFile(ctx, token)
	if err != nil {
		return nil, err
	}
	return ag.info(ctx, actorID, fileID, token)
}

func (ag *accessGateway) info(ctx context.Context, actorID string, fileID string, token string) (*types.FileRecord, error) {

	decision, err := ag.authz.Authorize(ctx, &AuthRequest{
		ActorID: actorID,
		FileID:  fileID,
		Action:  types.ActionInfo,
		Token:   token,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allow {
		return nil, decision.Reason
	}

	file, err := ag.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return file.ToApi(), nil
}

func (ag *accessGateway) GetAuditLog(ctx context.Context, ownerID string, fileID string) ([]*types.AuditRecord, error) {

	decision, err := ag.authz.Authorize(ctx, &AuthRequest{
		ActorID: ownerID,
		FileID:  fileID,
		Action:  types.ActionAuditLog,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allow {
		return nil, decision.Reason
	}

	entries, err := ag.auditRepo.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !seen[entry.ActorID] {
			seen[entry.ActorID] = true
			actorIDs = append(actorIDs, entry.ActorID)
		}
	}

	users, err := ag.userRepo.GetByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}

	usersByID := make(map[string]*models.User, len(users))
	for _, user := range users {
		usersByID[user.GetID()] = user
	}

	records := make([]*types.AuditRecord, len(entries))
	for i, entry := range entries {
		record := &types.AuditRecord{
			ID:        entry.GetID(),
			Role:      types.Role(entry.Role),
			Action:    types.Action(entry.Action),
			CreatedAt: entry.CreatedAt,
		}
		if user, ok := usersByID[entry.ActorID]; ok {
			record.Username = user.Username
			record.Email = user.Email
		}
		records[i] = record
	}

	return records, nil
}

func (ag *accessGateway) Delete(ctx context.Context, ownerID string, fileID string) error {

	decision, err := ag.authz.Authorize(ctx, &AuthRequest{
		ActorID: ownerID,
		FileID:  fileID,
		Action:  types.ActionDelete,
	})
	if err != nil {
		return err
	}
	if !decision.Allow {
		return decision.Reason
	}

	file, err := ag.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	err = ag.provider.DeleteFile(ctx, file.BucketName, file.GetID())
	if err != nil {
		// Metadata removal proceeds; orphaned blobs are preferable to
		// grants that outlive a file the owner asked to delete.
		util.Log(ctx).WithError(err).
			WithField("file_id", fileID).
			Warn("failed to delete file content")
	}

	err = ag.grantRepo.DeleteByFileID(ctx, fileID)
	if err != nil {
		return err
	}

	// Audit entries are kept: the trail outlives the file's grants.
	return ag.fileRepo.Delete(ctx, fileID)
}

func (ag *accessGateway) ListOwned(ctx context.Context, actorID string) ([]*types.FileRecord, error) {
	files, err := ag.fileRepo.GetByOwnerID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	return filesToApi(files), nil
}

func (ag *accessGateway) ListSharedWith(ctx context.Context, actorID string) ([]*types.FileRecord, error) {
	grants, err := ag.grantRepo.GetActiveByGranteeID(ctx, actorID, time.Now())
	if err != nil {
		return nil, err
	}

	fileIDs := make([]string, 0, len(grants))
	seen := make(map[string]bool, len(grants))
	for _, grant := range grants {
		if !seen[grant.FileID] {
			seen[grant.FileID] = true
			fileIDs = append(fileIDs, grant.FileID)
		}
	}

	files, err := ag.fileRepo.GetByIDs(ctx, fileIDs)
	if err != nil {
		return nil, err
	}

	return filesToApi(files), nil
}

func (ag *accessGateway) resolveTokenFile(ctx context.Context, token string) (string, error) {
	grant, err := ag.grantRepo.ResolveByToken(ctx, token)
	if err != nil {
		if frame.ErrorIsNoRows(err) {
			return "", types.ErrInvalidOrExpiredLink
		}
		return "", err
	}
	return grant.FileID, nil
}

func (ag *accessGateway) appendAudit(ctx context.Context, fileID string, actorID string, role types.Role, action types.Action) error {
	err := ag.auditRepo.Append(ctx, &models.AuditEntry{
		FileID:  fileID,
		ActorID: actorID,
		Role:    string(role),
		Action:  string(action),
	})
	if err != nil {
		return errors.Wrapf(err, "recording %s action", action)
	}
	return nil
}

func filesToApi(files []*models.File) []*types.FileRecord {
	records := make([]*types.FileRecord, len(files))
	for i, file := range files {
		records[i] = file.ToApi()
	}
	return records
}
