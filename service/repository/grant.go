package repository

import (
	"context"
	"time"

	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/antinvestor/service-fileshare/service/utils"
	"github.com/pitabwire/frame"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantReconciliation reports the outcome of a user share request per
// grantee. Grantees that already held an active grant are never duplicated.
type GrantReconciliation struct {
	Created       []string
	AlreadyActive []string
}

type GrantRepository interface {
	// CreateUserGrants creates one grant per grantee that does not already
	// hold an active one. The existence check, the inserts and the audit
	// entry (when given) run as a single atomic unit serialized per file,
	// so concurrent share requests for the same grantee converge on one
	// active grant and a share is never committed without its trail.
	CreateUserGrants(ctx context.Context, fileID string, granteeIDs []string, expiresAt *time.Time, audit *models.AuditEntry) (*GrantReconciliation, error)

	// CreateOrReuseLinkGrant returns the token of the file's active link
	// grant if one exists, ignoring the requested expiry, and otherwise
	// mints a new token. The second return reports whether a fresh grant
	// was created. The audit entry, when given, is written in the same
	// transaction and only on a fresh mint.
	CreateOrReuseLinkGrant(ctx context.Context, fileID string, expiresAt *time.Time, audit *models.AuditEntry) (string, bool, error)

	// GetUserGrants returns every grant ever issued to the grantee for the
	// file, expired rows included. Callers apply the expiry predicate.
	GetUserGrants(ctx context.Context, fileID string, granteeID string) ([]*models.ShareGrant, error)

	// ResolveByToken looks a grant up by the hash of the presented token.
	ResolveByToken(ctx context.Context, token string) (*models.ShareGrant, error)

	GetByFileID(ctx context.Context, fileID string) ([]*models.ShareGrant, error)
	GetActiveByGranteeID(ctx context.Context, granteeID string, at time.Time) ([]*models.ShareGrant, error)
	DeleteByFileID(ctx context.Context, fileID string) error
}

func NewGrantRepository(service *frame.Service) GrantRepository {
	grantRepo := grantRepository{
		service: service,
	}
	return &grantRepo
}

type grantRepository struct {
	service *frame.Service
}

func (gr *grantRepository) CreateUserGrants(ctx context.Context, fileID string, granteeIDs []string, expiresAt *time.Time, audit *models.AuditEntry) (*GrantReconciliation, error) {

	reconciliation := &GrantReconciliation{}
	now := time.Now()

	err := gr.service.DB(ctx, false).Transaction(func(tx *gorm.DB) error {

		// The file row lock serializes grant creation per file so two
		// concurrent requests cannot both observe a grantee as absent.
		file := &models.File{}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(file, " id = ?", fileID).Error
		if err != nil {
			if frame.ErrorIsNoRows(err) {
				return types.ErrFileNotFound
			}
			return err
		}

		for _, granteeID := range granteeIDs {
			if granteeID == file.OwnerID {
				return types.ErrSelfShare
			}

			user := &models.User{}
			err = tx.First(user, " id = ?", granteeID).Error
			if err != nil {
				if frame.ErrorIsNoRows(err) {
					return types.ErrInvalidGrantee
				}
				return err
			}

			existing := make([]*models.ShareGrant, 0)
			err = tx.Where(
				" file_id = ? AND grantee_id = ? AND (expires_at IS NULL OR expires_at > ?)",
				fileID, granteeID, now,
			).Find(&existing).Error
			if err != nil {
				return err
			}

			if len(existing) > 0 {
				reconciliation.AlreadyActive = append(reconciliation.AlreadyActive, granteeID)
				continue
			}

			grant := &models.ShareGrant{
				FileID:    fileID,
				GranteeID: granteeID,
				ExpiresAt: expiresAt,
			}
			grant.GenID(ctx)

			err = tx.Create(grant).Error
			if err != nil {
				return err
			}

			reconciliation.Created = append(reconciliation.Created, granteeID)
		}

		return appendAuditTx(ctx, tx, audit)
	})
	if err != nil {
		return nil, err
	}

	return reconciliation, nil
}

func (gr *grantRepository) CreateOrReuseLinkGrant(ctx context.Context, fileID string, expiresAt *time.Time, audit *models.AuditEntry) (string, bool, error) {

	var token string
	minted := false
	now := time.Now()

	err := gr.service.DB(ctx, false).Transaction(func(tx *gorm.DB) error {

		file := &models.File{}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(file, " id = ?", fileID).Error
		if err != nil {
			if frame.ErrorIsNoRows(err) {
				return types.ErrFileNotFound
			}
			return err
		}

		existing := &models.ShareGrant{}
		err = tx.Where(
			" file_id = ? AND token <> '' AND (expires_at IS NULL OR expires_at > ?)",
			fileID, now,
		).Order("created_at DESC").First(existing).Error
		if err == nil {
			// Link parameters are immutable once minted; the requested
			// expiry is ignored in favour of the outstanding token.
			token = existing.Token
			return nil
		}
		if !frame.ErrorIsNoRows(err) {
			return err
		}

		token = utils.GenerateRandomString(utils.ShareTokenLength)
		grant := &models.ShareGrant{
			FileID:    fileID,
			Token:     token,
			TokenHash: utils.HashToken(token),
			ExpiresAt: expiresAt,
		}
		grant.GenID(ctx)

		err = tx.Create(grant).Error
		if err != nil {
			return err
		}

		minted = true

		// Reusing an outstanding link creates no new authorization
		// surface, so only this mint path carries the trail entry.
		return appendAuditTx(ctx, tx, audit)
	})
	if err != nil {
		return "", false, err
	}

	return token, minted, nil
}

func appendAuditTx(ctx context.Context, tx *gorm.DB, audit *models.AuditEntry) error {
	if audit == nil {
		return nil
	}
	if audit.GetID() == "" {
		audit.GenID(ctx)
	}
	return tx.Create(audit).Error
}

func (gr *grantRepository) GetUserGrants(ctx context.Context, fileID string, granteeID string) ([]*models.ShareGrant, error) {
	grantList := make([]*models.ShareGrant, 0)
	err := gr.service.DB(ctx, true).
		Where(" file_id = ? AND grantee_id = ?", fileID, granteeID).
		Find(&grantList).Error
	if err != nil {
		return nil, err
	}

	return grantList, nil
}

func (gr *grantRepository) ResolveByToken(ctx context.Context, token string) (*models.ShareGrant, error) {
	grant := &models.ShareGrant{}
	err := gr.service.DB(ctx, true).
		First(grant, " token_hash = ?", utils.HashToken(token)).Error
	if err != nil {
		return nil, err
	}

	return grant, nil
}

func (gr *grantRepository) GetByFileID(ctx context.Context, fileID string) ([]*models.ShareGrant, error) {
	grantList := make([]*models.ShareGrant, 0)
	err := gr.service.DB(ctx, true).
		Where(" file_id = ?", fileID).
		Order("created_at DESC").
		Find(&grantList).Error
	if err != nil {
		return nil, err
	}

	return grantList, nil
}

func (gr *grantRepository) GetActiveByGranteeID(ctx context.Context, granteeID string, at time.Time) ([]*models.ShareGrant, error) {
	grantList := make([]*models.ShareGrant, 0)
	err := gr.service.DB(ctx, true).
		Where(" grantee_id = ? AND (expires_at IS NULL OR expires_at > ?)", granteeID, at).
		Find(&grantList).Error
	if err != nil {
		return nil, err
	}

	return grantList, nil
}

func (gr *grantRepository) DeleteByFileID(ctx context.Context, fileID string) error {
	return gr.service.DB(ctx, false).
		Where(" file_id = ?", fileID).
		Delete(&models.ShareGrant{}).Error
}
