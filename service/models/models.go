package models

import (
	"time"

	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/pitabwire/frame/data"
)

// User is a registered account holder. Users are referenced by files,
// grants and audit entries but never owned by them.
type User struct {
	data.BaseModel

	Username string `gorm:"type:TEXT;uniqueIndex"`
	Email    string `gorm:"type:TEXT;uniqueIndex"`
}

func (u *User) ToApi() *types.UserRecord {
	return &types.UserRecord{
		ID:       u.GetID(),
		Username: u.Username,
		Email:    u.Email,
	}
}

// File holds the metadata of an uploaded file. The owner is fixed at
// creation; there is no transfer of ownership.
type File struct {
	data.BaseModel

	OwnerID string `gorm:"type:TEXT;index"`

	Name         string `gorm:"type:TEXT"`
	OriginalName string `gorm:"type:TEXT"`
	Ext          string `gorm:"type:TEXT"`

	Size     int64
	Mimetype string `gorm:"type:TEXT"`

	Hash       string `gorm:"type:TEXT"`
	BucketName string `gorm:"type:TEXT"`
	Provider   string `gorm:"type:TEXT"`
}

func (f *File) ToApi() *types.FileRecord {
	return &types.FileRecord{
		ID:               f.GetID(),
		OwnerID:          f.OwnerID,
		Filename:         f.Name,
		OriginalFilename: f.OriginalName,
		FileType:         f.Ext,
		MimeType:         f.Mimetype,
		FileSize:         f.Size,
		CreatedAt:        f.CreatedAt,
	}
}

// ShareGrant is one authorization unit for one file. A row is either a
// user grant (GranteeID set) or a link grant (Token set), never both.
// Rows are immutable once created; expiry is the only deactivation path
// and is evaluated at read time.
type ShareGrant struct {
	data.BaseModel

	FileID    string `gorm:"type:TEXT;index"`
	GranteeID string `gorm:"type:TEXT;index"`

	// Token is the bearer credential handed to the owner. TokenHash is its
	// SHA-256 and is the only column used to resolve a presented token, so
	// lookups never compare raw token bytes.
	Token     string `gorm:"type:TEXT"`
	TokenHash string `gorm:"type:TEXT;index"`

	ExpiresAt *time.Time
}

// IsLink reports whether the grant is an anonymous link grant.
func (sg *ShareGrant) IsLink() bool {
	return sg.Token != ""
}

// IsActive reports whether the grant authorizes access at the given time.
func (sg *ShareGrant) IsActive(at time.Time) bool {
	return sg.ExpiresAt == nil || sg.ExpiresAt.After(at)
}

func (sg *ShareGrant) ToApi() *types.ShareRecord {
	return &types.ShareRecord{
		ID:         sg.GetID(),
		FileID:     sg.FileID,
		UserID:     sg.GranteeID,
		ShareToken: sg.Token,
		ExpiresAt:  sg.ExpiresAt,
		CreatedAt:  sg.CreatedAt,
	}
}

// AuditEntry records one completed action against a file. Entries are
// append only and survive the grants that authorized them.
type AuditEntry struct {
	data.BaseModel

	FileID  string `gorm:"type:TEXT;index"`
	ActorID string `gorm:"type:TEXT;index"`
	Role    string `gorm:"type:TEXT"`
	Action  string `gorm:"type:TEXT"`
}
