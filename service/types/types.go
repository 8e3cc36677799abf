package types

import (
	"time"
)

// Role is the effective authorization level computed for a request.
// It is never stored on a user, only derived per decision.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleViewer Role = "viewer"
	RoleNone   Role = "none"
)

// Action identifies what the caller intends to do with a file.
type Action string

const (
	ActionUpload    Action = "upload"
	ActionDownload  Action = "download"
	ActionShare     Action = "share"
	ActionShareLink Action = "share_link"

	// Actions below never appear in the audit trail.
	ActionInfo       Action = "info"
	ActionDelete     Action = "delete"
	ActionListShares Action = "list_shares"
	ActionAuditLog   Action = "audit_log"
)

// FileRecord is the wire representation of file metadata.
type FileRecord struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	MimeType         string    `json:"mime_type,omitempty"`
	FileSize         int64     `json:"file_size"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserRecord is the wire representation of a registered user.
type UserRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ShareRecord is the wire representation of a grant, used by the owner's
// share dialog. Expired rows are included so the UI can differentiate them.
type ShareRecord struct {
	ID         string     `json:"id"`
	FileID     string     `json:"file_id"`
	UserID     string     `json:"user_id,omitempty"`
	ShareToken string     `json:"share_token,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AuditRecord is one row of the owner-facing audit log, enriched with the
// acting user's details.
type AuditRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}
