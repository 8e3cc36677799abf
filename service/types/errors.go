package types

import (
	"errors"
)

// Authorization failures are terminal for a request; none of these are
// retryable. Forbidden and NotShared are distinguishable internally but must
// be surfaced identically so unauthorized callers cannot probe for file
// existence.
var (
	ErrForbidden            = errors.New("access denied")
	ErrNotShared            = errors.New("file not shared with user")
	ErrGrantExpired         = errors.New("share has expired")
	ErrInvalidOrExpiredLink = errors.New("invalid or expired link")

	ErrInvalidGrantee  = errors.New("grantee is not a registered user")
	ErrSelfShare       = errors.New("cannot share a file with its owner")
	ErrEmptyGranteeSet = errors.New("no users supplied to share with")

	ErrFileNotFound = errors.New("file not found")
)
