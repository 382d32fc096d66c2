package domain

import "errors"

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSessionNotFound = errors.New("session not found")

	// ErrConfiguration means the server has no usable OAuth client secrets.
	// It is not a per-request failure: every exchange fails until the
	// secrets are fixed and the server restarted.
	ErrConfiguration = errors.New("oauth client is not configured")

	// ErrIdentityMismatch means the upstream reported a player that is
	// neither the record's player id nor its alternate id.
	ErrIdentityMismatch = errors.New("upstream player identity mismatch")
)
