package auth

import "errors"

// Sentinel errors for token inspection.
var (
	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrTokenExpired   = errors.New("auth: token expired")
)
