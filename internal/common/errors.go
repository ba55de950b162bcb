// Package common defines shared constants and sentinel errors used across
// the membervault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound          = errors.New("not found")
	ErrorMemberNotFound    = errors.New("member not found")
	ErrorKeyNotFound       = errors.New("encryption key not found")
	ErrorKeyAlreadyExists  = errors.New("encryption key already exists")
	ErrorDuplicateUsername = errors.New("username already exists")

	// Crypto errors. Both are terminal for the current request; retrying
	// without fixing key state cannot succeed.
	ErrorEncryptionFailed = errors.New("pii encryption failed")
	ErrorDecryptionFailed = errors.New("pii decryption failed")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
