// Package common defines shared constants and sentinel errors used across
// the fieldsync client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrLocalPersistence = errors.New("local persistence error")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// OwnershipRejected means the server (or the local guard) refused a
	// write because the record belongs to a different technician.
	ErrOwnershipRejected = errors.New("ownership rejected")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
