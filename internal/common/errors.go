// Package common contains shared constants and sentinel errors used across
// userhub components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Registration errors.
	ErrDuplicateUser = errors.New("username or email already registered")
	ErrWeakPassword  = errors.New("password does not meet the strength policy")

	// Authentication errors. ErrInvalidCredentials covers unknown logins,
	// wrong passwords, and inactive accounts alike so the response never
	// reveals which part was wrong.
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrAccountLocked      = errors.New("account temporarily locked")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Request throttling.
	ErrRateLimited = errors.New("too many requests")
)
