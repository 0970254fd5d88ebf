// Package errors contains sentinel errors used across layers for stable
// error mapping at the HTTP boundary.
package errors

import (
	"errors"
)

var (
	// ErrRateLimited indicates a temporary login lock (user lockout or IP throttle).
	ErrRateLimited = errors.New("too many failed login attempts")

	// ErrInvalidCredentials is the generic login failure; it never reveals
	// whether the username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserInactive indicates the account exists but is deactivated.
	ErrUserInactive = errors.New("account is deactivated")

	// ErrUserDeleted indicates the account exists but was soft-deleted.
	ErrUserDeleted = errors.New("account no longer exists")

	// ErrAlreadyExists indicates a username or email collision on registration.
	ErrAlreadyExists = errors.New("username or email already registered")

	// ErrUnauthorized is the generic denial for refresh/bearer failures.
	ErrUnauthorized = errors.New("unauthorized")

	// Refresh token validation outcomes. Callers outside the service layer
	// only ever see ErrUnauthorized; these stay distinguishable for logs.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")

	// Access token validation outcomes.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidResetToken indicates an unknown or expired password reset token.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)
