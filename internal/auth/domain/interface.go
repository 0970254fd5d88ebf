package domain

import (
	"context"
	"time"
)

// UserRepository provides row-level access to the usuarios table. Lookup
// methods return (nil, nil) when no row matches.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int, hash string) error
	UpdateLastSession(ctx context.Context, id int) error

	// IncrementFailedAttempts bumps the failure counter server-side and
	// returns the new value, so concurrent logins never lose an increment.
	IncrementFailedAttempts(ctx context.Context, username string) (int, error)
	SetLockout(ctx context.Context, username string, until time.Time) error
	ClearLockout(ctx context.Context, username string) error

	SetResetToken(ctx context.Context, id int, tokenHash string, expiresAt time.Time) error
	// ListResetCandidates returns active, non-deleted users holding an
	// unexpired reset token.
	ListResetCandidates(ctx context.Context, now time.Time) ([]User, error)
	// CompletePasswordReset updates the password, clears the reset token
	// fields and revokes every active refresh token in one transaction.
	// It returns the number of refresh tokens revoked.
	CompletePasswordReset(ctx context.Context, id int, newHash string) (int64, error)
}

type RefreshTokenRepository interface {
	StoreRefreshToken(ctx context.Context, rt *RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*RefreshToken, error)
	TouchRefreshToken(ctx context.Context, id string) error
	// RevokeRefreshToken marks a non-revoked token revoked; it reports
	// whether a row actually changed, so revoking twice is a no-op.
	RevokeRefreshToken(ctx context.Context, hash string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID int) (int64, error)
	DeleteStaleRefreshTokens(ctx context.Context, revokedBefore time.Time) (int64, error)
}

type LoginAttemptRepository interface {
	RecordLoginAttempt(ctx context.Context, attempt *LoginAttempt) error
	CountRecentIPFailures(ctx context.Context, ip string, since time.Time) (int, error)
	DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type AuditRepository interface {
	InsertAudit(ctx context.Context, rec *AuditRecord) (int64, error)
	QueryAudit(ctx context.Context, filter AuditFilter) ([]AuditRecord, error)
}
