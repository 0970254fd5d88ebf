package domain

import "time"

// RefreshToken is the stored form of a long-lived session token. Only the
// SHA-256 hash of the opaque token is persisted; the plaintext is returned
// to the client exactly once at creation.
type RefreshToken struct {
	ID        string
	UserID    int
	TokenHash string
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	LastUsed  *time.Time
}

type LoginAttempt struct {
	ID            string
	Username      string
	IPAddress     string
	Success       bool
	FailureReason *string
	UserAgent     *string
	AttemptTime   time.Time
}
