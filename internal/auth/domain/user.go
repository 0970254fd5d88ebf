package domain

import "time"

// UserStatus collapses the activo/eliminado flags into one state.
// Deleted takes precedence over the active flag.
type UserStatus int

const (
	StatusActive UserStatus = iota
	StatusInactive
	StatusDeleted
)

func (s UserStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusDeleted:
		return "deleted"
	}
	return "unknown"
}

type User struct {
	ID             int
	Username       string
	Email          string
	Password       string // bcrypt hash, or legacy plaintext during the migration window
	Active         bool
	Deleted        bool
	FailedAttempts int
	LockedUntil    *time.Time
	ResetTokenHash *string
	ResetExpiresAt *time.Time
	LastSessionAt  *time.Time
	RegisteredAt   time.Time
}

func (u *User) Status() UserStatus {
	if u.Deleted {
		return StatusDeleted
	}
	if !u.Active {
		return StatusInactive
	}
	return StatusActive
}
