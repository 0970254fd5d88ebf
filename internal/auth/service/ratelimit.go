package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
)

// attemptRetention bounds how long raw login attempts are kept.
const attemptRetention = 30 * 24 * time.Hour

// RateLimiter enforces two independent policies on login attempts: a
// per-user lockout after consecutive failures, and a sliding-window
// throttle per origin address across all usernames.
type RateLimiter struct {
	users    domain.UserRepository
	attempts domain.LoginAttemptRepository

	maxUserFails int
	maxIPFails   int
	lockout      time.Duration
	window       time.Duration

	logger *zap.Logger
}

func NewRateLimiter(users domain.UserRepository, attempts domain.LoginAttemptRepository,
	maxUserFails, maxIPFails, lockoutMin, windowMin int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		users:        users,
		attempts:     attempts,
		maxUserFails: maxUserFails,
		maxIPFails:   maxIPFails,
		lockout:      time.Duration(lockoutMin) * time.Minute,
		window:       time.Duration(windowMin) * time.Minute,
		logger:       logger,
	}
}

// CanAttempt reports whether a login may proceed. The user lock is checked
// before the address throttle, so its reason wins when both apply. An
// expired lock is cleared inline rather than waiting for a sweep.
func (rl *RateLimiter) CanAttempt(ctx context.Context, username, ip string) (bool, string, error) {
	user, err := rl.users.GetByUsername(ctx, username)
	if err != nil {
		return false, "", err
	}
	if user != nil && user.LockedUntil != nil {
		now := time.Now()
		if user.LockedUntil.After(now) {
			remaining := int(time.Until(*user.LockedUntil).Minutes()) + 1
			return false, fmt.Sprintf("account temporarily locked, try again in %d minutes", remaining), nil
		}
		if err := rl.users.ClearLockout(ctx, username); err != nil {
			return false, "", err
		}
	}

	count, err := rl.attempts.CountRecentIPFailures(ctx, ip, time.Now().Add(-rl.window))
	if err != nil {
		return false, "", err
	}
	if count >= rl.maxIPFails {
		return false, fmt.Sprintf("too many attempts from this address, try again in %d minutes",
			int(rl.window.Minutes())), nil
	}

	return true, "", nil
}

// RecordAttempt appends one login attempt and maintains the per-user
// failure counter. The increment happens server-side, so concurrent
// failures for the same user never under-count.
func (rl *RateLimiter) RecordAttempt(ctx context.Context, username, ip string,
	success bool, failureReason, userAgent string) error {
	attempt := &domain.LoginAttempt{
		ID:          uuid.NewString(),
		Username:    username,
		IPAddress:   ip,
		Success:     success,
		AttemptTime: time.Now(),
	}
	if failureReason != "" {
		attempt.FailureReason = &failureReason
	}
	if userAgent != "" {
		attempt.UserAgent = &userAgent
	}
	if err := rl.attempts.RecordLoginAttempt(ctx, attempt); err != nil {
		return err
	}

	if success {
		return rl.users.ClearLockout(ctx, username)
	}

	fails, err := rl.users.IncrementFailedAttempts(ctx, username)
	if err != nil {
		return err
	}
	if fails >= rl.maxUserFails {
		until := time.Now().Add(rl.lockout)
		if err := rl.users.SetLockout(ctx, username, until); err != nil {
			return err
		}
		rl.logger.Info("user locked out after repeated login failures",
			zap.String("username", username),
			zap.Int("failures", fails),
			zap.Time("until", until))
	}
	return nil
}

// SweepAttempts drops attempts past the retention window.
func (rl *RateLimiter) SweepAttempts(ctx context.Context) (int64, error) {
	return rl.attempts.DeleteAttemptsBefore(ctx, time.Now().Add(-attemptRetention))
}
