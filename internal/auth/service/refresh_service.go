package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
	"github.com/marcomartinez12/playzone/internal/crypto"
	autherrors "github.com/marcomartinez12/playzone/internal/errors"
)

// revokedGrace is how long revoked tokens are kept before the sweep
// deletes them.
const revokedGrace = 7 * 24 * time.Hour

// RefreshTokenService manages the lifecycle of opaque refresh tokens.
// The plaintext token leaves this service exactly once, at issuance.
type RefreshTokenService struct {
	tokens domain.RefreshTokenRepository
	users  domain.UserRepository
	ttl    time.Duration
	logger *zap.Logger
}

func NewRefreshTokenService(tokens domain.RefreshTokenRepository, users domain.UserRepository,
	expiryDays int, logger *zap.Logger) *RefreshTokenService {
	return &RefreshTokenService{
		tokens: tokens,
		users:  users,
		ttl:    time.Duration(expiryDays) * 24 * time.Hour,
		logger: logger,
	}
}

// Issue creates a refresh token for the user and returns its plaintext.
// Only the SHA-256 hash is stored.
func (s *RefreshTokenService) Issue(ctx context.Context, userID int, ip, userAgent string) (string, error) {
	plaintext, err := crypto.NewToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	rt := &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: crypto.HashToken(plaintext),
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.tokens.StoreRefreshToken(ctx, rt); err != nil {
		return "", err
	}
	return plaintext, nil
}

// Validate resolves a plaintext refresh token to its owning user id.
// Failure reasons stay distinguishable for logging even though callers
// collapse them into a generic denial. Expiry is evaluated independently
// of the stored revoked flag.
func (s *RefreshTokenService) Validate(ctx context.Context, plaintext string) (int, error) {
	rt, err := s.tokens.GetRefreshTokenByHash(ctx, crypto.HashToken(plaintext))
	if err != nil {
		return 0, err
	}
	if rt == nil {
		return 0, autherrors.ErrRefreshTokenNotFound
	}
	if rt.Revoked {
		return 0, autherrors.ErrRefreshTokenRevoked
	}
	if time.Now().After(rt.ExpiresAt) {
		return 0, autherrors.ErrRefreshTokenExpired
	}

	user, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		return 0, err
	}
	if user == nil || user.Status() != domain.StatusActive {
		return 0, autherrors.ErrUserInactive
	}

	// Best-effort usage timestamp; not required for correctness.
	if err := s.tokens.TouchRefreshToken(ctx, rt.ID); err != nil {
		s.logger.Warn("failed to update refresh token last use",
			zap.String("token_id", rt.ID), zap.Error(err))
	}

	return rt.UserID, nil
}

// Revoke marks the token revoked. Revoking an already-revoked or unknown
// token reports false without error.
func (s *RefreshTokenService) Revoke(ctx context.Context, plaintext string) (bool, error) {
	return s.tokens.RevokeRefreshToken(ctx, crypto.HashToken(plaintext))
}

// RevokeAll revokes every active token the user owns and returns the count.
func (s *RefreshTokenService) RevokeAll(ctx context.Context, userID int) (int64, error) {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// Rotate revokes a valid token and issues a replacement. Rotation of an
// invalid token is rejected with the validation failure.
func (s *RefreshTokenService) Rotate(ctx context.Context, oldPlaintext, ip, userAgent string) (string, error) {
	userID, err := s.Validate(ctx, oldPlaintext)
	if err != nil {
		return "", err
	}
	if _, err := s.Revoke(ctx, oldPlaintext); err != nil {
		return "", err
	}
	return s.Issue(ctx, userID, ip, userAgent)
}

// Sweep deletes expired rows and rows revoked longer than the grace period
// ago. Pure housekeeping; correctness never depends on it running.
func (s *RefreshTokenService) Sweep(ctx context.Context) (int64, error) {
	return s.tokens.DeleteStaleRefreshTokens(ctx, time.Now().Add(-revokedGrace))
}
