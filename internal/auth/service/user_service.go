package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
	"github.com/marcomartinez12/playzone/internal/auth/dto"
	"github.com/marcomartinez12/playzone/internal/crypto"
	autherrors "github.com/marcomartinez12/playzone/internal/errors"
	"github.com/marcomartinez12/playzone/internal/mailer"
)

// ResetAck is the acknowledgement returned by RequestPasswordReset for
// every input, known or not. Keeping it constant closes the enumeration
// side channel.
const ResetAck = "If the email is registered, a password reset link has been sent."

// UserService orchestrates login, registration, token refresh, logout and
// the password-reset flows.
type UserService struct {
	repo        domain.UserRepository
	tokens      *TokenService
	refresh     *RefreshTokenService
	limiter     *RateLimiter
	audit       *AuditService
	mail        mailer.Mailer
	resetExpiry time.Duration
	logger      *zap.Logger
}

func NewUserService(repo domain.UserRepository, tokens *TokenService, refresh *RefreshTokenService,
	limiter *RateLimiter, audit *AuditService, mail mailer.Mailer,
	resetExpiryMin int, logger *zap.Logger) *UserService {
	return &UserService{
		repo:        repo,
		tokens:      tokens,
		refresh:     refresh,
		limiter:     limiter,
		audit:       audit,
		mail:        mail,
		resetExpiry: time.Duration(resetExpiryMin) * time.Minute,
		logger:      logger,
	}
}

// denyLogin records the failed attempt and its audit trail before the
// denial is returned. Every denied login produces exactly one attempt row
// and one audit record.
func (s *UserService) denyLogin(ctx context.Context, input dto.LoginInput, reason string, err error) error {
	if rerr := s.limiter.RecordAttempt(ctx, input.Username, input.IPAddress, false, reason, input.UserAgent); rerr != nil {
		s.logger.Error("failed to record login attempt", zap.String("username", input.Username), zap.Error(rerr))
	}
	s.audit.LogLogin(ctx, input.Username, false, reason, input.IPAddress, input.UserAgent)
	return err
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	allowed, reason, err := s.limiter.CanAttempt(ctx, input.Username, input.IPAddress)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, s.denyLogin(ctx, input, reason, autherrors.ErrRateLimited)
	}

	user, err := s.repo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Indistinguishable from a wrong password in the response.
		return nil, s.denyLogin(ctx, input, "unknown user", autherrors.ErrInvalidCredentials)
	}

	switch user.Status() {
	case domain.StatusDeleted:
		return nil, s.denyLogin(ctx, input, "account deleted", autherrors.ErrUserDeleted)
	case domain.StatusInactive:
		return nil, s.denyLogin(ctx, input, "account deactivated", autherrors.ErrUserInactive)
	}

	if !crypto.VerifyPassword(input.Password, user.Password) {
		return nil, s.denyLogin(ctx, input, "wrong password", autherrors.ErrInvalidCredentials)
	}

	// Progressive migration: a legacy plaintext credential is replaced by
	// its hash before the login is allowed to succeed.
	if !crypto.IsHashed(user.Password) {
		hash, err := crypto.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
			return nil, err
		}
		s.logger.Info("migrated legacy credential to hash", zap.String("username", user.Username))
	}

	accessToken, _, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.refresh.Issue(ctx, user.ID, input.IPAddress, input.UserAgent)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastSession(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last session", zap.String("username", user.Username), zap.Error(err))
	}

	if err := s.limiter.RecordAttempt(ctx, input.Username, input.IPAddress, true, "", input.UserAgent); err != nil {
		s.logger.Error("failed to record login attempt", zap.String("username", input.Username), zap.Error(err))
	}
	s.audit.LogLogin(ctx, input.Username, true, "", input.IPAddress, input.UserAgent)

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessExpiry().Seconds()),
		User:         publicUser(user),
	}, nil
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.UserOutput, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if existing, err := s.repo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, autherrors.ErrAlreadyExists
	}
	if existing, err := s.repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, autherrors.ErrAlreadyExists
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		Password: hash,
		Active:   true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.LogAuthAction(ctx, ActionRegister, user.ID, username, input.IPAddress,
		map[string]any{"email": email})

	out := publicUser(user)
	return &out, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// specific validation failure is logged; the caller only ever sees a
// generic denial.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.RefreshResponse, error) {
	userID, err := s.refresh.Validate(ctx, input.RefreshToken)
	if err != nil {
		s.logger.Info("refresh token rejected", zap.String("ip", input.IPAddress), zap.Error(err))
		return nil, autherrors.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status() != domain.StatusActive {
		return nil, autherrors.ErrUnauthorized
	}

	accessToken, _, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.AccessExpiry().Seconds()),
	}, nil
}

// Logout revokes the given refresh token. Revoking an unknown or
// already-revoked token is still a successful logout.
func (s *UserService) Logout(ctx context.Context, refreshToken string, userID int, username, ip string) error {
	revoked, err := s.refresh.Revoke(ctx, refreshToken)
	if err != nil {
		return err
	}
	s.audit.LogAuthAction(ctx, ActionLogout, userID, username, ip,
		map[string]any{"token_revocado": revoked})
	return nil
}

// LogoutAll revokes every active session of the user and returns how many
// tokens were invalidated.
func (s *UserService) LogoutAll(ctx context.Context, userID int, username, ip string) (int64, error) {
	count, err := s.refresh.RevokeAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.audit.LogAuthAction(ctx, ActionLogoutAll, userID, username, ip,
		map[string]any{"sesiones_cerradas": count})
	return count, nil
}

// RequestPasswordReset always returns the same acknowledgement. Whether
// the email matched an account, and what happened next, is only visible in
// the audit trail.
func (s *UserService) RequestPasswordReset(ctx context.Context, email, ip string) string {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("password reset lookup failed", zap.Error(err))
		s.audit.LogAuthAction(ctx, ActionResetRequested, 0, "", ip,
			map[string]any{"resultado": "error interno"})
		return ResetAck
	}
	if user == nil {
		s.audit.LogAuthAction(ctx, ActionResetRequested, 0, "", ip,
			map[string]any{"resultado": "email desconocido"})
		return ResetAck
	}
	if user.Status() != domain.StatusActive {
		outcome := "cuenta inactiva"
		if user.Status() == domain.StatusDeleted {
			outcome = "cuenta eliminada"
		}
		s.audit.LogAuthAction(ctx, ActionResetRequested, user.ID, user.Username, ip,
			map[string]any{"resultado": outcome})
		return ResetAck
	}

	token, err := crypto.NewToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", zap.Error(err))
		return ResetAck
	}
	// The reset token is stored bcrypt-hashed, like a password: matching a
	// presented token later requires verifying against each outstanding
	// candidate.
	tokenHash, err := crypto.HashPassword(token)
	if err != nil {
		s.logger.Error("failed to hash reset token", zap.Error(err))
		return ResetAck
	}
	if err := s.repo.SetResetToken(ctx, user.ID, tokenHash, time.Now().Add(s.resetExpiry)); err != nil {
		s.logger.Error("failed to store reset token", zap.Error(err))
		return ResetAck
	}

	outcome := "enlace enviado"
	if err := s.mail.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Error("failed to send reset email", zap.String("email", user.Email), zap.Error(err))
		outcome = "fallo el envio del correo"
	}
	s.audit.LogAuthAction(ctx, ActionResetRequested, user.ID, user.Username, ip,
		map[string]any{"resultado": outcome})

	return ResetAck
}

// ResetPassword completes the email reset flow. Outstanding reset hashes
// are not indexable by the plaintext token, so candidates are scanned
// linearly; they are rare and time-bounded.
func (s *UserService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error {
	candidates, err := s.repo.ListResetCandidates(ctx, time.Now())
	if err != nil {
		return err
	}

	var matched *domain.User
	for i := range candidates {
		c := &candidates[i]
		if c.ResetTokenHash != nil && crypto.VerifyPassword(input.Token, *c.ResetTokenHash) {
			matched = c
			break
		}
	}
	if matched == nil {
		return autherrors.ErrInvalidResetToken
	}

	newHash, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	// Password update, reset-field clear and session revocation commit
	// together; the notification mail happens after, best-effort.
	revoked, err := s.repo.CompletePasswordReset(ctx, matched.ID, newHash)
	if err != nil {
		return err
	}

	if err := s.mail.SendPasswordChanged(ctx, matched.Email); err != nil {
		s.logger.Error("failed to send password changed notice",
			zap.String("email", matched.Email), zap.Error(err))
	}

	s.audit.LogAuthAction(ctx, ActionResetCompleted, matched.ID, matched.Username, input.IPAddress,
		map[string]any{"sesiones_cerradas": revoked})

	return nil
}

// CurrentUser resolves a bearer access token to its user, for the HTTP
// middleware. The user must still exist and be active.
func (s *UserService) CurrentUser(ctx context.Context, accessToken string) (*dto.UserOutput, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, autherrors.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status() != domain.StatusActive {
		return nil, autherrors.ErrUnauthorized
	}

	out := publicUser(user)
	return &out, nil
}

func publicUser(u *domain.User) dto.UserOutput {
	return dto.UserOutput{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		RegisteredAt: u.RegisteredAt,
	}
}
