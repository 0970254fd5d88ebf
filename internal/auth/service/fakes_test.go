package service

import (
	"context"
	"strconv"
	"time"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
)

// In-memory fakes for the domain repositories and the mailer.

type fakeUsers struct {
	byID   map[int]*domain.User
	nextID int

	// linked so CompletePasswordReset can revoke sessions transactionally
	tokens *fakeTokens

	getErr            error
	createErr         error
	updatePasswordErr error
	resetErr          error
}

var _ domain.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int]*domain.User{}, tokens: newFakeTokens()}
}

func (f *fakeUsers) add(u domain.User) *domain.User {
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = &u
	return f.byID[u.ID]
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	u.ID = f.nextID
	u.RegisteredAt = time.Now()
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int, hash string) error {
	if f.updatePasswordErr != nil {
		return f.updatePasswordErr
	}
	if u, ok := f.byID[id]; ok {
		u.Password = hash
	}
	return nil
}

func (f *fakeUsers) UpdateLastSession(_ context.Context, id int) error {
	if u, ok := f.byID[id]; ok {
		now := time.Now()
		u.LastSessionAt = &now
	}
	return nil
}

func (f *fakeUsers) IncrementFailedAttempts(_ context.Context, username string) (int, error) {
	for _, u := range f.byID {
		if u.Username == username {
			u.FailedAttempts++
			return u.FailedAttempts, nil
		}
	}
	return 0, nil
}

func (f *fakeUsers) SetLockout(_ context.Context, username string, until time.Time) error {
	for _, u := range f.byID {
		if u.Username == username {
			t := until
			u.LockedUntil = &t
		}
	}
	return nil
}

func (f *fakeUsers) ClearLockout(_ context.Context, username string) error {
	for _, u := range f.byID {
		if u.Username == username {
			u.FailedAttempts = 0
			u.LockedUntil = nil
		}
	}
	return nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id int, tokenHash string, expiresAt time.Time) error {
	if u, ok := f.byID[id]; ok {
		u.ResetTokenHash = &tokenHash
		e := expiresAt
		u.ResetExpiresAt = &e
	}
	return nil
}

func (f *fakeUsers) ListResetCandidates(_ context.Context, now time.Time) ([]domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var out []domain.User
	for _, u := range f.byID {
		if u.ResetTokenHash != nil && u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now) &&
			u.Active && !u.Deleted {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) CompletePasswordReset(ctx context.Context, id int, newHash string) (int64, error) {
	if f.resetErr != nil {
		return 0, f.resetErr
	}
	u, ok := f.byID[id]
	if !ok {
		return 0, nil
	}
	u.Password = newHash
	u.ResetTokenHash = nil
	u.ResetExpiresAt = nil
	u.FailedAttempts = 0
	u.LockedUntil = nil
	return f.tokens.RevokeAllForUser(ctx, id)
}

type fakeTokens struct {
	byHash map[string]*domain.RefreshToken

	storeErr error
	getErr   error
	touchErr error
}

var _ domain.RefreshTokenRepository = (*fakeTokens)(nil)

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byHash: map[string]*domain.RefreshToken{}}
}

func (f *fakeTokens) StoreRefreshToken(_ context.Context, rt *domain.RefreshToken) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	c := *rt
	f.byHash[rt.TokenHash] = &c
	return nil
}

func (f *fakeTokens) GetRefreshTokenByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rt, ok := f.byHash[hash]
	if !ok {
		return nil, nil
	}
	c := *rt
	return &c, nil
}

func (f *fakeTokens) TouchRefreshToken(_ context.Context, id string) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	for _, rt := range f.byHash {
		if rt.ID == id {
			now := time.Now()
			rt.LastUsed = &now
		}
	}
	return nil
}

func (f *fakeTokens) RevokeRefreshToken(_ context.Context, hash string) (bool, error) {
	rt, ok := f.byHash[hash]
	if !ok || rt.Revoked {
		return false, nil
	}
	now := time.Now()
	rt.Revoked = true
	rt.RevokedAt = &now
	return true, nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID int) (int64, error) {
	var count int64
	now := time.Now()
	for _, rt := range f.byHash {
		if rt.UserID == userID && !rt.Revoked {
			rt.Revoked = true
			rt.RevokedAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeTokens) DeleteStaleRefreshTokens(_ context.Context, revokedBefore time.Time) (int64, error) {
	var count int64
	now := time.Now()
	for hash, rt := range f.byHash {
		if rt.ExpiresAt.Before(now) || (rt.Revoked && rt.RevokedAt != nil && rt.RevokedAt.Before(revokedBefore)) {
			delete(f.byHash, hash)
			count++
		}
	}
	return count, nil
}

func (f *fakeTokens) activeCount(userID int) int {
	n := 0
	for _, rt := range f.byHash {
		if rt.UserID == userID && !rt.Revoked {
			n++
		}
	}
	return n
}

type fakeAttempts struct {
	records []domain.LoginAttempt

	recordErr error
	countErr  error
}

var _ domain.LoginAttemptRepository = (*fakeAttempts)(nil)

func (f *fakeAttempts) RecordLoginAttempt(_ context.Context, attempt *domain.LoginAttempt) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.records = append(f.records, *attempt)
	return nil
}

func (f *fakeAttempts) CountRecentIPFailures(_ context.Context, ip string, since time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, a := range f.records {
		if a.IPAddress == ip && !a.Success && !a.AttemptTime.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttempts) DeleteAttemptsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []domain.LoginAttempt
	var deleted int64
	for _, a := range f.records {
		if a.AttemptTime.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	f.records = kept
	return deleted, nil
}

type fakeAudit struct {
	records   []domain.AuditRecord
	insertErr error
}

var _ domain.AuditRepository = (*fakeAudit)(nil)

func (f *fakeAudit) InsertAudit(_ context.Context, rec *domain.AuditRecord) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	c := *rec
	c.ID = int64(len(f.records) + 1)
	c.CreatedAt = time.Now()
	f.records = append(f.records, c)
	return c.ID, nil
}

func (f *fakeAudit) QueryAudit(_ context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	var out []domain.AuditRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		rec := f.records[i]
		if filter.Module != "" && rec.Module != filter.Module {
			continue
		}
		if filter.UserID != 0 && (rec.UserID == nil || *rec.UserID != filter.UserID) {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAudit) lastAction() string {
	if len(f.records) == 0 {
		return ""
	}
	return f.records[len(f.records)-1].Action
}

type fakeMailer struct {
	resetTo     []string
	resetTokens []string
	changedTo   []string
	sendErr     error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, resetToken string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.resetTo = append(f.resetTo, to)
	f.resetTokens = append(f.resetTokens, resetToken)
	return nil
}

func (f *fakeMailer) SendPasswordChanged(_ context.Context, to string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.changedTo = append(f.changedTo, to)
	return nil
}

// uniqueUser builds a distinct active user per index for multi-user tests.
func uniqueUser(i int) domain.User {
	return domain.User{
		Username: "user" + strconv.Itoa(i),
		Email:    "user" + strconv.Itoa(i) + "@example.com",
		Password: "$2a$10$invalidfixture",
		Active:   true,
	}
}
