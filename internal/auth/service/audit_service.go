package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
)

// Audit action tags, kept from the legacy system so existing reports keep
// working.
const (
	ActionLoginSuccess   = "LOGIN_EXITOSO"
	ActionLoginFailure   = "LOGIN_FALLIDO"
	ActionLogout         = "LOGOUT"
	ActionLogoutAll      = "LOGOUT_GLOBAL"
	ActionRegister       = "REGISTRO_USUARIO"
	ActionResetRequested = "RESET_SOLICITADO"
	ActionResetCompleted = "RESET_COMPLETADO"

	ModuleAuth = "auth"
)

// AuditService appends security-relevant records. Writes are best-effort:
// a failed insert is logged for operational monitoring but never fails or
// blocks the caller's operation.
type AuditService struct {
	repo   domain.AuditRepository
	logger *zap.Logger
}

func NewAuditService(repo domain.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

func (a *AuditService) Record(ctx context.Context, rec *domain.AuditRecord) {
	if _, err := a.repo.InsertAudit(ctx, rec); err != nil {
		a.logger.Error("audit write failed",
			zap.String("action", rec.Action),
			zap.String("module", rec.Module),
			zap.Error(err))
	}
}

// LogLogin records a login outcome. The failure reason goes into the
// datos_nuevos payload, mirroring the legacy audit rows.
func (a *AuditService) LogLogin(ctx context.Context, username string, success bool, reason, ip, userAgent string) {
	action := ActionLoginSuccess
	var payload []byte
	if !success {
		action = ActionLoginFailure
		payload, _ = json.Marshal(map[string]string{"razon": reason})
	}

	rec := &domain.AuditRecord{
		Username:  &username,
		Action:    action,
		Module:    ModuleAuth,
		DataAfter: payload,
	}
	if ip != "" {
		rec.IPAddress = &ip
	}
	if userAgent != "" {
		rec.UserAgent = &userAgent
	}
	a.Record(ctx, rec)
}

func (a *AuditService) LogAuthAction(ctx context.Context, action string, userID int, username, ip string, details map[string]any) {
	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}

	rec := &domain.AuditRecord{
		Username:  &username,
		Action:    action,
		Module:    ModuleAuth,
		DataAfter: payload,
	}
	if userID != 0 {
		rec.UserID = &userID
	}
	if ip != "" {
		rec.IPAddress = &ip
	}
	a.Record(ctx, rec)
}

// Query returns audit records newest-first, honoring the filter.
func (a *AuditService) Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	return a.repo.QueryAudit(ctx, filter)
}
