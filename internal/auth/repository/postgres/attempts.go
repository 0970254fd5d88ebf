package postgres

import (
	"context"
	"time"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
)

func (r *Repository) RecordLoginAttempt(ctx context.Context, attempt *domain.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (id, username, ip_address, exitoso, razon_fallo, user_agent, fecha_intento)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		attempt.ID, attempt.Username, attempt.IPAddress, attempt.Success,
		attempt.FailureReason, attempt.UserAgent, attempt.AttemptTime)
	return err
}

func (r *Repository) CountRecentIPFailures(ctx context.Context, ip string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE ip_address = $1 AND exitoso = FALSE AND fecha_intento >= $2`
	var count int
	if err := r.db.QueryRow(ctx, query, ip, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM login_attempts WHERE fecha_intento < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
