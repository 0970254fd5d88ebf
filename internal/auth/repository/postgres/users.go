package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
)

const userColumns = `id_usuario, username, email, password, activo, eliminado,
		intentos_fallidos, bloqueado_hasta, reset_token_hash, reset_token_expira,
		ultima_sesion, fecha_registro`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Active, &u.Deleted,
		&u.FailedAttempts, &u.LockedUntil, &u.ResetTokenHash, &u.ResetExpiresAt,
		&u.LastSessionAt, &u.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE username = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE email = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE id_usuario = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO usuarios (username, email, password, activo, eliminado)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_usuario, fecha_registro`
	err := r.db.QueryRow(ctx, query,
		user.Username, user.Email, user.Password, user.Active, user.Deleted).
		Scan(&user.ID, &user.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id int, hash string) error {
	_, err := r.db.Exec(ctx, `UPDATE usuarios SET password = $2 WHERE id_usuario = $1`, id, hash)
	return err
}

func (r *Repository) UpdateLastSession(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `UPDATE usuarios SET ultima_sesion = now() WHERE id_usuario = $1`, id)
	return err
}

func (r *Repository) IncrementFailedAttempts(ctx context.Context, username string) (int, error) {
	query := `
		UPDATE usuarios SET intentos_fallidos = intentos_fallidos + 1
		WHERE username = $1
		RETURNING intentos_fallidos`
	var count int
	err := r.db.QueryRow(ctx, query, username).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Attempts against unknown usernames only live in login_attempts.
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (r *Repository) SetLockout(ctx context.Context, username string, until time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE usuarios SET bloqueado_hasta = $2 WHERE username = $1`, username, until)
	return err
}

func (r *Repository) ClearLockout(ctx context.Context, username string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE usuarios SET intentos_fallidos = 0, bloqueado_hasta = NULL WHERE username = $1`, username)
	return err
}

func (r *Repository) SetResetToken(ctx context.Context, id int, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE usuarios SET reset_token_hash = $2, reset_token_expira = $3 WHERE id_usuario = $1`,
		id, tokenHash, expiresAt)
	return err
}

func (r *Repository) ListResetCandidates(ctx context.Context, now time.Time) ([]domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM usuarios
		WHERE reset_token_hash IS NOT NULL
		  AND reset_token_expira > $1
		  AND activo AND NOT eliminado`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *Repository) CompletePasswordReset(ctx context.Context, id int, newHash string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE usuarios
		SET password = $2, reset_token_hash = NULL, reset_token_expira = NULL,
		    intentos_fallidos = 0, bloqueado_hasta = NULL
		WHERE id_usuario = $1`, id, newHash)
	if err != nil {
		return 0, fmt.Errorf("failed to update password: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET revocado = TRUE, fecha_revocacion = now()
		WHERE id_usuario = $1 AND revocado = FALSE`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
