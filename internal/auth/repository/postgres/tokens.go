package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
)

func (r *Repository) StoreRefreshToken(ctx context.Context, rt *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, id_usuario, token_hash, ip_address, user_agent, expira_en, fecha_creacion, revocado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		rt.ID, rt.UserID, rt.TokenHash, rt.IPAddress, rt.UserAgent,
		rt.ExpiresAt, rt.CreatedAt, rt.Revoked)
	return err
}

func (r *Repository) GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, id_usuario, token_hash, ip_address, user_agent, expira_en,
		       fecha_creacion, revocado, fecha_revocacion, ultima_uso
		FROM refresh_tokens
		WHERE token_hash = $1`
	row := r.db.QueryRow(ctx, query, hash)

	var rt domain.RefreshToken
	err := row.Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.IPAddress, &rt.UserAgent,
		&rt.ExpiresAt, &rt.CreatedAt, &rt.Revoked, &rt.RevokedAt, &rt.LastUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &rt, nil
}

func (r *Repository) TouchRefreshToken(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET ultima_uso = now() WHERE id = $1`, id)
	return err
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, hash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET revocado = TRUE, fecha_revocacion = now()
		WHERE token_hash = $1 AND revocado = FALSE`, hash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) RevokeAllForUser(ctx context.Context, userID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET revocado = TRUE, fecha_revocacion = now()
		WHERE id_usuario = $1 AND revocado = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) DeleteStaleRefreshTokens(ctx context.Context, revokedBefore time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE expira_en < now()
		   OR (revocado AND fecha_revocacion < $1)`, revokedBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
