package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/marcomartinez12/playzone/internal/auth/domain"
)

func (r *Repository) InsertAudit(ctx context.Context, rec *domain.AuditRecord) (int64, error) {
	query := `
		INSERT INTO auditoria (id_usuario, username, accion, modulo, entidad, id_entidad,
		                       datos_anteriores, datos_nuevos, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id_auditoria`
	var id int64
	err := r.db.QueryRow(ctx, query,
		rec.UserID, rec.Username, rec.Action, rec.Module, rec.Entity, rec.EntityID,
		rec.DataBefore, rec.DataAfter, rec.IPAddress, rec.UserAgent).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit record: %w", err)
	}
	return id, nil
}

func (r *Repository) QueryAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	query := `
		SELECT id_auditoria, id_usuario, username, accion, modulo, entidad, id_entidad,
		       datos_anteriores, datos_nuevos, ip_address, user_agent, fecha_accion
		FROM auditoria WHERE 1=1`
	var args []any

	if filter.Module != "" {
		args = append(args, filter.Module)
		query += " AND modulo = $" + strconv.Itoa(len(args))
	}
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		query += " AND id_usuario = $" + strconv.Itoa(len(args))
	}
	if !filter.DateFrom.IsZero() {
		args = append(args, filter.DateFrom)
		query += " AND fecha_accion >= $" + strconv.Itoa(len(args))
	}
	if !filter.DateTo.IsZero() {
		args = append(args, filter.DateTo)
		query += " AND fecha_accion <= $" + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += " ORDER BY fecha_accion DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.Username, &rec.Action, &rec.Module,
			&rec.Entity, &rec.EntityID, &rec.DataBefore, &rec.DataAfter,
			&rec.IPAddress, &rec.UserAgent, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
