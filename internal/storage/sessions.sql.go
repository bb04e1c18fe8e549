package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gastos/internal/core"
)

func (q *Queries) CreateSession(ctx context.Context, s core.Session) error {
	_, err := q.exec(ctx,
		`INSERT INTO sessoes (id, usuario_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.UsuarioID, s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	return err
}

func (q *Queries) GetSession(ctx context.Context, id string) (core.Session, error) {
	var s core.Session
	err := q.queryRow(ctx, `SELECT id, usuario_id, created_at, expires_at FROM sessoes WHERE id = ?`, id).
		Scan(&s.ID, &s.UsuarioID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, core.ErrNotFound
	}
	return s, err
}

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.exec(ctx, `DELETE FROM sessoes WHERE id = ?`, id)
	return err
}

// DeleteExpiredSessions removes every session that expired before now and
// reports how many were removed.
func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM sessoes WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
