package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gastos/internal/core"
)

func (q *Queries) ListMovementTypes(ctx context.Context) ([]core.MovementType, error) {
	rows, err := q.query(ctx, `SELECT id, nome, natureza FROM tipos_movimentacao ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query movement types: %w", err)
	}
	defer rows.Close()

	types := []core.MovementType{}
	for rows.Next() {
		var t core.MovementType
		if err := rows.Scan(&t.ID, &t.Nome, &t.Natureza); err != nil {
			return nil, fmt.Errorf("scan movement type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (q *Queries) GetMovementType(ctx context.Context, id int64) (core.MovementType, error) {
	var t core.MovementType
	err := q.queryRow(ctx, `SELECT id, nome, natureza FROM tipos_movimentacao WHERE id = ?`, id).
		Scan(&t.ID, &t.Nome, &t.Natureza)
	if errors.Is(err, sql.ErrNoRows) {
		return t, core.ErrNotFound
	}
	return t, err
}

func (q *Queries) CreateMovementType(ctx context.Context, t core.MovementType) (int64, error) {
	var id int64
	err := q.queryRow(ctx,
		`INSERT INTO tipos_movimentacao (nome, natureza) VALUES (?, ?) RETURNING id`,
		t.Nome, string(t.Natureza)).Scan(&id)
	return id, err
}

func (q *Queries) UpdateMovementType(ctx context.Context, t core.MovementType) error {
	_, err := q.exec(ctx, `UPDATE tipos_movimentacao SET nome = ?, natureza = ? WHERE id = ?`,
		t.Nome, string(t.Natureza), t.ID)
	return err
}

func (q *Queries) DeleteMovementType(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM tipos_movimentacao WHERE id = ?`, id)
	return err
}
