package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gastos/internal/core"
)

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.query(ctx, `SELECT id, nome, usuario_id FROM categorias ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	cats := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Nome, &c.UsuarioID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := q.queryRow(ctx, `SELECT id, nome, usuario_id FROM categorias WHERE id = ?`, id).
		Scan(&c.ID, &c.Nome, &c.UsuarioID)
	if errors.Is(err, sql.ErrNoRows) {
		return c, core.ErrNotFound
	}
	return c, err
}

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	var id int64
	err := q.queryRow(ctx,
		`INSERT INTO categorias (nome, usuario_id) VALUES (?, ?) RETURNING id`,
		c.Nome, c.UsuarioID).Scan(&id)
	return id, err
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	_, err := q.exec(ctx, `UPDATE categorias SET nome = ?, usuario_id = ? WHERE id = ?`, c.Nome, c.UsuarioID, c.ID)
	return err
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM categorias WHERE id = ?`, id)
	return err
}
