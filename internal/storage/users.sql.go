package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gastos/internal/core"
)

const userColumns = `id, nome, email, senha_hash`

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash)
	return u, err
}

func (q *Queries) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := q.query(ctx, `SELECT `+userColumns+` FROM usuarios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q *Queries) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, core.ErrNotFound
	}
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE lower(email) = lower(?)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return u, core.ErrNotFound
	}
	return u, err
}

func (q *Queries) CreateUser(ctx context.Context, u core.User) (int64, error) {
	var id int64
	err := q.queryRow(ctx,
		`INSERT INTO usuarios (nome, email, senha_hash) VALUES (?, ?, ?) RETURNING id`,
		u.Nome, u.Email, u.SenhaHash).Scan(&id)
	if isUniqueViolation(err) {
		return 0, core.ErrEmailTaken
	}
	return id, err
}

func (q *Queries) UpdateUser(ctx context.Context, u core.User) error {
	_, err := q.exec(ctx,
		`UPDATE usuarios SET nome = ?, email = ?, senha_hash = ? WHERE id = ?`,
		u.Nome, u.Email, u.SenhaHash, u.ID)
	if isUniqueViolation(err) {
		return core.ErrEmailTaken
	}
	return err
}

func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM usuarios WHERE id = ?`, id)
	return err
}
