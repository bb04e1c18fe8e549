package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gastos/internal/core"
)

// Movements are always read with their type, category and user. LEFT JOINs
// keep a movement visible even when a referenced row is missing.
const movementSelect = `
SELECT m.id, m.descricao, m.valor, m.data, m.fixo,
       m.tipo_movimentacao_id, m.categoria_id, m.usuario_id,
       t.id, t.nome, t.natureza,
       c.id, c.nome, c.usuario_id,
       u.id, u.nome, u.email
FROM movimentacoes m
LEFT JOIN tipos_movimentacao t ON t.id = m.tipo_movimentacao_id
LEFT JOIN categorias c ON c.id = m.categoria_id
LEFT JOIN usuarios u ON u.id = m.usuario_id`

func scanMovement(row interface{ Scan(...any) error }) (core.Movement, error) {
	var (
		m    core.Movement
		data time.Time

		tID              sql.NullInt64
		tNome, tNatureza sql.NullString
		cID, cUsuario    sql.NullInt64
		cNome            sql.NullString
		uID              sql.NullInt64
		uNome, uEmail    sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.Descricao, &m.Valor, &data, &m.Fixo,
		&m.TipoMovimentacaoID, &m.CategoriaID, &m.UsuarioID,
		&tID, &tNome, &tNatureza,
		&cID, &cNome, &cUsuario,
		&uID, &uNome, &uEmail,
	)
	if err != nil {
		return m, err
	}
	m.Data = core.Date{Time: data.UTC()}

	if tID.Valid {
		m.TipoMovimentacao = &core.MovementType{ID: tID.Int64, Nome: tNome.String, Natureza: core.Kind(tNatureza.String)}
	}
	if cID.Valid {
		m.Categoria = &core.Category{ID: cID.Int64, Nome: cNome.String, UsuarioID: cUsuario.Int64}
	}
	if uID.Valid {
		m.Usuario = &core.User{ID: uID.Int64, Nome: uNome.String, Email: uEmail.String}
	}
	return m, nil
}

func (q *Queries) ListMovements(ctx context.Context) ([]core.Movement, error) {
	rows, err := q.query(ctx, movementSelect+` ORDER BY m.data DESC, m.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	movs := []core.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movs = append(movs, m)
	}
	return movs, rows.Err()
}

func (q *Queries) GetMovement(ctx context.Context, id int64) (core.Movement, error) {
	m, err := scanMovement(q.queryRow(ctx, movementSelect+` WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, core.ErrNotFound
	}
	return m, err
}

func (q *Queries) CreateMovement(ctx context.Context, m core.Movement) (int64, error) {
	var id int64
	err := q.queryRow(ctx, `
INSERT INTO movimentacoes (descricao, valor, data, fixo, tipo_movimentacao_id, categoria_id, usuario_id)
VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		m.Descricao, m.Valor, m.Data.Time.UTC(), m.Fixo, m.TipoMovimentacaoID, m.CategoriaID, m.UsuarioID).Scan(&id)
	return id, err
}

func (q *Queries) UpdateMovement(ctx context.Context, m core.Movement) error {
	_, err := q.exec(ctx, `
UPDATE movimentacoes
SET descricao = ?, valor = ?, data = ?, fixo = ?, tipo_movimentacao_id = ?, categoria_id = ?, usuario_id = ?
WHERE id = ?`,
		m.Descricao, m.Valor, m.Data.Time.UTC(), m.Fixo, m.TipoMovimentacaoID, m.CategoriaID, m.UsuarioID, m.ID)
	return err
}

func (q *Queries) DeleteMovement(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM movimentacoes WHERE id = ?`, id)
	return err
}
