package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/internal/storage"
)

type modelRepo struct {
	tx *sql.Tx
}

func (r *modelRepo) Create(ctx context.Context, m *storage.Model) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO models (id, name, num_vars, num_clauses, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.NumVars, m.NumClauses, m.CreatedAt)
	return err
}

func (r *modelRepo) Get(ctx context.Context, id string) (*storage.Model, error) {
	row := r.tx.QueryRowContext(ctx, `
		SELECT id, name, num_vars, num_clauses, created_at
		FROM models WHERE id = ?
	`, id)
	return scanModel(row)
}

func (r *modelRepo) GetByName(ctx context.Context, name string) (*storage.Model, error) {
	row := r.tx.QueryRowContext(ctx, `
		SELECT id, name, num_vars, num_clauses, created_at
		FROM models WHERE name = ?
	`, name)
	return scanModel(row)
}

func (r *modelRepo) List(ctx context.Context) ([]*storage.Model, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT id, name, num_vars, num_clauses, created_at
		FROM models ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []*storage.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanModel(s scanner) (*storage.Model, error) {
	m := &storage.Model{}
	err := s.Scan(&m.ID, &m.Name, &m.NumVars, &m.NumClauses, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
