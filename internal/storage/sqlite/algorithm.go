package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/internal/storage"
)

type algorithmRepo struct {
	tx *sql.Tx
}

func (r *algorithmRepo) Create(ctx context.Context, a *storage.Algorithm) error {
	configJSON, err := json.Marshal(a.Config)
	if err != nil {
		return err
	}

	_, err = r.tx.ExecContext(ctx, `
		INSERT INTO algorithms (id, name, config_json, created_at)
		VALUES (?, ?, ?, ?)
	`, a.ID, a.Name, string(configJSON), a.CreatedAt)
	return err
}

func (r *algorithmRepo) Get(ctx context.Context, id string) (*storage.Algorithm, error) {
	row := r.tx.QueryRowContext(ctx, `
		SELECT id, name, config_json, created_at
		FROM algorithms WHERE id = ?
	`, id)
	return scanAlgorithm(row)
}

func (r *algorithmRepo) List(ctx context.Context) ([]*storage.Algorithm, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT id, name, config_json, created_at
		FROM algorithms ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var algorithms []*storage.Algorithm
	for rows.Next() {
		a, err := scanAlgorithm(rows)
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, a)
	}
	return algorithms, rows.Err()
}

func scanAlgorithm(s scanner) (*storage.Algorithm, error) {
	a := &storage.Algorithm{}
	var configJSON string

	err := s.Scan(&a.ID, &a.Name, &configJSON, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(configJSON), &a.Config); err != nil {
		return nil, err
	}
	return a, nil
}
