package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/faultloc-lite/internal/storage"
)

type statisticRepo struct {
	tx *sql.Tx
}

func (r *statisticRepo) CreateBatch(ctx context.Context, runID string, rows []*storage.StatisticRow) error {
	stmt, err := r.tx.PrepareContext(ctx, `
		INSERT INTO statistics (run_id, t, iteration, candidates, verify_count, creation_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		result, err := stmt.ExecContext(ctx, runID, row.T, row.Iteration, row.Candidates,
			row.VerifyCount, row.CreationCount)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		row.ID = id
		row.RunID = runID
	}
	return nil
}

func (r *statisticRepo) ListByRun(ctx context.Context, runID string) ([]*storage.StatisticRow, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT id, run_id, t, iteration, candidates, verify_count, creation_count
		FROM statistics
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*storage.StatisticRow
	for rows.Next() {
		s := &storage.StatisticRow{}
		err := rows.Scan(&s.ID, &s.RunID, &s.T, &s.Iteration, &s.Candidates,
			&s.VerifyCount, &s.CreationCount)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
