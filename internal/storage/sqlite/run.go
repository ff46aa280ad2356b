package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/internal/storage"
)

type runRepo struct {
	tx *sql.Tx
}

const runColumns = `id, sweep_id, model_id, algorithm_id, scenario, iteration, t, outcome,
	faulty_json, faulty_updated_json, found_json, merged, merged_updated, verify_count, creation_count,
	elapsed_ms, timed_out, errored, error_message, created_at`

func (r *runRepo) Create(ctx context.Context, run *storage.Run) error {
	faultyJSON, err := encodeAssignments(run.Faulty)
	if err != nil {
		return err
	}
	faultyUpdatedJSON, err := encodeAssignments(run.FaultyUpdated)
	if err != nil {
		return err
	}
	foundJSON, err := encodeAssignments(run.Found)
	if err != nil {
		return err
	}

	_, err = r.tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SweepID, run.ModelID, run.AlgorithmID, run.Scenario, run.Iteration, run.T, run.Outcome,
		faultyJSON, faultyUpdatedJSON, foundJSON, encodeOptional(run.Merged), encodeOptional(run.MergedUpdated),
		run.VerifyCount, run.CreationCount, run.Elapsed.Milliseconds(),
		run.TimedOut, run.Errored, run.ErrorMessage, run.CreatedAt)
	return err
}

func (r *runRepo) Get(ctx context.Context, id string) (*storage.Run, error) {
	row := r.tx.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

func (r *runRepo) List(ctx context.Context, opts storage.ListOptions) ([]*storage.Run, error) {
	var conds []string
	var args []any

	if opts.SweepID != "" {
		conds = append(conds, "sweep_id = ?")
		args = append(args, opts.SweepID)
	}
	if opts.ModelID != "" {
		conds = append(conds, "model_id = ?")
		args = append(args, opts.ModelID)
	}
	if opts.AlgorithmID != "" {
		conds = append(conds, "algorithm_id = ?")
		args = append(args, opts.AlgorithmID)
	}
	if len(opts.Outcomes) > 0 {
		placeholders := make([]string, len(opts.Outcomes))
		for i, o := range opts.Outcomes {
			placeholders[i] = "?"
			args = append(args, o)
		}
		conds = append(conds, "outcome IN ("+strings.Join(placeholders, ",")+")")
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, model_id, scenario, algorithm_id, iteration, id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*storage.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *runRepo) Delete(ctx context.Context, id string) error {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRun(s scanner) (*storage.Run, error) {
	run := &storage.Run{}
	var faultyJSON, faultyUpdatedJSON, foundJSON, errorMessage sql.NullString
	var merged, mergedUpdated sql.NullString
	var elapsedMS int64

	err := s.Scan(&run.ID, &run.SweepID, &run.ModelID, &run.AlgorithmID, &run.Scenario,
		&run.Iteration, &run.T, &run.Outcome, &faultyJSON, &faultyUpdatedJSON, &foundJSON, &merged, &mergedUpdated,
		&run.VerifyCount, &run.CreationCount, &elapsedMS, &run.TimedOut, &run.Errored,
		&errorMessage, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if run.Faulty, err = decodeAssignments(faultyJSON); err != nil {
		return nil, err
	}
	if run.FaultyUpdated, err = decodeAssignments(faultyUpdatedJSON); err != nil {
		return nil, err
	}
	if run.Found, err = decodeAssignments(foundJSON); err != nil {
		return nil, err
	}
	if run.Merged, err = decodeOptional(merged); err != nil {
		return nil, err
	}
	if run.MergedUpdated, err = decodeOptional(mergedUpdated); err != nil {
		return nil, err
	}
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	run.ErrorMessage = errorMessage.String
	return run, nil
}

// Assignment lists are stored as JSON arrays of DIMACS literal arrays.
func encodeAssignments(list []domain.Assignment) (string, error) {
	rows := make([][]int, len(list))
	for i, a := range list {
		rows[i] = a.Ints()
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeAssignments(s sql.NullString) ([]domain.Assignment, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var rows [][]int
	if err := json.Unmarshal([]byte(s.String), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	list := make([]domain.Assignment, len(rows))
	for i, row := range rows {
		a, err := domain.FromInts(row)
		if err != nil {
			return nil, err
		}
		list[i] = a
	}
	return list, nil
}

func encodeOptional(a *domain.Assignment) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.Key(), Valid: true}
}

func decodeOptional(s sql.NullString) (*domain.Assignment, error) {
	if !s.Valid {
		return nil, nil
	}
	a, err := domain.ParseAssignment(s.String)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
