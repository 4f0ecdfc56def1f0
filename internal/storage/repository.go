package storage

import (
	"context"
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/guttosm/tickprobe/internal/domain/models"
)

// RunsRepository defines contract for run history persistence.
type RunsRepository interface {
	SaveReport(ctx context.Context, rep *models.Report) error
	RecentRuns(ctx context.Context, symbol string, limit int) ([]models.RunSummary, error)
}

type runsRepository struct {
	db *sql.DB
}

func NewRunsRepository(db *sql.DB) RunsRepository {
	return &runsRepository{db: db}
}

// SaveReport stores the run summary and all of its ticks in a single transaction.
func (r *runsRepository) SaveReport(ctx context.Context, rep *models.Report) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	s := rep.Summary()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO loadtest_runs (run_id, symbol, started_at, finished_at, total, succeeded, failed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.RunID, s.Symbol, s.StartedAt, s.FinishedAt, s.Total, s.Succeeded, s.Failed); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"loadtest_ticks",
		"run_id",
		"iteration",
		"price",
		"volume",
		"tick_time",
		"anomaly",
		"status",
		"status_code",
		"error",
		"latency_ms",
	))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare copy: %w", err)
	}

	// zero status codes and empty errors are stored as NULL
	nullInt := func(v int) interface{} {
		if v == 0 {
			return nil
		}
		return v
	}
	nullString := func(v string) interface{} {
		if v == "" {
			return nil
		}
		return v
	}

	for _, o := range rep.Outcomes {
		if _, err := stmt.ExecContext(ctx,
			rep.RunID,
			o.Tick.Iteration,
			o.Tick.Price.StringFixed(2),
			o.Tick.Volume,
			o.Tick.Timestamp,
			o.Tick.Anomaly,
			string(o.Status),
			nullInt(o.StatusCode),
			nullString(o.Error),
			o.Latency.Milliseconds(),
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("copy tick %d: %w", o.Tick.Iteration, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("close copy: %w", err)
	}

	return tx.Commit()
}

// RecentRuns returns the latest runs for symbol, newest first.
func (r *runsRepository) RecentRuns(ctx context.Context, symbol string, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, symbol, started_at, finished_at, total, succeeded, failed
		FROM loadtest_runs
		WHERE symbol = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.RunSummary
	for rows.Next() {
		var s models.RunSummary
		if err := rows.Scan(&s.RunID, &s.Symbol, &s.StartedAt, &s.FinishedAt, &s.Total, &s.Succeeded, &s.Failed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
