package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pta-xyz/go-pta/clock"
	"github.com/pta-xyz/go-pta/eventlog"
)

// SQLiteStore persists runs in a SQLite database. Use ":memory:" for an
// ephemeral database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc.org/sqlite connections do not share in-memory databases.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		model_cid TEXT NOT NULL,
		seed INTEGER NOT NULL,
		policy TEXT NOT NULL,
		steps INTEGER NOT NULL,
		total_time REAL NOT NULL,
		final_location TEXT NOT NULL,
		deadlocked INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		delay REAL NOT NULL,
		edge TEXT NOT NULL,
		outcome INTEGER NOT NULL,
		location TEXT NOT NULL,
		time REAL NOT NULL,
		clocks TEXT NOT NULL,
		PRIMARY KEY (run_id, step),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model_cid);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run and its events in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, events []eventlog.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return ErrDuplicateRun
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, model_cid, seed, policy, steps, total_time,
		 final_location, deadlocked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelCID, run.Seed, run.Policy, run.Steps, run.TotalTime,
		run.FinalLocation, run.Deadlocked, run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	for _, event := range events {
		clocks, err := json.Marshal(event.Clocks)
		if err != nil {
			return fmt.Errorf("encoding clocks for step %d: %w", event.Step, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (run_id, step, delay, edge, outcome, location, time, clocks)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, event.Step, event.Delay, event.Edge, event.Outcome,
			event.Location, event.Time, string(clocks),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, model_cid, seed, policy, steps, total_time,
		 final_location, deadlocked, created_at
		 FROM runs WHERE id = ?`, id,
	)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// ListRuns retrieves runs matching the filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT id, model_cid, seed, policy, steps, total_time,
	 final_location, deadlocked, created_at FROM runs`

	var conditions []string
	var args []any
	if filter.ModelCID != "" {
		conditions = append(conditions, "model_cid = ?")
		args = append(args, filter.ModelCID)
	}
	if filter.Deadlocked != nil {
		conditions = append(conditions, "deadlocked = ?")
		args = append(args, *filter.Deadlocked)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Events retrieves a run's events in step order.
func (s *SQLiteStore) Events(ctx context.Context, runID string) ([]eventlog.Event, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, step, delay, edge, outcome, location, time, clocks
		 FROM events WHERE run_id = ? ORDER BY step`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []eventlog.Event
	for rows.Next() {
		var event eventlog.Event
		var clocks string
		err := rows.Scan(&event.RunID, &event.Step, &event.Delay, &event.Edge,
			&event.Outcome, &event.Location, &event.Time, &clocks)
		if err != nil {
			return nil, err
		}
		event.Clocks = make(clock.Valuation)
		if err := json.Unmarshal([]byte(clocks), &event.Clocks); err != nil {
			return nil, fmt.Errorf("decoding clocks for step %d: %w", event.Step, err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteRun removes a run and its events.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRunNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE run_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var createdAt string
	err := row.Scan(&run.ID, &run.ModelCID, &run.Seed, &run.Policy, &run.Steps,
		&run.TotalTime, &run.FinalLocation, &run.Deadlocked, &createdAt)
	if err != nil {
		return nil, err
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &run, nil
}
