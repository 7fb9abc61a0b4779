// Package storage provides the SQLite audit trail for agent runs.
//
// Information Hiding:
// - SQLite connection management hidden behind the Audit type
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
//
// The audit trail is write-only from the agent's point of view: the run
// loop appends runs, actions, snapshots and frames as they happen and
// never reads them back. The read side exists for the `audit` CLI
// command and for tests.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/golem/model"
)

// RunSummary is one row of the runs table as shown by the audit CLI.
type RunSummary struct {
	ID         string
	Mission    string
	Provider   string
	Model      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is still open
	Outcome    string    // empty while the run is still open
	Turns      int
}

// SnapshotRow is one archived-memory snapshot as persisted for a run.
type SnapshotRow struct {
	Turn      int
	Summary   string
	Patterns  string
	Compacted int
}

// Audit stores the per-run audit trail in a SQLite database file.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type Audit struct {
	db *sql.DB
}

// OpenAudit opens or creates an audit database at the given path.
// Creates parent directories if they don't exist.
func OpenAudit(path string) (*Audit, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	a := &Audit{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return a, nil
}

// NewAuditInMemory creates an in-memory audit database (useful for testing).
func NewAuditInMemory() (*Audit, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	a := &Audit{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return a, nil
}

// Close closes the database connection.
func (a *Audit) Close() error {
	return a.db.Close()
}

func (a *Audit) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			mission TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER,
			outcome TEXT,
			turns INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			phase TEXT NOT NULL,
			tool TEXT NOT NULL,
			args TEXT NOT NULL,
			result TEXT NOT NULL,
			success INTEGER NOT NULL,
			rationale TEXT,
			screenshot TEXT,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);

		CREATE INDEX IF NOT EXISTS idx_actions_run
		ON actions(run_id, turn);

		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			summary TEXT NOT NULL,
			patterns TEXT,
			compacted INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_run
		ON snapshots(run_id, turn);

		CREATE TABLE IF NOT EXISTS frames (
			run_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			ref TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			jpeg BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (run_id, turn)
		);
	`

	_, err := a.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// BeginRun registers a new run before its first turn.
func (a *Audit) BeginRun(ctx context.Context, run model.RunInfo) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, mission, provider, model, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.Mission,
		run.Provider,
		run.Model,
		run.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun closes a run with its outcome and consumed turn count.
func (a *Audit) FinishRun(ctx context.Context, runID, outcome string, turns int) error {
	_, err := a.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, outcome = ?, turns = ?
		WHERE run_id = ?`,
		time.Now().Unix(), outcome, turns, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecordAction appends one executed (or rejected) tool call to a run.
func (a *Audit) RecordAction(ctx context.Context, runID string, rec model.TurnRecord) error {
	// Convert empty strings to NULL for optional fields
	var rationale, screenshot interface{}
	if rec.Rationale != "" {
		rationale = rec.Rationale
	}
	if rec.Screenshot != "" {
		screenshot = rec.Screenshot
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO actions
		(run_id, turn, phase, tool, args, result, success, rationale, screenshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		rec.Turn,
		rec.Phase,
		rec.Tool,
		rec.Args,
		rec.Result,
		rec.Success,
		rationale,
		screenshot,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}
	return nil
}

// RecordSnapshot appends one memory-compaction snapshot to a run.
func (a *Audit) RecordSnapshot(ctx context.Context, runID string, turn int, summary, patterns string, compacted int) error {
	var pat interface{}
	if patterns != "" {
		pat = patterns
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, turn, summary, patterns, compacted, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, turn, summary, pat, compacted, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// SaveFrame stores the screenshot captured for one turn. The same turn
// saved twice overwrites the previous frame.
func (a *Audit) SaveFrame(ctx context.Context, runID string, turn int, ref string, width, height int, jpeg []byte) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO frames (run_id, turn, ref, width, height, jpeg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, turn, ref, width, height, jpeg, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}
	return nil
}

// ListRuns lists all recorded runs, most recent first.
func (a *Audit) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT run_id, mission, provider, model, started_at, finished_at, outcome, turns
		FROM runs
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{} // Start with empty slice, not nil
	for rows.Next() {
		var r RunSummary
		var started int64
		var finished sql.NullInt64
		var outcome sql.NullString

		if err := rows.Scan(&r.ID, &r.Mission, &r.Provider, &r.Model, &started, &finished, &outcome, &r.Turns); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			r.FinishedAt = time.Unix(finished.Int64, 0)
		}
		if outcome.Valid {
			r.Outcome = outcome.String
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Actions loads the recorded tool calls for a run in turn order.
func (a *Audit) Actions(ctx context.Context, runID string) ([]model.TurnRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT turn, phase, tool, args, result, success, rationale, screenshot
		FROM actions
		WHERE run_id = ?
		ORDER BY turn ASC, id ASC`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	records := []model.TurnRecord{} // Start with empty slice, not nil
	for rows.Next() {
		var rec model.TurnRecord
		var rationale, screenshot sql.NullString

		if err := rows.Scan(&rec.Turn, &rec.Phase, &rec.Tool, &rec.Args, &rec.Result, &rec.Success, &rationale, &screenshot); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		if rationale.Valid {
			rec.Rationale = rationale.String
		}
		if screenshot.Valid {
			rec.Screenshot = screenshot.String
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return records, nil
}

// Snapshots loads the compaction snapshots persisted for a run.
func (a *Audit) Snapshots(ctx context.Context, runID string) ([]SnapshotRow, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT turn, summary, patterns, compacted
		FROM snapshots
		WHERE run_id = ?
		ORDER BY turn ASC, id ASC`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []SnapshotRow{} // Start with empty slice, not nil
	for rows.Next() {
		var s SnapshotRow
		var patterns sql.NullString

		if err := rows.Scan(&s.Turn, &s.Summary, &patterns, &s.Compacted); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		if patterns.Valid {
			s.Patterns = patterns.String
		}
		snaps = append(snaps, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snaps, nil
}

// Prune keeps the most recent keep runs and deletes everything older,
// including their actions, snapshots and frames. Returns the number of
// runs removed.
func (a *Audit) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT run_id FROM runs
		ORDER BY started_at DESC
		LIMIT -1 OFFSET ?`,
		keep)
	if err != nil {
		return 0, fmt.Errorf("failed to query stale runs: %w", err)
	}

	stale := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan run id: %w", err)
		}
		stale = append(stale, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("error iterating stale runs: %w", err)
	}
	rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}

	for _, table := range []string{"actions", "snapshots", "frames", "runs"} {
		stmt, err := tx.PrepareContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?")
		if err != nil {
			return 0, fmt.Errorf("failed to prepare delete: %w", err)
		}
		for _, id := range stale {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				stmt.Close()
				return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(stale), nil
}
