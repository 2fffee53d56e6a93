package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// RunStatus is the final state of a run.
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	// StatusSucceeded means every hemisphere produced output.
	StatusSucceeded RunStatus = "succeeded"
	// StatusPartial means at least one hemisphere failed and one succeeded.
	StatusPartial RunStatus = "partial"
	StatusFailed  RunStatus = "failed"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("catalog: run not found")

// Run is one invocation of the pipeline for a subject.
type Run struct {
	ID         string
	Subject    string
	AnnotName  string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
}

// HemisphereRecord is the outcome of one hemisphere within a run.
type HemisphereRecord struct {
	RunID      string
	Hemisphere string
	Files      int
	Vertices   int
	Unlabeled  int
	// MeanConsensus and MeanDiversity are nil when diversity was not computed
	// or the hemisphere failed.
	MeanConsensus *float64
	MeanDiversity *float64
	Error         string
}

// Catalog is the SQLite-backed run ledger.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the ledger at path and applies migrations.
func Open(ctx context.Context, path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Catalog{db: db, path: path}
	if err := c.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Path returns the database file location.
func (c *Catalog) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// BeginRun inserts run with status running.
func (c *Catalog) BeginRun(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, subject, annot_name, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Subject, run.AnnotName, formatTime(run.StartedAt), string(StatusRunning),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// RecordHemisphere stores or replaces the outcome of one hemisphere.
func (c *Catalog) RecordHemisphere(ctx context.Context, rec HemisphereRecord) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO hemispheres (
            run_id, hemisphere, files, vertices, unlabeled, mean_consensus, mean_diversity, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Hemisphere, rec.Files, rec.Vertices, rec.Unlabeled,
		nullableFloat(rec.MeanConsensus), nullableFloat(rec.MeanDiversity), nullableString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("record %s hemisphere for run %s: %w", rec.Hemisphere, rec.RunID, err)
	}
	return nil
}

// FinishRun sets the final status and finish time.
func (c *Catalog) FinishRun(ctx context.Context, runID string, status RunStatus, finishedAt time.Time) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE run_id = ?`,
		string(status), formatTime(finishedAt), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Runs lists the most recent runs first. A non-positive limit returns all.
// An empty subject matches every subject.
func (c *Catalog) Runs(ctx context.Context, subject string, limit int) ([]Run, error) {
	query := `SELECT run_id, subject, annot_name, started_at, finished_at, status FROM runs`
	var args []any
	if subject != "" {
		query += ` WHERE subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY started_at DESC, run_id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
			status   string
		)
		if err := rows.Scan(&run.ID, &run.Subject, &run.AnnotName, &started, &finished, &status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		run.Status = RunStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Hemispheres returns the hemisphere rows of runID ordered by hemisphere name.
func (c *Catalog) Hemispheres(ctx context.Context, runID string) ([]HemisphereRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT run_id, hemisphere, files, vertices, unlabeled, mean_consensus, mean_diversity, error
         FROM hemispheres WHERE run_id = ? ORDER BY hemisphere`, runID)
	if err != nil {
		return nil, fmt.Errorf("list hemispheres: %w", err)
	}
	defer rows.Close()

	var out []HemisphereRecord
	for rows.Next() {
		var (
			rec       HemisphereRecord
			consensus sql.NullFloat64
			diversity sql.NullFloat64
			errText   sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Hemisphere, &rec.Files, &rec.Vertices, &rec.Unlabeled, &consensus, &diversity, &errText); err != nil {
			return nil, fmt.Errorf("scan hemisphere: %w", err)
		}
		if consensus.Valid {
			rec.MeanConsensus = &consensus.Float64
		}
		if diversity.Valid {
			rec.MeanDiversity = &diversity.Float64
		}
		rec.Error = errText.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hemispheres: %w", err)
	}
	return out, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}
