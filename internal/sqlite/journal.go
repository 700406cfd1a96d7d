// Package sqlite implements the run journal: a SQLite record of processor
// runs and their steps kept in the data directory.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/dynobject/internal/paths"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Run is one recorded processor run.
type Run struct {
	RunID      string     `json:"run_id"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Counter1   uint32     `json:"counter1"`
	Counter2   uint32     `json:"counter2"`
	Limit      uint32     `json:"limit"`
	Steps      int        `json:"steps"`
	Error      string     `json:"error,omitempty"`
}

// Step is one recorded processor step.
type Step struct {
	RunID     string `json:"run_id"`
	Seq       int    `json:"seq"`
	Processor string `json:"processor"`
	Step      int    `json:"step"`
	More      bool   `json:"more"`
}

// Outcome is what FinishRun records about a completed run.
type Outcome struct {
	Counter1 uint32
	Counter2 uint32
	Limit    uint32
	Err      error
}

// Journal records runs in a SQLite database.
type Journal struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func now() string {
	return time.Now().UTC().Format(timeFormat)
}

// Open opens (creating if needed) the journal database in dataDir.
func Open(dataDir string) (*Journal, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := paths.JournalFile(dataDir)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection serializes writers; SQLite allows one anyway.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Journal{db: db, path: path}, nil
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// Close releases the database. Close is idempotent.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// BeginRun records a new running run and returns its ID (UUID v7).
func (j *Journal) BeginRun() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return "", types.ErrJournalClosed
	}
	id := generateUUID()
	_, err := j.db.Exec(
		"INSERT INTO runs (run_id, status, started_at) VALUES (?, ?, ?)",
		id, StatusRunning, now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordStep appends a step to a running run.
func (j *Journal) RecordStep(runID, processor string, step int, more bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return types.ErrJournalClosed
	}
	if err := j.checkRunningLocked(runID); err != nil {
		return err
	}
	_, err := j.db.Exec(
		`INSERT INTO steps (run_id, seq, processor, step, more)
		 SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ? FROM steps WHERE run_id = ?`,
		runID, processor, step, more, runID,
	)
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

// FinishRun marks a run finished, or failed when out.Err is set, and stores
// the final counters and step count.
func (j *Journal) FinishRun(runID string, out Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return types.ErrJournalClosed
	}
	if err := j.checkRunningLocked(runID); err != nil {
		return err
	}

	status := StatusFinished
	var errText *string
	if out.Err != nil {
		status = StatusFailed
		msg := out.Err.Error()
		errText = &msg
	}
	_, err := j.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ?, counter1 = ?, counter2 = ?, limit_value = ?,
		 steps = (SELECT COUNT(*) FROM steps WHERE run_id = ?), error = ? WHERE run_id = ?`,
		status, now(), out.Counter1, out.Counter2, out.Limit, runID, errText, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// checkRunningLocked verifies runID exists and is still running.
// The caller must hold j.mu.
func (j *Journal) checkRunningLocked(runID string) error {
	var status string
	err := j.db.QueryRow("SELECT status FROM runs WHERE run_id = ?", runID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrRunNotFound
	}
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if status != StatusRunning {
		return types.ErrRunFinished
	}
	return nil
}

// Run returns one run by ID.
func (j *Journal) Run(runID string) (*Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.db == nil {
		return nil, types.ErrJournalClosed
	}
	row := j.db.QueryRow(selectRuns+" WHERE run_id = ?", runID)
	r, err := hydrateRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrRunNotFound
	}
	return r, err
}

// Runs returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (j *Journal) Runs(limit int) ([]Run, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.db == nil {
		return nil, types.ErrJournalClosed
	}
	query := selectRuns + " ORDER BY started_at DESC, run_id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := hydrateRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Steps returns the steps of a run in recording order.
func (j *Journal) Steps(runID string) ([]Step, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.db == nil {
		return nil, types.ErrJournalClosed
	}
	rows, err := j.db.Query(
		"SELECT run_id, seq, processor, step, more FROM steps WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var s Step
		if err := rows.Scan(&s.RunID, &s.Seq, &s.Processor, &s.Step, &s.More); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// ExportJSONL writes every run, newest first, to path as JSONL.
func (j *Journal) ExportJSONL(path string) (int, error) {
	runs, err := j.Runs(0)
	if err != nil {
		return 0, err
	}
	records, err := marshalJSONL(runs)
	if err != nil {
		return 0, err
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, err
	}
	return len(runs), nil
}

// ReadExport loads runs from a file written by ExportJSONL.
func ReadExport(path string) ([]Run, error) {
	records, err := readJSONL(path)
	if err != nil {
		return nil, err
	}
	runs := make([]Run, 0, len(records))
	for _, rec := range records {
		var r Run
		if err := json.Unmarshal(rec, &r); err != nil {
			continue
		}
		runs = append(runs, r)
	}
	return runs, nil
}

const selectRuns = `SELECT run_id, status, started_at, finished_at, counter1, counter2,
	limit_value, steps, error FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func hydrateRun(row scanner) (*Run, error) {
	var (
		r          Run
		startedAt  string
		finishedAt sql.NullString
		errText    sql.NullString
	)
	err := row.Scan(&r.RunID, &r.Status, &startedAt, &finishedAt,
		&r.Counter1, &r.Counter2, &r.Limit, &r.Steps, &errText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if r.StartedAt, err = time.Parse(timeFormat, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeFormat, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		r.FinishedAt = &t
	}
	r.Error = errText.String
	return &r, nil
}

// generateUUID generates a new UUID v7 for run IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
