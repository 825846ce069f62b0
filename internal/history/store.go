// Package history persists suite run outcomes in a SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/walkerjoe/gsprobe/internal/expect"
)

//go:embed schema.sql
var schemaSQL string

// RunRecord is one recorded suite run.
type RunRecord struct {
	ID           int64
	SuiteName    string
	SuiteFile    string
	Command      string
	ExitCode     int
	Duration     time.Duration
	ChecksTotal  int
	ChecksFailed int
	FailedLabels []string
	CreatedAt    time.Time
}

// Passed reports whether every check in the run passed.
func (r *RunRecord) Passed() bool {
	return r.ChecksFailed == 0
}

// NewRecord builds a RunRecord from an evaluation report.
func NewRecord(report *expect.Report) *RunRecord {
	rec := &RunRecord{
		SuiteName:    report.Suite.Name,
		SuiteFile:    report.Suite.FilePath,
		Command:      strings.Join(report.Suite.Args, " "),
		ExitCode:     report.ExitCode,
		Duration:     report.Duration,
		ChecksTotal:  len(report.Results),
		ChecksFailed: len(report.Failed()),
	}
	for _, res := range report.Failed() {
		rec.FailedLabels = append(rec.FailedLabels, res.Check.Label)
	}
	return rec
}

// SuiteStats aggregates run history for one suite.
type SuiteStats struct {
	SuiteName string
	Runs      int
	Passed    int
	Failed    int
	LastRun   time.Time
}

// Store manages the SQLite database for run history
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	// Handle in-memory database
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	// Ensure parent directory exists for file-based databases
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure SQLite for concurrent access with retry logic.
	// Set busy_timeout FIRST so subsequent operations wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, sql string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(sql)
		if err == nil {
			return nil
		}

		// Only retry on "database is locked" errors
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		delay := baseDelay * time.Duration(1<<attempt)
		time.Sleep(delay)
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun records a suite run in the database and sets rec.ID.
func (s *Store) RecordRun(ctx context.Context, rec *RunRecord) error {
	failedJSON := "[]"
	if len(rec.FailedLabels) > 0 {
		data, err := json.Marshal(rec.FailedLabels)
		if err != nil {
			return fmt.Errorf("marshal failed labels: %w", err)
		}
		failedJSON = string(data)
	}

	query := `INSERT INTO suite_runs
		(suite_name, suite_file, command, exit_code, duration_ms, checks_total, checks_failed, failed_labels)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		rec.SuiteName,
		rec.SuiteFile,
		rec.Command,
		rec.ExitCode,
		rec.Duration.Milliseconds(),
		rec.ChecksTotal,
		rec.ChecksFailed,
		failedJSON,
	)
	if err != nil {
		return fmt.Errorf("insert suite run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, suite_name, suite_file, command, exit_code, duration_ms,
		checks_total, checks_failed, failed_labels, created_at
		FROM suite_runs ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var durationMs int64
		var failedJSON string
		if err := rows.Scan(&rec.ID, &rec.SuiteName, &rec.SuiteFile, &rec.Command,
			&rec.ExitCode, &durationMs, &rec.ChecksTotal, &rec.ChecksFailed,
			&failedJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suite run: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if err := json.Unmarshal([]byte(failedJSON), &rec.FailedLabels); err != nil {
			return nil, fmt.Errorf("unmarshal failed labels: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats returns aggregate history for one suite.
func (s *Store) Stats(ctx context.Context, suiteName string) (*SuiteStats, error) {
	query := `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN checks_failed = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN checks_failed > 0 THEN 1 ELSE 0 END), 0),
		COALESCE(MAX(created_at), '')
		FROM suite_runs WHERE suite_name = ?`

	// MAX() strips the column's declared type, so the driver hands the
	// timestamp back as text.
	stats := &SuiteStats{SuiteName: suiteName}
	var lastRun string
	err := s.db.QueryRowContext(ctx, query, suiteName).Scan(
		&stats.Runs, &stats.Passed, &stats.Failed, &lastRun)
	if err != nil {
		return nil, fmt.Errorf("query suite stats: %w", err)
	}
	if lastRun != "" {
		t, err := parseTimestamp(lastRun)
		if err != nil {
			return nil, fmt.Errorf("parse last run time: %w", err)
		}
		stats.LastRun = t
	}
	return stats, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Prune removes runs older than keepDays and trims each suite to at most
// maxPerSuite runs. Zero disables the respective limit.
func (s *Store) Prune(ctx context.Context, keepDays, maxPerSuite int) error {
	if keepDays > 0 {
		// CURRENT_TIMESTAMP stores UTC text, so the cutoff must compare
		// in the same representation.
		cutoff := time.Now().UTC().AddDate(0, 0, -keepDays).Format("2006-01-02 15:04:05")
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM suite_runs WHERE created_at < ?`, cutoff); err != nil {
			return fmt.Errorf("prune by age: %w", err)
		}
	}

	if maxPerSuite > 0 {
		// Keep the newest maxPerSuite rows per suite.
		query := `DELETE FROM suite_runs WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY suite_name ORDER BY id DESC) AS rn
				FROM suite_runs
			) WHERE rn <= ?
		)`
		if _, err := s.db.ExecContext(ctx, query, maxPerSuite); err != nil {
			return fmt.Errorf("prune by count: %w", err)
		}
	}
	return nil
}
