package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/legalcorpora/regcrawl/internal/model"
)

// Run kinds stored in the runs table.
const (
	RunKindCrawl  = "crawl"
	RunKindVerify = "verify"
)

// CrawlDB provides SQLite-based storage for run history.
//
// Design decision: one database file for all jurisdictions rather than one
// per jurisdiction. Cross-jurisdiction queries ("which states haven't been
// crawled this month") stay cheap, and there is only one file to back up.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "regcrawl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw refuses to create new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per crawl or verification run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		jurisdiction TEXT NOT NULL,
		kind TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		resumed INTEGER NOT NULL DEFAULT 0,
		sections INTEGER NOT NULL DEFAULT 0,
		skipped_sections INTEGER NOT NULL DEFAULT 0,
		visited INTEGER NOT NULL DEFAULT 0,
		records INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_jurisdiction ON runs(jurisdiction);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Run failures store the unresolved nodes of a run
	CREATE TABLE IF NOT EXISTS run_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		lex_path TEXT,
		error TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_failures_run ON run_failures(run_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one stored crawl or verification run.
type Run struct {
	ID           int64
	Jurisdiction string

	// Kind is RunKindCrawl or RunKindVerify.
	Kind string

	StartedAt  time.Time
	FinishedAt time.Time

	// Resumed reports whether the run started from a resume cursor.
	Resumed bool

	Sections        int
	SkippedSections int
	Visited         int
	Records         int
	Failures        int

	// Summary is an optional JSON blob with run-kind-specific detail, such
	// as a verification report.
	Summary string
}

// InsertRun stores a completed run and returns its ID.
func (cdb *CrawlDB) InsertRun(ctx context.Context, run *Run) (int64, error) {
	query := `
	INSERT INTO runs (jurisdiction, kind, started_at, finished_at, resumed,
		sections, skipped_sections, visited, records, failures, summary)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		run.Jurisdiction,
		run.Kind,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Resumed,
		run.Sections,
		run.SkippedSections,
		run.Visited,
		run.Records,
		run.Failures,
		run.Summary,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// RecordFailures stores the unresolved nodes of a run in one transaction.
func (cdb *CrawlDB) RecordFailures(ctx context.Context, runID int64, entries []model.FailureEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_failures (run_id, url, lex_path, error)
	VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare failure insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		lexJSON, err := json.Marshal(entry.LexPath)
		if err != nil {
			return fmt.Errorf("failed to serialize lex_path: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, runID, entry.URL, string(lexJSON), entry.Error); err != nil {
			return fmt.Errorf("failed to insert failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit failures: %w", err)
	}
	return nil
}

// RunHistory retrieves runs for a jurisdiction, most recent first. A limit
// of 0 means no limit. An empty jurisdiction returns runs for all
// jurisdictions.
func (cdb *CrawlDB) RunHistory(ctx context.Context, jurisdiction string, limit int) ([]Run, error) {
	query := `
	SELECT id, jurisdiction, kind, started_at, finished_at, resumed,
		sections, skipped_sections, visited, records, failures, summary
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if jurisdiction != "" {
		query += " AND jurisdiction = ?"
		args = append(args, jurisdiction)
	}

	query += " ORDER BY started_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		var run Run
		var started, finished string
		var summary sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.Jurisdiction,
			&run.Kind,
			&started,
			&finished,
			&run.Resumed,
			&run.Sections,
			&run.SkippedSections,
			&run.Visited,
			&run.Records,
			&run.Failures,
			&summary,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		run.Summary = summary.String

		results = append(results, run)
	}

	return results, rows.Err()
}

// LatestRun retrieves the most recent run of the given kind for a
// jurisdiction, or nil when none exists.
func (cdb *CrawlDB) LatestRun(ctx context.Context, jurisdiction, kind string) (*Run, error) {
	runs, err := cdb.runsWhere(ctx, "jurisdiction = ? AND kind = ?", jurisdiction, kind)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// runsWhere is the shared query body for single-condition run lookups.
func (cdb *CrawlDB) runsWhere(ctx context.Context, cond string, args ...any) ([]Run, error) {
	query := `
	SELECT id, jurisdiction, kind, started_at, finished_at, resumed,
		sections, skipped_sections, visited, records, failures, summary
	FROM runs
	WHERE ` + cond + `
	ORDER BY started_at DESC, id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		var run Run
		var started, finished string
		var summary sql.NullString

		err := rows.Scan(
			&run.ID, &run.Jurisdiction, &run.Kind, &started, &finished,
			&run.Resumed, &run.Sections, &run.SkippedSections, &run.Visited,
			&run.Records, &run.Failures, &summary,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		run.Summary = summary.String
		results = append(results, run)
	}

	return results, rows.Err()
}

// ListJurisdictions returns every jurisdiction with at least one stored run.
func (cdb *CrawlDB) ListJurisdictions(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT jurisdiction FROM runs
	ORDER BY jurisdiction
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jurisdictions: %w", err)
	}
	defer rows.Close()

	var jurisdictions []string
	for rows.Next() {
		var j string
		if err := rows.Scan(&j); err != nil {
			return nil, fmt.Errorf("failed to scan jurisdiction: %w", err)
		}
		jurisdictions = append(jurisdictions, j)
	}

	return jurisdictions, rows.Err()
}

// FailuresForRun retrieves the unresolved nodes recorded for a run.
func (cdb *CrawlDB) FailuresForRun(ctx context.Context, runID int64) ([]model.FailureEntry, error) {
	query := `
	SELECT url, lex_path, error FROM run_failures
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	var entries []model.FailureEntry
	for rows.Next() {
		var entry model.FailureEntry
		var lexJSON sql.NullString

		if err := rows.Scan(&entry.URL, &lexJSON, &entry.Error); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}

		if lexJSON.Valid && lexJSON.String != "" {
			if err := json.Unmarshal([]byte(lexJSON.String), &entry.LexPath); err != nil {
				return nil, fmt.Errorf("failed to parse lex_path: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
