package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/reconforge/netrecon/internal/model"
)

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "netrecon.db"

// ReconDB stores scan reports and crawl records in SQLite.
type ReconDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures how the database is opened.
type Options struct {
	// CreateIfNotExists creates the directory and database file when absent.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database under dbDir.
func Open(dbDir string, opts Options) (*ReconDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("database: create directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database: not found at %s: %w", dbPath, err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	// SQLite supports one writer; a larger pool only adds lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ReconDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database: enable WAL: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: create schema: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ReconDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file location.
func (rdb *ReconDB) Path() string {
	return rdb.dbPath
}

// createTables creates the schema if it does not exist.
func (rdb *ReconDB) createTables() error {
	schema := `
	-- One row per fetched page, upserted on re-crawl.
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		snapshot TEXT,
		raw_hash TEXT,
		headers TEXT,
		UNIQUE(url, target)
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_url ON crawls(url);
	CREATE INDEX IF NOT EXISTS idx_crawls_target ON crawls(target);
	CREATE INDEX IF NOT EXISTS idx_crawls_timestamp ON crawls(timestamp);

	-- Complete scan reports as JSON, keyed by their generated ID.
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id TEXT NOT NULL UNIQUE,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_target ON scan_reports(target);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// CrawlRecord is one stored page fetch.
type CrawlRecord struct {
	ID          int64
	URL         string
	Target      string
	Timestamp   time.Time
	StatusCode  int
	ContentType string
	Title       string
	Snapshot    string
	RawHash     string
	Headers     map[string][]string
}

// InsertCrawlRecord inserts or updates the record for (url, target).
func (rdb *ReconDB) InsertCrawlRecord(ctx context.Context, record *CrawlRecord) (int64, error) {
	headersJSON, err := json.Marshal(record.Headers)
	if err != nil {
		return 0, fmt.Errorf("database: serialize headers: %w", err)
	}

	query := `
	INSERT INTO crawls (url, target, status_code, content_type, title, snapshot, raw_hash, headers)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, target) DO UPDATE SET
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		snapshot = excluded.snapshot,
		raw_hash = excluded.raw_hash,
		headers = excluded.headers,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := rdb.db.ExecContext(ctx, query,
		record.URL,
		record.Target,
		record.StatusCode,
		record.ContentType,
		record.Title,
		record.Snapshot,
		record.RawHash,
		string(headersJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("database: insert crawl record: %w", err)
	}

	return result.LastInsertId()
}

// GetCrawlRecord retrieves the record for (url, target), or nil when the
// page was never stored.
func (rdb *ReconDB) GetCrawlRecord(ctx context.Context, url, target string) (*CrawlRecord, error) {
	query := `
	SELECT id, url, target, timestamp, status_code, content_type, title, snapshot, raw_hash, headers
	FROM crawls
	WHERE url = ? AND target = ?
	`

	var record CrawlRecord
	var headersJSON, timestamp string

	err := rdb.db.QueryRowContext(ctx, query, url, target).Scan(
		&record.ID,
		&record.URL,
		&record.Target,
		&timestamp,
		&record.StatusCode,
		&record.ContentType,
		&record.Title,
		&record.Snapshot,
		&record.RawHash,
		&headersJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database: get crawl record: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)

	if headersJSON != "" {
		if err := json.Unmarshal([]byte(headersJSON), &record.Headers); err != nil {
			return nil, fmt.Errorf("database: parse headers: %w", err)
		}
	}

	return &record, nil
}

// SaveReport stores a complete scan report as JSON.
func (rdb *ReconDB) SaveReport(ctx context.Context, report *model.ReconReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("database: serialize report: %w", err)
	}

	query := `INSERT INTO scan_reports (report_id, target, report_json) VALUES (?, ?, ?)`
	if _, err := rdb.db.ExecContext(ctx, query, report.ID, report.Target, string(reportJSON)); err != nil {
		return fmt.Errorf("database: save report: %w", err)
	}

	return nil
}

// GetReport retrieves a stored report by its ID, or nil when unknown.
func (rdb *ReconDB) GetReport(ctx context.Context, reportID string) (*model.ReconReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM scan_reports WHERE report_id = ?`, reportID,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database: get report: %w", err)
	}

	var report model.ReconReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("database: parse report: %w", err)
	}
	return &report, nil
}

// ScanSummary is one row of scan history.
type ScanSummary struct {
	ReportID  string
	Target    string
	Timestamp time.Time
}

// History lists stored scans for target, newest first. A limit of zero
// returns everything.
func (rdb *ReconDB) History(ctx context.Context, target string, limit int) ([]ScanSummary, error) {
	query := `
	SELECT report_id, target, timestamp
	FROM scan_reports
	WHERE target = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{target}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database: query history: %w", err)
	}
	defer rows.Close()

	var summaries []ScanSummary
	for rows.Next() {
		var s ScanSummary
		var timestamp string
		if err := rows.Scan(&s.ReportID, &s.Target, &timestamp); err != nil {
			return nil, fmt.Errorf("database: scan history row: %w", err)
		}
		s.Timestamp = parseTimestamp(timestamp)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: iterate history: %w", err)
	}

	return summaries, nil
}

// parseTimestamp handles the timestamp formats SQLite may return.
func parseTimestamp(value string) time.Time {
	layouts := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05Z",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
