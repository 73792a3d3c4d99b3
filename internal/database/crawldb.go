package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/devspec/internal/model"
)

// FileName is the journal database file created in the data directory.
const FileName = "devspec.db"

// CrawlDB provides SQLite-based storage for crawled device pages and the
// crawl-run journal. Both tables live in the same schema, so one file can
// serve as record store, journal or both.
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

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the journal database FileName inside dbDir.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	return OpenFile(filepath.Join(dbDir, FileName), opts)
}

// OpenFile opens or creates a CrawlDB at dbPath.
// If CreateIfNotExists is true, the parent directory and database file are
// created. If it is false and the database doesn't exist, an error is returned.
func OpenFile(dbPath string, opts Options) (*CrawlDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
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

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawled device pages, one row per URL
	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		html TEXT NOT NULL,
		digest TEXT NOT NULL,
		run_id TEXT,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);

	-- One row per crawl invocation, failed runs included
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		vendors INTEGER NOT NULL DEFAULT 0,
		listing_pages INTEGER NOT NULL DEFAULT 0,
		candidates INTEGER NOT NULL DEFAULT 0,
		frontier INTEGER NOT NULL DEFAULT 0,
		fetched INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		stored INTEGER NOT NULL DEFAULT 0,
		proxy_calls INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// LoadRecords returns every stored record in insertion order.
func (cdb *CrawlDB) LoadRecords(ctx context.Context) (*model.RecordSet, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT url, html FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	set := model.NewRecordSet()
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.URL, &rec.HTML); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		set.Add(rec)
	}

	return set, rows.Err()
}

// SaveRecords upserts records inside one transaction; either all of them
// are written or none. An existing URL keeps its run ID and fetch time and
// only has its body replaced when the digest differs.
func (cdb *CrawlDB) SaveRecords(ctx context.Context, records []model.Record, runID string) (err error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO records (url, html, digest, run_id)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		html = excluded.html,
		digest = excluded.digest
	WHERE records.digest <> excluded.digest
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx, rec.URL, rec.HTML, rec.Digest(), nullString(runID)); err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.URL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// CountRecords returns the number of stored records.
func (cdb *CrawlDB) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// SaveRun appends a run to the journal. Saving the same run ID twice
// replaces the earlier entry.
func (cdb *CrawlDB) SaveRun(ctx context.Context, run model.RunSummary) error {
	query := `
	INSERT INTO crawl_runs (id, started_at, finished_at, vendors, listing_pages, candidates,
		frontier, fetched, failed, stored, proxy_calls, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		finished_at = excluded.finished_at,
		vendors = excluded.vendors,
		listing_pages = excluded.listing_pages,
		candidates = excluded.candidates,
		frontier = excluded.frontier,
		fetched = excluded.fetched,
		failed = excluded.failed,
		stored = excluded.stored,
		proxy_calls = excluded.proxy_calls,
		error = excluded.error
	`

	_, err := cdb.db.ExecContext(ctx, query,
		run.ID,
		formatTimestamp(run.StartedAt),
		nullString(formatTimestamp(run.FinishedAt)),
		run.Vendors,
		run.ListingPages,
		run.Candidates,
		run.Frontier,
		run.Fetched,
		run.Failed,
		run.Stored,
		run.ProxyCalls,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, vendors, listing_pages, candidates,
	frontier, fetched, failed, stored, proxy_calls, error`

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM crawl_runs ORDER BY started_at DESC, rowid DESC`
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves one run by ID. It returns nil when no such run exists.
func (cdb *CrawlDB) GetRun(ctx context.Context, id string) (*model.RunSummary, error) {
	row := cdb.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM crawl_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.RunSummary, error) {
	var (
		run                 model.RunSummary
		started             string
		finished, errorText sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&started,
		&finished,
		&run.Vendors,
		&run.ListingPages,
		&run.Candidates,
		&run.Frontier,
		&run.Fetched,
		&run.Failed,
		&run.Stored,
		&run.ProxyCalls,
		&errorText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan crawl run: %w", err)
	}

	run.StartedAt = parseTimestamp(started)
	if finished.Valid {
		run.FinishedAt = parseTimestamp(finished.String)
	}
	run.Error = errorText.String

	return run, nil
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// formatTimestamp renders t so that string order matches time order.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// timestampLayout is fixed width, so lexical and chronological order agree.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
