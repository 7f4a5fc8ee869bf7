package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/doccrawl/doccrawl/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl session history.
//
// Design decision: We use a single database file for all crawled sites
// rather than one file per site. This keeps the history command simple
// and makes cross-site queries (list all crawled sites) cheap.
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
	dbPath := filepath.Join(dbDir, "doccrawl.db")

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

	// modernc.org/sqlite uses DSN modes to control file creation:
	// mode=rwc allows creation, mode=rw requires the file to exist.
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

	// SQLite only supports one writer
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
	-- Sessions store one row per crawl run
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		batch_size INTEGER NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		elapsed_ms INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		fetched INTEGER NOT NULL,
		cached INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		total_bytes INTEGER NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_base_url ON sessions(base_url);
	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);

	-- Pages store one row per page touched during a session
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		url TEXT NOT NULL,
		slug TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		from_cache INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		links INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Session summarizes a stored crawl run.
type Session struct {
	ID         int64
	BaseURL    string
	OutputDir  string
	BatchSize  int
	StartedAt  time.Time
	Elapsed    time.Duration
	Pages      int
	Fetched    int
	Cached     int
	Failed     int
	TotalBytes int64
	Cancelled  bool
}

// SaveCrawlReport persists a crawl report as a session with its pages.
// The insert runs in a transaction so a partial session is never visible.
func (cdb *CrawlDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
	INSERT INTO sessions (base_url, output_dir, batch_size, started_at, elapsed_ms, pages, fetched, cached, failed, total_bytes, cancelled)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		report.BaseURL,
		report.OutputDir,
		report.BatchSize,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Elapsed.Milliseconds(),
		len(report.Pages),
		report.Fetched(),
		report.Cached(),
		report.Failed(),
		report.TotalBytes(),
		boolToInt(report.Cancelled),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}

	pageQuery := `
	INSERT INTO pages (session_id, url, slug, bytes, from_cache, failed, links, elapsed_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, page := range report.Pages {
		if _, err := tx.ExecContext(ctx, pageQuery,
			sessionID,
			page.URL,
			page.Slug,
			page.Bytes,
			boolToInt(page.FromCache),
			boolToInt(page.Failed),
			page.Links,
			page.Elapsed.Milliseconds(),
		); err != nil {
			return 0, fmt.Errorf("failed to insert page record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}

	return sessionID, nil
}

// GetSessions retrieves stored sessions, most recent first.
// If baseURL is non-empty, only sessions for that site are returned.
func (cdb *CrawlDB) GetSessions(ctx context.Context, baseURL string) ([]Session, error) {
	query := `
	SELECT id, base_url, output_dir, batch_size, started_at, elapsed_ms, pages, fetched, cached, failed, total_bytes, cancelled
	FROM sessions
	`
	args := make([]interface{}, 0)

	if baseURL != "" {
		query += " WHERE base_url = ?"
		args = append(args, baseURL)
	}

	query += " ORDER BY started_at DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var startedAt string
		var elapsedMS int64
		var cancelled int

		err := rows.Scan(
			&s.ID,
			&s.BaseURL,
			&s.OutputDir,
			&s.BatchSize,
			&startedAt,
			&elapsedMS,
			&s.Pages,
			&s.Fetched,
			&s.Cached,
			&s.Failed,
			&s.TotalBytes,
			&cancelled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		s.StartedAt = parseTimestamp(startedAt)
		s.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		s.Cancelled = cancelled != 0
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// GetSessionPages retrieves the page records for a session.
func (cdb *CrawlDB) GetSessionPages(ctx context.Context, sessionID int64) ([]model.PageResult, error) {
	query := `
	SELECT url, slug, bytes, from_cache, failed, links, elapsed_ms
	FROM pages
	WHERE session_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session pages: %w", err)
	}
	defer rows.Close()

	var pages []model.PageResult
	for rows.Next() {
		var p model.PageResult
		var fromCache, failed int
		var elapsedMS int64

		if err := rows.Scan(&p.URL, &p.Slug, &p.Bytes, &fromCache, &failed, &p.Links, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan page record: %w", err)
		}

		p.FromCache = fromCache != 0
		p.Failed = failed != 0
		p.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// ListCrawledSites returns the distinct base URLs that have stored sessions.
func (cdb *CrawlDB) ListCrawledSites(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT base_url FROM sessions
	ORDER BY base_url
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
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
