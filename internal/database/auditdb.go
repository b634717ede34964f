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

	"github.com/nao1215/seoscan/internal/model"
)

// dbFileName is the audit history database file.
const dbFileName = "seoscan.db"

// AuditDB stores audit results for historical comparison. One database
// file holds the history of every audited site; keeping them together
// makes cross-site listings and backups trivial.
type AuditDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when
	// they do not exist yet.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended; history
	// listings read while an audit writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the audit database under dbDir.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports a single writer; more connections just contend.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- One row per completed audit. The full result lives in
	-- result_json; the extracted columns serve listings and compares.
	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		pages_scanned INTEGER NOT NULL,
		health_score REAL NOT NULL,
		health_grade TEXT NOT NULL,
		severity_summary TEXT,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_site ON audits(site);
	CREATE INDEX IF NOT EXISTS idx_audits_timestamp ON audits(timestamp);
	`
	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAuditResult stores a completed audit and returns its row ID.
func (adb *AuditDB) SaveAuditResult(ctx context.Context, result *model.AuditResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("serialize result: %w", err)
	}

	summary := map[string]int{
		string(model.SeverityHigh):   result.CountBySeverity(model.SeverityHigh),
		string(model.SeverityMedium): result.CountBySeverity(model.SeverityMedium),
		string(model.SeverityLow):    result.CountBySeverity(model.SeverityLow),
		string(model.SeverityInfo):   result.CountBySeverity(model.SeverityInfo),
	}
	summaryJSON, _ := json.Marshal(summary) //nolint:errcheck,errchkjson // plain map, cannot fail

	query := `
	INSERT INTO audits (site, pages_scanned, health_score, health_grade, severity_summary, result_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := adb.db.ExecContext(ctx, query,
		result.Site,
		result.PagesScanned,
		result.HealthScore(),
		result.HealthGrade(),
		string(summaryJSON),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("save audit: %w", err)
	}
	return res.LastInsertId()
}

// GetLatestAudit retrieves the most recent audit of a site, or nil
// when the site has never been audited.
func (adb *AuditDB) GetLatestAudit(ctx context.Context, site string) (*model.AuditResult, error) {
	query := `
	SELECT result_json FROM audits
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	return adb.queryOne(ctx, query, site)
}

// GetAuditByID retrieves an audit by its row ID, or nil when absent.
func (adb *AuditDB) GetAuditByID(ctx context.Context, id int64) (*model.AuditResult, error) {
	return adb.queryOne(ctx, `SELECT result_json FROM audits WHERE id = ?`, id)
}

// queryOne runs a single-row result_json query.
func (adb *AuditDB) queryOne(ctx context.Context, query string, args ...any) (*model.AuditResult, error) {
	var resultJSON string
	err := adb.db.QueryRowContext(ctx, query, args...).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get audit: %w", err)
	}

	var result model.AuditResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("parse audit: %w", err)
	}
	return &result, nil
}

// ListAuditedSites returns every site with stored audits, sorted.
func (adb *AuditDB) ListAuditedSites(ctx context.Context) ([]string, error) {
	rows, err := adb.db.QueryContext(ctx, `SELECT DISTINCT site FROM audits ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// AuditMetadata summarizes one stored audit without its full result.
type AuditMetadata struct {
	// ID is the audit's database row ID.
	ID int64

	// Site is the audited site.
	Site string

	// Timestamp is when the audit was stored.
	Timestamp time.Time

	// PagesScanned is the crawl size.
	PagesScanned int

	// HealthScore and HealthGrade are the overall outcome.
	HealthScore float64
	HealthGrade string

	// SeveritySummary counts issues per severity.
	SeveritySummary map[string]int
}

// GetAuditHistory retrieves the stored audits of a site, newest first,
// as metadata only.
func (adb *AuditDB) GetAuditHistory(ctx context.Context, site string) ([]AuditMetadata, error) {
	query := `
	SELECT id, site, timestamp, pages_scanned, health_score, health_grade, severity_summary
	FROM audits
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	`
	rows, err := adb.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var meta AuditMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Site, &timestamp, &meta.PagesScanned,
			&meta.HealthScore, &meta.HealthGrade, &summaryJSON); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.SeveritySummary = make(map[string]int)
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.SeveritySummary); err != nil {
				meta.SeveritySummary = make(map[string]int)
			}
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// timestampFormats are the formats SQLite may return, most specific
// first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a SQLite timestamp, returning the zero time
// when no known format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
