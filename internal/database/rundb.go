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

	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// RunDB provides SQLite-based storage for processing run history.
// It manages connection pooling and provides methods for saving and
// querying per-file spectrum reports.
//
// Design decision: We use a single database file for all source files
// rather than one file per dataset. This keeps history queries and
// backup/restore trivial, and the volume (one row per processed file per
// run) stays small.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
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

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "marsatmo.db")

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

	// modernc.org/sqlite connection string: mode=rw prevents creating new
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

	// SQLite only supports one writer; multiple connections buy nothing
	// for this write-mostly workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Run reports store complete per-file processing results as JSON,
	-- with scalar columns duplicated for querying without unmarshalling.
	CREATE TABLE IF NOT EXISTS run_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_file TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL,
		detected INTEGER NOT NULL DEFAULT 0,
		radius_um REAL,
		radius_undefined INTEGER NOT NULL DEFAULT 0,
		sample_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON run_reports(source_file);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON run_reports(timestamp);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport saves a complete spectrum report and returns its database ID.
// Detection and radius scalars are stored alongside the JSON so history
// listings never need to unmarshal full reports.
func (rdb *RunDB) SaveReport(ctx context.Context, report *model.SpectrumReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var radius sql.NullFloat64
	var undefined bool
	if report.Radius != nil {
		undefined = report.Radius.Undefined
		if !undefined {
			radius = sql.NullFloat64{Float64: report.Radius.Radius, Valid: true}
		}
	}

	query := `
	INSERT INTO run_reports (source_file, status, detected, radius_um, radius_undefined, sample_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		report.SourceFile,
		report.Status(),
		report.CloudDetected(),
		radius,
		undefined,
		report.SampleCount,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestReport retrieves the most recent report for a source file.
// Returns nil without error when no report exists.
func (rdb *RunDB) GetLatestReport(ctx context.Context, sourceFile string) (*model.SpectrumReport, error) {
	query := `
	SELECT report_json FROM run_reports
	WHERE source_file = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, sourceFile).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	var report model.SpectrumReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetReportByID retrieves a report by its database ID.
// Returns nil without error when the ID does not exist.
func (rdb *RunDB) GetReportByID(ctx context.Context, id int64) (*model.SpectrumReport, error) {
	query := `
	SELECT report_json FROM run_reports
	WHERE id = ?
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	var report model.SpectrumReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetRunHistory retrieves all reports for a source file, newest first.
func (rdb *RunDB) GetRunHistory(ctx context.Context, sourceFile string) ([]*model.SpectrumReport, error) {
	query := `
	SELECT report_json FROM run_reports
	WHERE source_file = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var reports []*model.SpectrumReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.SpectrumReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading the full report.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// SourceFile is the processed spectrometer CSV path.
	SourceFile string

	// Timestamp is when the file was processed.
	Timestamp time.Time

	// Status is the report status: error, cloud, or clear.
	Status string

	// Detected is true when a water-ice signature was found.
	Detected bool

	// Radius is the estimated particle radius in µm.
	// Only valid when HasRadius is true.
	Radius float64

	// HasRadius is true when a defined radius estimate was stored.
	HasRadius bool

	// RadiusUndefined is true when the estimate hit the zero-denominator
	// sentinel.
	RadiusUndefined bool

	// SampleCount is the number of samples in the processed spectrum.
	SampleCount int
}

// GetRunHistoryWithMetadata retrieves run metadata for a source file,
// newest first. This is more efficient than GetRunHistory when only the
// summary columns are needed.
func (rdb *RunDB) GetRunHistoryWithMetadata(ctx context.Context, sourceFile string) ([]RunMetadata, error) {
	query := `
	SELECT id, source_file, timestamp, status, detected, radius_um, radius_undefined, sample_count
	FROM run_reports
	WHERE source_file = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string
		var radius sql.NullFloat64

		if err := rows.Scan(
			&meta.ID,
			&meta.SourceFile,
			&timestamp,
			&meta.Status,
			&meta.Detected,
			&radius,
			&meta.RadiusUndefined,
			&meta.SampleCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		if radius.Valid {
			meta.Radius = radius.Float64
			meta.HasRadius = true
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListSources returns all source files with at least one stored run.
func (rdb *RunDB) ListSources(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT source_file FROM run_reports
	ORDER BY source_file
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
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
