package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/darkhound/internal/model"
)

// opTimeout bounds every single store operation. A locked or slow
// database must not stall the monitoring cycle.
const opTimeout = 5 * time.Second

// defaultTopLimit is how many leaks TopLeaks returns when the caller
// passes a non-positive limit.
const defaultTopLimit = 10

// LeakDB provides SQLite-based storage for leak findings.
type LeakDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// logger reports coerced fields at the persistence boundary.
	logger *slog.Logger
}

// Options configures LeakDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool

	// Logger receives boundary-coercion warnings. Defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LeakDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*LeakDB, error) {
	dbPath := filepath.Join(dbDir, "darkhound.db")

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

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
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

	// SQLite only supports one writer; a single pooled connection also
	// keeps the WAL pragma applied to every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ldb := &LeakDB{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the database connection.
func (ldb *LeakDB) Close() error {
	return ldb.db.Close()
}

// Path returns the database file path.
func (ldb *LeakDB) Path() string {
	return ldb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (ldb *LeakDB) createTables() error {
	schema := `
	-- Leaks store one row per finding, append-only.
	CREATE TABLE IF NOT EXISTS leaks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		indicator TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT '',
		entities TEXT NOT NULL DEFAULT '',
		risk_score INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_leaks_indicator ON leaks(indicator);
	CREATE INDEX IF NOT EXISTS idx_leaks_risk ON leaks(risk_score);
	CREATE INDEX IF NOT EXISTS idx_leaks_created ON leaks(created_at);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// Persist writes one finding as a new leak row and returns its ID.
//
// Fields are re-validated at this boundary: a missing indicator, context,
// or entity map is a validation error caught before any I/O, over-long
// fields are truncated, and an out-of-range score is coerced to the
// minimum with a warning rather than trusted. The operation runs under
// its own timeout derived from ctx.
func (ldb *LeakDB) Persist(ctx context.Context, finding model.Finding) (int64, error) {
	if finding.Indicator == "" {
		return 0, &StoreError{Kind: KindValidation, Op: "persist", Err: model.ErrEmptyIndicator}
	}
	if finding.Context == "" {
		return 0, &StoreError{Kind: KindValidation, Op: "persist", Err: model.ErrEmptyContext}
	}
	if len(finding.Entities) == 0 {
		return 0, &StoreError{Kind: KindValidation, Op: "persist", Err: model.ErrMissingEntities}
	}

	indicator := model.Truncate(finding.Indicator, model.MaxIndicatorLength)
	contextText := model.Truncate(finding.Context, model.MaxContextLength)
	entities := finding.RenderedEntities()

	score := finding.RiskScore
	if score < model.MinRiskScore || score > model.MaxRiskScore {
		ldb.logger.Warn("risk score outside valid range, coercing to minimum",
			"indicator", indicator,
			"score", score)
		score = model.MinRiskScore
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := ldb.db.ExecContext(opCtx,
		`INSERT INTO leaks (indicator, context, entities, risk_score) VALUES (?, ?, ?, ?)`,
		indicator, contextText, entities, score)
	if err != nil {
		return 0, &StoreError{Kind: classifyDBError(err), Op: "persist", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, &StoreError{Kind: KindOperational, Op: "persist", Err: err}
	}
	return id, nil
}

// TopLeaks returns the highest-risk leaks, most severe first. Ties are
// broken by recency, then by insertion order, so the ranking is stable
// across identical queries. A non-positive limit uses the default.
func (ldb *LeakDB) TopLeaks(ctx context.Context, limit int) ([]model.PersistedLeak, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := ldb.db.QueryContext(opCtx, `
	SELECT id, indicator, context, entities, risk_score, created_at
	FROM leaks
	ORDER BY risk_score DESC, created_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, &StoreError{Kind: classifyDBError(err), Op: "top", Err: err}
	}
	defer rows.Close()

	var leaks []model.PersistedLeak
	for rows.Next() {
		var leak model.PersistedLeak
		var createdAt string

		if err := rows.Scan(&leak.ID, &leak.Indicator, &leak.Context, &leak.Entities, &leak.RiskScore, &createdAt); err != nil {
			return nil, &StoreError{Kind: KindOperational, Op: "top", Err: err}
		}
		leak.CreatedAt = parseTimestamp(createdAt)
		leaks = append(leaks, leak)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Kind: KindOperational, Op: "top", Err: err}
	}

	return leaks, nil
}

// CountLeaks returns the total number of stored leaks.
func (ldb *LeakDB) CountLeaks(ctx context.Context) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var count int64
	if err := ldb.db.QueryRowContext(opCtx, `SELECT COUNT(*) FROM leaks`).Scan(&count); err != nil {
		return 0, &StoreError{Kind: classifyDBError(err), Op: "count", Err: err}
	}
	return count, nil
}

// classifyDBError maps a database error to a StoreError kind.
func classifyDBError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindOperational
	}
	// modernc.org/sqlite reports constraint violations in the message.
	msg := err.Error()
	if strings.Contains(msg, "constraint") || strings.Contains(msg, "malformed") || strings.Contains(msg, "corrupt") {
		return KindIntegrity
	}
	return KindOperational
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
