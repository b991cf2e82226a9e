package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial calls/results schema
const currentSchemaVersion = 1

// Journal is a durable log of calls forwarded to a store.
type Journal struct {
	db     *sql.DB
	clock  *Clock
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithIDGenerator sets the generator for call and session IDs.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(j *Journal) {
		if g != nil {
			j.ids = g
		}
	}
}

// WithLogger sets the logger used for journal write failures.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// Open creates or opens a journal database at path.
// Applies pragmas and the schema, then resumes the clock from the highest
// recorded seq. Safe to call on an existing journal.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	last, err := maxSeq(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{
		db:     db,
		clock:  NewClockAt(last),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// NewSession returns a fresh session identifier.
func (j *Journal) NewSession() string {
	return j.ids.Generate()
}

// Seq returns the last sequence number issued.
func (j *Journal) Seq() int64 {
	return j.clock.Current()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func maxSeq(db *sql.DB) (int64, error) {
	var seq sql.NullInt64
	err := db.QueryRow(`
		SELECT MAX(seq) FROM (
			SELECT seq FROM calls
			UNION ALL
			SELECT seq FROM results
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read max seq: %w", err)
	}
	return seq.Int64, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (j *Journal) verifyPragma(name, expected string) error {
	var value string
	if err := j.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
