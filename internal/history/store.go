// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion outcomes in a SQLite database so the
// CLI can list what was converted, when, and which strategy produced it.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

const (
	appDir = "mindmap-pdf"
	dbFile = "history.db"

	// timeLayout has a fixed width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	defaultLimit = 20
)

// ErrNotFound is returned by Get when no outcome has the requested ID.
var ErrNotFound = errors.New("conversion not found")

// DefaultPath returns the per-user database location used when none is
// configured: mindmap-pdf/history.db under $XDG_DATA_HOME or the platform
// equivalent. Its parent directory is created if missing.
func DefaultPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join(appDir, dbFile))
	if err != nil {
		return "", fmt.Errorf("locating history database: %w", err)
	}
	return path, nil
}

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at path, creating its directory
// and schema if they do not exist.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL,
			output_path TEXT NOT NULL,
			status TEXT NOT NULL,
			strategy TEXT,
			error_kind TEXT,
			error TEXT,
			attempts TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_started_at ON conversions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores o, replacing any earlier record with the same ID.
func (s *Store) Record(ctx context.Context, o *types.Outcome) error {
	if o == nil || o.ID == "" {
		return errors.New("recording conversion: outcome has no id")
	}
	attemptsJSON, err := json.Marshal(o.Attempts)
	if err != nil {
		return fmt.Errorf("encoding attempts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, started_at, duration_ns, output_path, status, strategy, error_kind, error, attempts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			started_at=excluded.started_at, duration_ns=excluded.duration_ns,
			output_path=excluded.output_path, status=excluded.status,
			strategy=excluded.strategy, error_kind=excluded.error_kind,
			error=excluded.error, attempts=excluded.attempts`,
		o.ID, o.StartedAt.UTC().Format(timeLayout), int64(o.Duration),
		o.OutputPath, string(o.Status), o.Strategy, o.ErrorKind, o.Error,
		string(attemptsJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting conversion %s: %w", o.ID, err)
	}
	return nil
}

// QueryOptions filters List results.
type QueryOptions struct {
	// Limit caps the number of outcomes returned (default 20).
	Limit int
	// Status restricts results to one status when non-empty.
	Status types.ConversionStatus
}

// List returns stored outcomes, most recent first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.Outcome, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT id, started_at, duration_ns, output_path, status, strategy, error_kind, error, attempts
		FROM conversions`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var out []types.Outcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Get returns the outcome with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.Outcome, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, duration_ns, output_path, status, strategy, error_kind, error, attempts
		 FROM conversions WHERE id = ?`, id)
	o, err := scanOutcome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// Summary counts stored outcomes.
type Summary struct {
	Converted  int
	Failed     int
	ByStrategy map[string]int
}

// Total returns the number of recorded conversions.
func (s Summary) Total() int {
	return s.Converted + s.Failed
}

// Summarize counts outcomes by status and, for successes, by strategy.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{ByStrategy: map[string]int{}}
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COALESCE(strategy, ''), count(*) FROM conversions GROUP BY status, strategy`)
	if err != nil {
		return sum, fmt.Errorf("summarizing conversions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, strategy string
		var n int
		if err := rows.Scan(&status, &strategy, &n); err != nil {
			return sum, fmt.Errorf("scanning summary: %w", err)
		}
		switch types.ConversionStatus(status) {
		case types.ConversionDone:
			sum.Converted += n
			sum.ByStrategy[strategy] += n
		case types.ConversionFailed:
			sum.Failed += n
		}
	}
	return sum, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutcome(sc scanner) (*types.Outcome, error) {
	var o types.Outcome
	var startedAt, status string
	var durationNS int64
	var strategy, errorKind, errMsg, attJSON sql.NullString
	if err := sc.Scan(&o.ID, &startedAt, &durationNS, &o.OutputPath, &status,
		&strategy, &errorKind, &errMsg, &attJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning conversion: %w", err)
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at for %s: %w", o.ID, err)
	}
	o.StartedAt = t
	o.Duration = time.Duration(durationNS)
	o.Status = types.ConversionStatus(status)
	o.Strategy = strategy.String
	o.ErrorKind = errorKind.String
	o.Error = errMsg.String

	if attJSON.Valid && attJSON.String != "" {
		if err := json.Unmarshal([]byte(attJSON.String), &o.Attempts); err != nil {
			return nil, fmt.Errorf("decoding attempts for %s: %w", o.ID, err)
		}
	}
	return &o, nil
}
