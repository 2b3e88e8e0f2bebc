// Package ledger records finished runs in a local SQLite database so the
// CLI can list past conversions.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/taigrr/bricklayer/pkg/errors"
)

// Run is one ledger row.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Input     string
	// Options is the run configuration as JSON.
	Options json.RawMessage
	// Dims is the packed grid's size, outermost axis first. Axes[i] names
	// the mesh axis (0=x, 1=y, 2=z) that grid axis i came from.
	Dims     [3]int
	Axes     [3]int
	Solid    int
	Filled   int
	Unfilled int
	Bricks   int
	// Err is empty for successful runs.
	Err string
}

// Succeeded reports whether the run finished without error.
func (r Run) Succeeded() bool { return r.Err == "" }

// DB is a handle to the ledger database.
type DB struct {
	db *sql.DB
}

// DefaultPath returns the per-user ledger location.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "bricklayer", "runs.db"), nil
}

// Open opens or creates the ledger at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "empty ledger path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create ledger dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open ledger")
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			input TEXT NOT NULL,
			options TEXT NOT NULL,
			dim_0 INTEGER NOT NULL,
			dim_1 INTEGER NOT NULL,
			dim_2 INTEGER NOT NULL,
			axis_0 INTEGER NOT NULL DEFAULT 2,
			axis_1 INTEGER NOT NULL DEFAULT 1,
			axis_2 INTEGER NOT NULL DEFAULT 0,
			solid INTEGER NOT NULL,
			filled INTEGER NOT NULL,
			unfilled INTEGER NOT NULL,
			bricks INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS runs_started ON runs(started_at);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(errors.ErrCodeIO, err, "init ledger")
		}
	}
	if err := migrateAxisColumns(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeIO, err, "migrate ledger")
	}
	return &DB{db: db}, nil
}

// migrateAxisColumns upgrades ledgers written before the axis order was
// recorded. Their dim_z/dim_y/dim_x columns always held a height-first grid.
func migrateAxisColumns(db *sql.DB) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name = 'dim_z'`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	for _, stmt := range []string{
		`ALTER TABLE runs RENAME COLUMN dim_z TO dim_0;`,
		`ALTER TABLE runs RENAME COLUMN dim_y TO dim_1;`,
		`ALTER TABLE runs RENAME COLUMN dim_x TO dim_2;`,
		`ALTER TABLE runs ADD COLUMN axis_0 INTEGER NOT NULL DEFAULT 2;`,
		`ALTER TABLE runs ADD COLUMN axis_1 INTEGER NOT NULL DEFAULT 1;`,
		`ALTER TABLE runs ADD COLUMN axis_2 INTEGER NOT NULL DEFAULT 0;`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (d *DB) Close() error { return d.db.Close() }

// Record inserts r, assigning an ID when it has none, and returns the ID.
func (d *DB) Record(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if len(r.Options) == 0 {
		r.Options = json.RawMessage("{}")
	}
	_, err := d.db.ExecContext(ctx, `INSERT INTO runs
		(id, started_at, duration_ms, input, options, dim_0, dim_1, dim_2, axis_0, axis_1, axis_2,
		 solid, filled, unfilled, bricks, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UnixMilli(), r.Duration.Milliseconds(), r.Input, string(r.Options),
		r.Dims[0], r.Dims[1], r.Dims[2], r.Axes[0], r.Axes[1], r.Axes[2], r.Solid, r.Filled, r.Unfilled, r.Bricks, r.Err)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "record run")
	}
	return r.ID, nil
}

const selectRuns = `SELECT id, started_at, duration_ms, input, options, dim_0, dim_1, dim_2,
	axis_0, axis_1, axis_2, solid, filled, unfilled, bricks, error FROM runs`

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (d *DB) List(ctx context.Context, limit int) ([]Run, error) {
	q := selectRuns + ` ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "list runs")
	}
	return out, nil
}

// Get returns the run with the given ID.
func (d *DB) Get(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(d.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if errors.Is(err, errors.ErrCodeNotFound) {
		return Run{}, errors.New(errors.ErrCodeNotFound, "run %s", id)
	}
	return r, err
}

// Prune deletes runs started before cutoff and returns how many went.
func (d *DB) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "prune runs")
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r       Run
		started int64
		dur     int64
		opts    string
	)
	err := s.Scan(&r.ID, &started, &dur, &r.Input, &opts,
		&r.Dims[0], &r.Dims[1], &r.Dims[2], &r.Axes[0], &r.Axes[1], &r.Axes[2], &r.Solid, &r.Filled, &r.Unfilled, &r.Bricks, &r.Err)
	if err == sql.ErrNoRows {
		return Run{}, errors.Wrap(errors.ErrCodeNotFound, err, "run")
	}
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeIO, err, "scan run")
	}
	r.StartedAt = time.UnixMilli(started)
	r.Duration = time.Duration(dur) * time.Millisecond
	r.Options = json.RawMessage(opts)
	return r, nil
}
