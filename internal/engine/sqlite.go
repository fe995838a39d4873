package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	"github.com/tingold/geobench/internal/format"
	"github.com/tingold/geobench/internal/frame"
)

const (
	sqliteSchema = `CREATE TABLE points (
		id    INTEGER NOT NULL,
		min_x REAL NOT NULL,
		min_y REAL NOT NULL,
		max_x REAL NOT NULL,
		max_y REAL NOT NULL
	)`
	sqliteInsert = `INSERT INTO points (id, min_x, min_y, max_x, max_y) VALUES (?, ?, ?, ?, ?)`
	// Envelope overlap, boundaries included.
	sqliteCount = `SELECT COUNT(*) FROM points
		WHERE max_x >= ? AND min_x <= ? AND max_y >= ? AND min_y <= ?`
)

// SQLiteEngine loads each dataset into an in-memory SQLite table of
// envelopes and counts the rows overlapping the query box in SQL.
type SQLiteEngine struct {
	db   *sql.DB
	conn *sql.Conn
	log  *slog.Logger
}

// OpenSQLite opens the in-memory database. A single connection is held
// because every ":memory:" connection is a separate database.
func OpenSQLite(ctx context.Context, log *slog.Logger) (*SQLiteEngine, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteEngine{db: db, conn: conn, log: log.With("engine", SQLite)}, nil
}

func (e *SQLiteEngine) Name() string { return "SQLite" }

func (e *SQLiteEngine) Count(ctx context.Context, src format.Source, b orb.Bound) (int64, error) {
	f, err := format.Read(ctx, src)
	if err != nil {
		return 0, err
	}

	if err := e.load(ctx, f); err != nil {
		return 0, fmt.Errorf("sqlite load %s %s: %w", src.Format, src.Path, err)
	}

	var n int64
	err = e.conn.QueryRowContext(ctx, sqliteCount, b.Min[0], b.Max[0], b.Min[1], b.Max[1]).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite count %s %s: %w", src.Format, src.Path, err)
	}

	return n, nil
}

// load replaces the points table with the frame's envelopes.
func (e *SQLiteEngine) load(ctx context.Context, f *frame.GeoFrame) (err error) {
	if _, err := e.conn.ExecContext(ctx, "DROP TABLE IF EXISTS points"); err != nil {
		return err
	}
	if _, err := e.conn.ExecContext(ctx, sqliteSchema); err != nil {
		return err
	}

	tx, err := e.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, g := range f.Geometry {
		if g == nil {
			continue
		}
		bound := g.Bound()
		if _, err = stmt.ExecContext(ctx, f.ID[i], bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	e.log.Debug("loaded table", "rows", f.Len())
	return nil
}

// Close releases the connection and the database.
func (e *SQLiteEngine) Close() error {
	var errs []error
	if e.conn != nil {
		errs = append(errs, e.conn.Close())
		e.conn = nil
	}
	if e.db != nil {
		errs = append(errs, e.db.Close())
		e.db = nil
	}
	return errors.Join(errs...)
}
