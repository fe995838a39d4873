package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/format"
)

// DuckDBEngine runs the intersects query inside an in-memory DuckDB
// database with the spatial extension loaded. Files are scanned in place.
type DuckDBEngine struct {
	db   *sql.DB
	conn *sql.Conn
	log  *slog.Logger
}

// OpenDuckDB opens an in-memory database and a single connection, and loads
// the configured extensions into it. A missing extension is fatal.
func OpenDuckDB(ctx context.Context, opts Options) (*DuckDBEngine, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("engine", DuckDB)

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	e := &DuckDBEngine{db: db, conn: conn, log: log}

	for _, ext := range opts.Extensions {
		if err := e.loadExtension(ctx, ext, opts.InstallExtensions); err != nil {
			_ = e.Close()
			return nil, err
		}
	}

	return e, nil
}

func (e *DuckDBEngine) loadExtension(ctx context.Context, name string, install bool) error {
	if install {
		if _, err := e.conn.ExecContext(ctx, "INSTALL "+name); err != nil {
			return fmt.Errorf("%w: install %s: %v", ErrExtension, name, err)
		}
	}
	if _, err := e.conn.ExecContext(ctx, "LOAD "+name); err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrExtension, name, err)
	}

	e.log.Debug("extension loaded", "extension", name, "installed", install)
	return nil
}

func (e *DuckDBEngine) Name() string { return "DuckDB" }

func (e *DuckDBEngine) Count(ctx context.Context, src format.Source, b orb.Bound) (int64, error) {
	query, err := countQuery(src)
	if err != nil {
		return 0, err
	}

	var n int64
	err = e.conn.QueryRowContext(ctx, query, b.Min[0], b.Min[1], b.Max[0], b.Max[1]).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("duckdb count %s %s: %w", src.Format, src.Path, err)
	}

	return n, nil
}

// countQuery builds the count query for a source. GeoParquet is scanned by
// read_parquet, which exposes the primary column as GEOMETRY once the spatial
// extension is loaded; the other formats go through GDAL via ST_Read.
func countQuery(src format.Source) (string, error) {
	const where = " WHERE ST_Intersects(%s, ST_MakeEnvelope(?, ?, ?, ?))"

	switch src.Format {
	case format.GeoParquet:
		return "SELECT COUNT(*) FROM read_parquet(" + quoteLiteral(src.Path) + ")" +
			fmt.Sprintf(where, "geometry"), nil
	case format.Shapefile, format.FlatGeobuf:
		return "SELECT COUNT(*) FROM ST_Read(" + quoteLiteral(src.Path) + ")" +
			fmt.Sprintf(where, "geom"), nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, src.Format)
	}
}

// Close releases the connection and the database.
func (e *DuckDBEngine) Close() error {
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
