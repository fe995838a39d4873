// Package engine implements the access paths a benchmark leg can take to
// load a persisted dataset and count the records inside a bounding box.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/format"
)

// Common errors returned by this package.
var (
	ErrUnknownEngine     = errors.New("engine: unknown engine")
	ErrUnsupportedFormat = errors.New("engine: unsupported format")
	ErrExtension         = errors.New("engine: extension unavailable")
)

// Names of the built-in engines.
const (
	Frame  = "frame"
	DuckDB = "duckdb"
	SQLite = "sqlite"
)

// Engine loads a dataset through one access path and applies the
// intersects predicate. Engines hold their session until Close.
type Engine interface {
	// Name is the display name used in reports.
	Name() string
	// Count returns how many records of src intersect b.
	Count(ctx context.Context, src format.Source, b orb.Bound) (int64, error)
	Close() error
}

// Options configures engine sessions.
type Options struct {
	// InstallExtensions runs INSTALL before LOAD for DuckDB extensions.
	// Hosts without network access can disable it when the extensions
	// are already present.
	InstallExtensions bool
	// Extensions are loaded into every DuckDB session.
	Extensions []string
	Logger     *slog.Logger
}

// DefaultOptions returns options that install and load DuckDB's spatial
// extension.
func DefaultOptions() Options {
	return Options{
		InstallExtensions: true,
		Extensions:        []string{"spatial"},
	}
}

// Open starts an engine session by name.
func Open(ctx context.Context, name string, opts Options) (Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case Frame:
		return NewFrameEngine(opts.Logger), nil
	case DuckDB:
		e, err := OpenDuckDB(ctx, opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	case SQLite:
		e, err := OpenSQLite(ctx, opts.Logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
