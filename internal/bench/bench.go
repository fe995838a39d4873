// Package bench drives a benchmark run: it generates the point dataset,
// persists it in every configured format, then times the bounding-box query
// for each (engine, format) leg.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/config"
	"github.com/tingold/geobench/internal/dataset"
	"github.com/tingold/geobench/internal/engine"
	"github.com/tingold/geobench/internal/format"
)

// ErrCountMismatch is returned when legs disagree on the number of matches.
var ErrCountMismatch = errors.New("bench: legs returned different counts")

// Sample is the single timing of one leg.
type Sample struct {
	Format  format.Format
	Engine  string
	Elapsed time.Duration
	Count   int64
}

// OpenFunc starts an engine session by name.
type OpenFunc func(ctx context.Context, name string, opts engine.Options) (engine.Engine, error)

// Runner runs the two phases of a benchmark.
type Runner struct {
	cfg     *config.Config
	formats []format.Format
	out     io.Writer
	log     *slog.Logger
	open    OpenFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithEngineOpener replaces how engines are opened.
func WithEngineOpener(open OpenFunc) Option {
	return func(r *Runner) { r.open = open }
}

// NewRunner validates cfg and returns a runner printing its report to out.
func NewRunner(cfg *config.Config, out io.Writer, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	formats, err := format.ParseAll(cfg.Formats)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:     cfg,
		formats: formats,
		out:     out,
		log:     slog.Default(),
		open:    engine.Open,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Run creates the datasets and then benchmarks the queries. Benchmarking is
// never attempted when dataset creation fails.
func (r *Runner) Run(ctx context.Context) ([]Sample, error) {
	sources, err := r.CreateDatasets(ctx)
	if err != nil {
		return nil, err
	}
	return r.BenchmarkQueries(ctx, sources)
}

// CreateDatasets generates the points and writes them once per format.
func (r *Runner) CreateDatasets(ctx context.Context) ([]format.Source, error) {
	n := r.cfg.NumPoints
	fmt.Fprintf(r.out, "--- Creating a dataset with %d points ---\n", n)

	f, err := dataset.Generate(n, dataset.NewRand(r.cfg.Seed))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	sources := make([]format.Source, 0, len(r.formats))
	for _, ft := range r.formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src := format.NewSource(ft, r.cfg.DataDir, r.cfg.BaseName)
		fmt.Fprintf(r.out, "Saving to %s...\n", ft)

		start := time.Now()
		if err := format.Write(src, f); err != nil {
			return nil, err
		}

		size, err := src.Size()
		if err != nil {
			return nil, err
		}

		r.log.Debug("dataset written", "format", ft, "path", src.Path, "bytes", size, "elapsed", time.Since(start))
		fmt.Fprintf(r.out, "  %s (%s)\n", src.Path, humanize.Bytes(uint64(size)))

		sources = append(sources, src)
	}

	fmt.Fprintln(r.out, "--- Datasets created ---")
	return sources, nil
}

// BenchmarkQueries runs every (engine, format) leg once. Each engine is
// opened before its legs and closed after them; opening is not timed.
func (r *Runner) BenchmarkQueries(ctx context.Context, sources []format.Source) ([]Sample, error) {
	fmt.Fprintln(r.out, "\n--- Benchmarking Queries ---")

	region := r.cfg.Bound()
	opts := engine.Options{
		InstallExtensions: r.cfg.DuckDB.InstallExtensions,
		Extensions:        r.cfg.DuckDB.Extensions,
		Logger:            r.log,
	}

	samples := make([]Sample, 0, len(r.cfg.Engines)*len(sources))
	for _, name := range r.cfg.Engines {
		legs, err := r.runEngine(ctx, name, opts, sources, region)
		if err != nil {
			return samples, err
		}
		samples = append(samples, legs...)
	}

	if r.cfg.CrossCheck {
		if err := CrossCheck(samples); err != nil {
			return samples, err
		}
		if len(samples) > 0 {
			fmt.Fprintf(r.out, "\nAll %d legs agree: %d points.\n", len(samples), samples[0].Count)
		}
	}

	return samples, nil
}

func (r *Runner) runEngine(ctx context.Context, name string, opts engine.Options, sources []format.Source, region orb.Bound) ([]Sample, error) {
	e, err := r.open(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := e.Close(); err != nil {
			r.log.Warn("engine close failed", "engine", e.Name(), "err", err)
		}
	}()

	fmt.Fprintf(r.out, "\n-- %s --\n", e.Name())

	samples := make([]Sample, 0, len(sources))
	for _, src := range sources {
		s, err := measure(ctx, func(ctx context.Context) (int64, error) {
			return e.Count(ctx, src, region)
		})
		if err != nil {
			return samples, err
		}

		s.Format = src.Format
		s.Engine = e.Name()
		samples = append(samples, s)

		r.log.Debug("leg finished", "engine", s.Engine, "format", s.Format, "count", s.Count, "elapsed", s.Elapsed)
		fmt.Fprintln(r.out, s)
	}

	return samples, nil
}

// measure times one load-and-filter step.
func measure(ctx context.Context, fn func(context.Context) (int64, error)) (Sample, error) {
	start := time.Now()
	n, err := fn(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return Sample{}, err
	}
	return Sample{Elapsed: elapsed, Count: n}, nil
}

func (s Sample) String() string {
	return fmt.Sprintf("%s with %s: %.4f seconds, found %d points.",
		s.Format, s.Engine, s.Elapsed.Seconds(), s.Count)
}

// CrossCheck returns ErrCountMismatch unless all samples share one count.
func CrossCheck(samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}

	want := samples[0].Count
	for _, s := range samples[1:] {
		if s.Count == want {
			continue
		}

		parts := make([]string, 0, len(samples))
		for _, s := range samples {
			parts = append(parts, fmt.Sprintf("%s/%s=%d", s.Engine, s.Format, s.Count))
		}
		return fmt.Errorf("%w: %s", ErrCountMismatch, strings.Join(parts, ", "))
	}
	return nil
}
