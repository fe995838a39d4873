package engine

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/tingold/geobench/internal/format"
)

// FrameEngine reads the whole file into an in-memory frame and filters it.
type FrameEngine struct {
	log *slog.Logger
}

// NewFrameEngine returns the in-memory access path. It holds no session.
func NewFrameEngine(log *slog.Logger) *FrameEngine {
	if log == nil {
		log = slog.Default()
	}
	return &FrameEngine{log: log.With("engine", Frame)}
}

func (e *FrameEngine) Name() string { return "Frame" }

func (e *FrameEngine) Count(ctx context.Context, src format.Source, b orb.Bound) (int64, error) {
	f, err := format.Read(ctx, src)
	if err != nil {
		return 0, err
	}

	e.log.Debug("loaded frame", "format", src.Format, "rows", f.Len())

	return int64(f.Filter(b).Len()), nil
}

func (e *FrameEngine) Close() error { return nil }
