package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/tingold/geobench/internal/bench"
	"github.com/tingold/geobench/internal/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	level, err := cfg.Level()
	if err != nil {
		slog.Error("Invalid log level", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner, err := bench.NewRunner(cfg, os.Stdout, bench.WithLogger(logger))
	if err != nil {
		slog.Error("Invalid config", "err", err)
		os.Exit(1)
	}

	if _, err := runner.Run(ctx); err != nil {
		stop()
		slog.Error("Benchmark failed", "err", err)
		os.Exit(1)
	}
}
