package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/config"
	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/db"
	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/metrics"
	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/processors/loader"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.ErrorContext(ctx, "Ingestion failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Starting IoT batch ingestion...",
		"file", cfg.File,
		"db", cfg.Database,
		"collection", cfg.Collection,
	)

	// Fail before touching the store if the input is unreadable.
	f, err := os.Open(cfg.File)
	if err != nil {
		return err
	}
	defer f.Close()

	src, err := loader.NewCSVSource(f)
	if err != nil {
		return err
	}

	store, err := db.Init(ctx, db.Config{
		URI:        cfg.MongoURI,
		Database:   cfg.Database,
		Collection: cfg.Collection,
	})
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	if cfg.EnsureIndexes {
		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	l, err := loader.New(loader.Config{
		ChunkSize: cfg.ChunkSize,
		EpochUnit: cfg.EpochUnit,
		KeepRaw:   cfg.KeepRaw,
		Store:     store,
	})
	if err != nil {
		return err
	}

	summary, runErr := l.Run(ctx, src)

	// The summary is the authoritative record of the run; persist it for
	// failed runs too so partial ingestion stays auditable.
	sink := metrics.FileSink{Path: cfg.MetricsFile}
	if err := sink.Write(summary); err != nil {
		slog.ErrorContext(ctx, "Error writing metrics summary", "error", err)
		if runErr == nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	slog.InfoContext(ctx, "Ingestion process completed successfully", "metrics_file", cfg.MetricsFile)
	return nil
}
