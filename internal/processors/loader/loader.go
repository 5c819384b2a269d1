package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/db"
	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/metrics"
	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/reading"
)

var (
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
	ErrChunkInsert      = errors.New("chunk insert failed")
)

// store is the slice of the db layer the loader needs; small on purpose so
// tests can substitute a fake.
type store interface {
	InsertChunk(ctx context.Context, docs []reading.Reading) (db.ChunkResult, error)
}

type Config struct {
	ChunkSize int
	EpochUnit reading.EpochUnit
	KeepRaw   bool
	Store     store
}

type Loader struct {
	chunkSize int
	unit      reading.EpochUnit
	keepRaw   bool
	store     store
}

func New(cfg Config) (*Loader, error) {
	if cfg.ChunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	unit := cfg.EpochUnit
	if unit == "" {
		unit = reading.EpochAuto
	}
	return &Loader{
		chunkSize: cfg.ChunkSize,
		unit:      unit,
		keepRaw:   cfg.KeepRaw,
		store:     cfg.Store,
	}, nil
}

// Run drains the source sequentially, submitting chunks of at most ChunkSize
// rows as unordered bulk inserts. Rows that fail coercion are dropped and
// counted; duplicate-key rejections are counted as duplicates and never abort
// anything. Any other store failure aborts the run with the partial summary.
// Documents inserted by earlier chunks stay persisted regardless.
func (l *Loader) Run(ctx context.Context, src Source) (metrics.Summary, error) {
	const fn = "Loader:Run"

	start := time.Now()
	summary := metrics.Summary{RunID: uuid.NewString()}
	slog.InfoContext(ctx, "Starting batch load", "run_id", summary.RunID, "chunk_size", l.chunkSize)

	chunk := make([]reading.Reading, 0, l.chunkSize)
	chunkIdx := 0

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		chunkIdx++
		result, err := l.store.InsertChunk(ctx, chunk)
		if err != nil {
			return fmt.Errorf("%s:%w:%w", fn, ErrChunkInsert, err)
		}
		summary.Inserted += result.Inserted
		summary.Duplicates += result.Duplicates
		slog.InfoContext(ctx, "Chunk loaded",
			"chunk", chunkIdx,
			"submitted", len(chunk),
			"inserted", result.Inserted,
			"duplicates", result.Duplicates,
		)
		chunk = chunk[:0]
		return nil
	}

	finalize := func() metrics.Summary {
		summary.DurationSec = time.Since(start).Seconds()
		summary.Timestamp = time.Now().UTC().Format("2006-01-02 15:04:05")
		return summary
	}

	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.RowsSeen++
			summary.Dropped++
			slog.Debug("Dropping unreadable row", "error", err)
			continue
		}
		summary.RowsSeen++

		doc, err := reading.FromRecord(rec, l.unit, l.keepRaw)
		if err != nil {
			summary.Dropped++
			slog.Debug("Dropping row failing coercion", "error", err)
			continue
		}

		chunk = append(chunk, doc)
		if len(chunk) == l.chunkSize {
			if err := flush(); err != nil {
				return finalize(), err
			}
		}
	}
	if err := flush(); err != nil {
		return finalize(), err
	}

	summary = finalize()
	slog.InfoContext(ctx, "Batch load complete",
		"run_id", summary.RunID,
		"rows_seen", summary.RowsSeen,
		"inserted", summary.Inserted,
		"duplicates", summary.Duplicates,
		"dropped", summary.Dropped,
		"duration_sec", summary.DurationSec,
	)
	return summary, nil
}
