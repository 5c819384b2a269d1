package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/processors/cleaner"
)

// Standalone cleaning pass: raw sensor CSV in, cleaned CSV out. The ingest
// CLI re-applies type coercion itself, so this step stays storage-free.
func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	_ = godotenv.Load()

	in := pflag.String("in", envOr("RAW_FILE", "data/IoT_data.csv"), "Path to raw CSV file")
	out := pflag.String("out", envOr("CLEAN_FILE", "data/cleaned_IoT_data.csv"), "Path for cleaned CSV file")
	pflag.Parse()

	stats, err := cleaner.CleanFile(*in, *out)
	if err != nil {
		slog.Error("Cleaning failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Cleaned CSV written",
		"in", *in,
		"out", *out,
		"rows_in", stats.RowsIn,
		"rows_out", stats.RowsOut,
		"dropped", stats.Dropped,
	)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
