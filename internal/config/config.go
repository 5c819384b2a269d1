package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/reading"
)

var (
	ErrMissingFile      = errors.New("--file is required")
	ErrInvalidChunkSize = errors.New("--chunk-size must be a positive integer")
	ErrInvalidEpochUnit = errors.New("--epoch-unit must be one of s, ms, auto")
)

type Config struct {
	File          string
	ChunkSize     int
	MongoURI      string
	Database      string
	Collection    string
	EpochUnit     reading.EpochUnit
	KeepRaw       bool
	MetricsFile   string
	EnsureIndexes bool
}

// Load parses CLI flags and environment for the ingest run. Flags win over
// environment variables, which win over defaults. A .env file in the working
// directory is honored when present.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("ingest", pflag.ContinueOnError)
	fs.String("file", "", "Path to cleaned CSV file (required)")
	fs.Int("chunk-size", 50000, "Rows per bulk insert")
	fs.String("mongodb-uri", "mongodb://localhost:27017/?authSource=admin", "MongoDB connection URI")
	fs.String("db", "iot", "Target database name")
	fs.String("collection", "measurements", "Target collection name")
	fs.String("epoch-unit", "auto", "Unit of the ts column: s, ms or auto")
	fs.Bool("keep-raw", false, "Store unmapped columns under a raw subdocument")
	fs.String("metrics-file", "logs/metrics.json", "Path for the run metrics summary")
	fs.Bool("ensure-indexes", false, "Create collection indexes before loading")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	for key, env := range map[string]string{
		"file":         "CSV_FILE",
		"chunk-size":   "CHUNK_SIZE",
		"mongodb-uri":  "MONGODB_URI",
		"db":           "MONGODB_DB",
		"collection":   "MONGODB_COLLECTION",
		"epoch-unit":   "EPOCH_UNIT",
		"metrics-file": "METRICS_FILE",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		File:          v.GetString("file"),
		ChunkSize:     v.GetInt("chunk-size"),
		MongoURI:      v.GetString("mongodb-uri"),
		Database:      v.GetString("db"),
		Collection:    v.GetString("collection"),
		EpochUnit:     reading.EpochUnit(v.GetString("epoch-unit")),
		KeepRaw:       v.GetBool("keep-raw"),
		MetricsFile:   v.GetString("metrics-file"),
		EnsureIndexes: v.GetBool("ensure-indexes"),
	}

	if cfg.File == "" {
		return nil, ErrMissingFile
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, cfg.ChunkSize)
	}
	switch cfg.EpochUnit {
	case reading.EpochSeconds, reading.EpochMillis, reading.EpochAuto:
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidEpochUnit, cfg.EpochUnit)
	}

	return cfg, nil
}
