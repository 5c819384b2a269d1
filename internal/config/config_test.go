package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/reading"
)

func Test_Load_Defaults(t *testing.T) {
	cfg, err := Load([]string{"--file", "data/cleaned_IoT_data.csv"})
	require.NoError(t, err)

	assert.Equal(t, "data/cleaned_IoT_data.csv", cfg.File)
	assert.Equal(t, 50000, cfg.ChunkSize)
	assert.Equal(t, "iot", cfg.Database)
	assert.Equal(t, "measurements", cfg.Collection)
	assert.Equal(t, reading.EpochAuto, cfg.EpochUnit)
	assert.False(t, cfg.KeepRaw)
	assert.False(t, cfg.EnsureIndexes)
	assert.Equal(t, "logs/metrics.json", cfg.MetricsFile)
}

func Test_Load_FlagsOverride(t *testing.T) {
	cfg, err := Load([]string{
		"--file", "in.csv",
		"--chunk-size", "250",
		"--db", "sensors",
		"--collection", "readings",
		"--epoch-unit", "ms",
		"--keep-raw",
		"--ensure-indexes",
	})
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.ChunkSize)
	assert.Equal(t, "sensors", cfg.Database)
	assert.Equal(t, "readings", cfg.Collection)
	assert.Equal(t, reading.EpochMillis, cfg.EpochUnit)
	assert.True(t, cfg.KeepRaw)
	assert.True(t, cfg.EnsureIndexes)
}

func Test_Load_Env(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://example:27017")
	t.Setenv("MONGODB_DB", "envdb")
	t.Setenv("CHUNK_SIZE", "1234")

	cfg, err := Load([]string{"--file", "in.csv"})
	require.NoError(t, err)

	assert.Equal(t, "mongodb://example:27017", cfg.MongoURI)
	assert.Equal(t, "envdb", cfg.Database)
	assert.Equal(t, 1234, cfg.ChunkSize)
}

func Test_Load_Validation(t *testing.T) {
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrMissingFile)

	_, err = Load([]string{"--file", "in.csv", "--chunk-size", "0"})
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = Load([]string{"--file", "in.csv", "--chunk-size", "-3"})
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = Load([]string{"--file", "in.csv", "--epoch-unit", "minutes"})
	assert.ErrorIs(t, err, ErrInvalidEpochUnit)
}
