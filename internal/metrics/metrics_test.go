package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FileSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "metrics.json")
	summary := Summary{
		RunID:       "run-1",
		RowsSeen:    100,
		Inserted:    90,
		Duplicates:  8,
		Dropped:     2,
		DurationSec: 1.25,
		Timestamp:   "2026-08-30 12:00:00",
	}

	require.NoError(t, FileSink{Path: path}.Write(summary))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Summary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, summary, got)

	// Field names are the stable contract consumed by downstream tooling.
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"rows_seen", "inserted", "duplicates", "dropped", "duration_sec", "timestamp", "run_id"} {
		assert.Contains(t, fields, key)
	}
}
