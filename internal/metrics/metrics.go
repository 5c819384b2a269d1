package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrWriteFailed = errors.New("error writing metrics summary")

// Summary is the authoritative machine-readable record of one ingestion run.
// Inserted + Duplicates + Dropped always reconciles to RowsSeen.
type Summary struct {
	RunID       string  `json:"run_id"`
	RowsSeen    int64   `json:"rows_seen"`
	Inserted    int64   `json:"inserted"`
	Duplicates  int64   `json:"duplicates"`
	Dropped     int64   `json:"dropped"`
	DurationSec float64 `json:"duration_sec"`
	Timestamp   string  `json:"timestamp"`
}

// Sink persists a run summary.
type Sink interface {
	Write(s Summary) error
}

// FileSink writes the summary as indented JSON to a fixed path, creating
// parent directories as needed.
type FileSink struct {
	Path string
}

func (f FileSink) Write(s Summary) error {
	const fn = "FileSink:Write"

	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrWriteFailed, err)
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%s:%w:%w", fn, ErrWriteFailed, err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrWriteFailed, err)
	}
	return nil
}
