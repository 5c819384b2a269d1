package cleaner

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/reading"
)

var (
	ErrEmptyInput   = errors.New("input has no header row")
	ErrNoColumns    = errors.New("no usable columns in header")
	ErrReadFailed   = errors.New("error reading raw csv")
	ErrWriteFailed  = errors.New("error writing cleaned csv")
	ErrOpenInput    = errors.New("error opening input file")
	ErrCreateOutput = errors.New("error creating output file")
)

// Stats reports what one cleaning pass did with its input.
type Stats struct {
	RowsIn  int64
	RowsOut int64
	Dropped int64
}

// Clean reads a raw sensor CSV from src and writes a cleaned CSV to dst:
// headers are normalized to lowercase underscore names, placeholder "unnamed"
// columns are removed, and blank or misaligned rows are dropped. Cell values
// pass through untouched; type coercion happens at load time. A bad row never
// aborts the pass.
func Clean(src io.Reader, dst io.Writer) (Stats, error) {
	const fn = "Cleaner:Clean"
	var stats Stats

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return stats, fmt.Errorf("%s:%w", fn, ErrEmptyInput)
		}
		return stats, fmt.Errorf("%s:%w:%w", fn, ErrReadFailed, err)
	}

	// Indexes of columns worth keeping, in original order.
	var keep []int
	var outHeader []string
	for i, name := range header {
		norm := reading.NormalizeColumn(name)
		if norm == "" || strings.HasPrefix(norm, "unnamed") {
			continue
		}
		keep = append(keep, i)
		outHeader = append(outHeader, norm)
	}
	if len(keep) == 0 {
		return stats, fmt.Errorf("%s:%w", fn, ErrNoColumns)
	}

	w := csv.NewWriter(dst)
	if err := w.Write(outHeader); err != nil {
		return stats, fmt.Errorf("%s:%w:%w", fn, ErrWriteFailed, err)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line; count it and keep going.
			stats.RowsIn++
			stats.Dropped++
			slog.Debug("Dropping malformed row", "error", err)
			continue
		}
		stats.RowsIn++

		if len(row) < len(header) {
			stats.Dropped++
			slog.Debug("Dropping short row", "fields", len(row), "expected", len(header))
			continue
		}

		out := make([]string, len(keep))
		empty := true
		for j, idx := range keep {
			out[j] = row[idx]
			if strings.TrimSpace(row[idx]) != "" {
				empty = false
			}
		}
		if empty {
			stats.Dropped++
			continue
		}

		if err := w.Write(out); err != nil {
			return stats, fmt.Errorf("%s:%w:%w", fn, ErrWriteFailed, err)
		}
		stats.RowsOut++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return stats, fmt.Errorf("%s:%w:%w", fn, ErrWriteFailed, err)
	}
	return stats, nil
}

// CleanFile runs Clean from one file path to another.
func CleanFile(inPath, outPath string) (Stats, error) {
	const fn = "Cleaner:CleanFile"

	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%s:%w:%w", fn, ErrOpenInput, err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%s:%w:%w", fn, ErrCreateOutput, err)
	}

	stats, err := Clean(in, out)
	if err != nil {
		out.Close()
		return stats, err
	}
	if err := out.Close(); err != nil {
		return stats, fmt.Errorf("%s:%w:%w", fn, ErrWriteFailed, err)
	}
	return stats, nil
}
