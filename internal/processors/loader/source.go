package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/Dost-DS/task1-mongodb-batch-ingest/internal/reading"
)

var (
	ErrEmptySource          = errors.New("source has no header row")
	ErrMissingRequiredField = errors.New("header missing required column")
)

// Source yields one record per cleaned row, keyed by normalized column name.
// Next returns io.EOF when the source is exhausted and ErrBadRow for a row
// that could not be read; a bad row does not end the stream.
type Source interface {
	Next() (map[string]string, error)
}

var ErrBadRow = errors.New("unreadable row")

// CSVSource reads cleaned readings from a CSV stream. Columns are matched by
// name, so the file's column order does not matter. One pass only; a fresh
// read starts from the top.
type CSVSource struct {
	r      *csv.Reader
	header []string
}

// NewCSVSource consumes the header row and verifies the required ts and
// device columns are present. A missing required column is fatal up front: a
// CSV has one header, so no later row could supply it either.
func NewCSVSource(src io.Reader) (*CSVSource, error) {
	const fn = "CSVSource:New"

	r := csv.NewReader(src)
	r.TrimLeadingSpace = true

	raw, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s:%w", fn, ErrEmptySource)
		}
		return nil, fmt.Errorf("%s:%w", fn, err)
	}

	header := make([]string, len(raw))
	for i, name := range raw {
		header[i] = reading.NormalizeColumn(name)
	}
	for _, required := range []string{reading.ColTS, reading.ColDevice} {
		found := false
		for _, name := range header {
			if name == required {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s:%w: %s", fn, ErrMissingRequiredField, required)
		}
	}

	// Rows must match the header width from here on.
	r.FieldsPerRecord = len(header)

	return &CSVSource{r: r, header: header}, nil
}

func (s *CSVSource) Next() (map[string]string, error) {
	row, err := s.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRow, err)
	}

	rec := make(map[string]string, len(s.header))
	for i, name := range s.header {
		rec[name] = row[i]
	}
	return rec, nil
}
