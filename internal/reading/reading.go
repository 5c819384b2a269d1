package reading

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingDevice = errors.New("missing device identifier")
	ErrBadTimestamp  = errors.New("unparseable timestamp")
	ErrBadNumeric    = errors.New("unparseable numeric field")
	ErrBadBool       = errors.New("unparseable boolean field")
)

// EpochUnit selects how the raw ts column is interpreted.
type EpochUnit string

const (
	EpochAuto    EpochUnit = "auto"
	EpochSeconds EpochUnit = "s"
	EpochMillis  EpochUnit = "ms"
)

// msThreshold: epoch values above this are treated as milliseconds in auto mode.
const msThreshold = 1_000_000_000_000

// Reading is the document written to the measurements collection. Optional
// sensor fields are pointers so absent source values are omitted from the
// stored document rather than persisted as zeroes.
type Reading struct {
	ID        string            `bson:"_id"`
	Device    string            `bson:"device"`
	Timestamp time.Time         `bson:"timestamp"`
	Temp      *float64          `bson:"temp,omitempty"`
	Humidity  *float64          `bson:"humidity,omitempty"`
	CO        *float64          `bson:"co,omitempty"`
	Smoke     *float64          `bson:"smoke,omitempty"`
	LPG       *float64          `bson:"lpg,omitempty"`
	Light     *bool             `bson:"light,omitempty"`
	Motion    *bool             `bson:"motion,omitempty"`
	Raw       map[string]string `bson:"raw,omitempty"`
}

// Column names of the cleaned CSV, after header normalization.
const (
	ColTS     = "ts"
	ColDevice = "device"
)

var (
	NumericColumns = []string{"temp", "humidity", "co", "smoke", "lpg"}
	BoolColumns    = []string{"light", "motion"}
)

// DocumentID derives the stable document identifier for a reading. The same
// (device, ts) pair always maps to the same identifier, which is what makes
// re-ingestion idempotent against the unique _id constraint.
func DocumentID(device string, tsSeconds int64) string {
	sum := sha1.Sum([]byte(device + "|" + strconv.FormatInt(tsSeconds, 10)))
	return hex.EncodeToString(sum[:])
}

// NormalizeColumn maps a raw CSV header cell to its canonical column name.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// CoerceBool parses boolean-like strings. Accepts true/t/1/yes/y and
// false/f/0/no/n, case-insensitive.
func CoerceBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, true
	case "false", "f", "0", "no", "n":
		return false, true
	default:
		return false, false
	}
}

// CoerceFloat parses numeric-like strings, preserving full float64 precision.
func CoerceFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseEpoch converts a raw ts value into a UTC timestamp. In auto mode,
// values that look like milliseconds (> 1e12) are read as milliseconds,
// everything else as seconds. Fractional epoch values are truncated the same
// way the identifier derivation truncates them.
func ParseEpoch(s string, unit EpochUnit) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, ErrBadTimestamp
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	}
	u := unit
	if u == EpochAuto {
		u = EpochSeconds
		if f > msThreshold {
			u = EpochMillis
		}
	}
	if u == EpochMillis {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	return time.Unix(int64(f), 0).UTC(), nil
}

// FromRecord builds a typed Reading from one cleaned CSV record, keyed by
// normalized column name. Any present but unparseable field fails the whole
// row; missing or empty optional fields are simply omitted from the document.
func FromRecord(rec map[string]string, unit EpochUnit, keepRaw bool) (Reading, error) {
	device := strings.TrimSpace(rec[ColDevice])
	if device == "" {
		return Reading{}, ErrMissingDevice
	}

	ts, err := ParseEpoch(rec[ColTS], unit)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{
		ID:        DocumentID(device, ts.Unix()),
		Device:    device,
		Timestamp: ts,
	}

	numeric := map[string]**float64{
		"temp":     &r.Temp,
		"humidity": &r.Humidity,
		"co":       &r.CO,
		"smoke":    &r.Smoke,
		"lpg":      &r.LPG,
	}
	for col, target := range numeric {
		v, ok := rec[col]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		f, ok := CoerceFloat(v)
		if !ok {
			return Reading{}, fmt.Errorf("%w: %s=%q", ErrBadNumeric, col, v)
		}
		*target = &f
	}

	boolean := map[string]**bool{
		"light":  &r.Light,
		"motion": &r.Motion,
	}
	for col, target := range boolean {
		v, ok := rec[col]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, ok := CoerceBool(v)
		if !ok {
			return Reading{}, fmt.Errorf("%w: %s=%q", ErrBadBool, col, v)
		}
		*target = &b
	}

	if keepRaw {
		mapped := map[string]bool{ColTS: true, ColDevice: true}
		for _, c := range NumericColumns {
			mapped[c] = true
		}
		for _, c := range BoolColumns {
			mapped[c] = true
		}
		for col, v := range rec {
			if mapped[col] || strings.TrimSpace(v) == "" {
				continue
			}
			if r.Raw == nil {
				r.Raw = make(map[string]string)
			}
			r.Raw[col] = v
		}
	}

	return r, nil
}
