package reading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DocumentID(t *testing.T) {
	id := DocumentID("00:0f:00:70:91:0a", 1594512094)

	// SHA-1 hex is always 40 characters, regardless of input.
	assert.Len(t, id, 40)

	// Stable across calls and independent of anything but (device, ts).
	assert.Equal(t, id, DocumentID("00:0f:00:70:91:0a", 1594512094))
	assert.NotEqual(t, id, DocumentID("00:0f:00:70:91:0a", 1594512095))
	assert.NotEqual(t, id, DocumentID("b8:27:eb:bf:9d:51", 1594512094))
}

func Test_CoerceBool(t *testing.T) {
	cases := []struct {
		input    string
		expected bool
		ok       bool
	}{
		{"TRUE", true, true},
		{"true", true, true},
		{"True", true, true},
		{"t", true, true},
		{"1", true, true},
		{"yes", true, true},
		{"y", true, true},
		{"FALSE", false, true},
		{"false", false, true},
		{"f", false, true},
		{"0", false, true},
		{"no", false, true},
		{"n", false, true},
		{" true ", true, true},
		{"maybe", false, false},
		{"2", false, false},
		{"", false, false},
	}
	for _, tt := range cases {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := CoerceBool(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func Test_CoerceFloat(t *testing.T) {
	got, ok := CoerceFloat("0.0049559386483912")
	require.True(t, ok)
	assert.Equal(t, 0.0049559386483912, got)

	got, ok = CoerceFloat(" 22.7 ")
	require.True(t, ok)
	assert.Equal(t, 22.7, got)

	_, ok = CoerceFloat("warm")
	assert.False(t, ok)

	_, ok = CoerceFloat("")
	assert.False(t, ok)
}

func Test_ParseEpoch(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		unit     EpochUnit
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "auto seconds",
			input:    "1594512094",
			unit:     EpochAuto,
			expected: time.Unix(1594512094, 0).UTC(),
		},
		{
			name:     "auto milliseconds",
			input:    "1594512094123",
			unit:     EpochAuto,
			expected: time.UnixMilli(1594512094123).UTC(),
		},
		{
			name:     "explicit milliseconds",
			input:    "1594512094",
			unit:     EpochMillis,
			expected: time.UnixMilli(1594512094).UTC(),
		},
		{
			name:     "fractional seconds truncated",
			input:    "1594512094.385",
			unit:     EpochSeconds,
			expected: time.Unix(1594512094, 0).UTC(),
		},
		{
			name:    "empty",
			input:   "",
			unit:    EpochAuto,
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "soon",
			unit:    EpochAuto,
			wantErr: true,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEpoch(tt.input, tt.unit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadTimestamp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func Test_FromRecord(t *testing.T) {
	base := func() map[string]string {
		return map[string]string{
			"ts":       "1594512094",
			"device":   "b8:27:eb:bf:9d:51",
			"co":       "0.0049559386483912",
			"humidity": "51.0",
			"light":    "false",
			"lpg":      "0.0076508222705571",
			"motion":   "FALSE",
			"smoke":    "0.0204112701224129",
			"temp":     "22.7",
		}
	}

	t.Run("full row", func(t *testing.T) {
		r, err := FromRecord(base(), EpochAuto, false)
		require.NoError(t, err)

		assert.Equal(t, DocumentID("b8:27:eb:bf:9d:51", 1594512094), r.ID)
		assert.Equal(t, "b8:27:eb:bf:9d:51", r.Device)
		assert.Equal(t, time.Unix(1594512094, 0).UTC(), r.Timestamp)
		require.NotNil(t, r.Temp)
		assert.Equal(t, 22.7, *r.Temp)
		require.NotNil(t, r.Light)
		assert.False(t, *r.Light)
		require.NotNil(t, r.Motion)
		assert.False(t, *r.Motion)
		assert.Nil(t, r.Raw)
	})

	t.Run("missing device", func(t *testing.T) {
		rec := base()
		rec["device"] = " "
		_, err := FromRecord(rec, EpochAuto, false)
		assert.ErrorIs(t, err, ErrMissingDevice)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		rec := base()
		rec["ts"] = "yesterday"
		_, err := FromRecord(rec, EpochAuto, false)
		assert.ErrorIs(t, err, ErrBadTimestamp)
	})

	t.Run("non-numeric temp fails the row", func(t *testing.T) {
		rec := base()
		rec["temp"] = "warm"
		_, err := FromRecord(rec, EpochAuto, false)
		assert.ErrorIs(t, err, ErrBadNumeric)
	})

	t.Run("bad boolean fails the row", func(t *testing.T) {
		rec := base()
		rec["motion"] = "sometimes"
		_, err := FromRecord(rec, EpochAuto, false)
		assert.ErrorIs(t, err, ErrBadBool)
	})

	t.Run("empty optional fields are omitted", func(t *testing.T) {
		rec := base()
		rec["humidity"] = ""
		delete(rec, "lpg")
		r, err := FromRecord(rec, EpochAuto, false)
		require.NoError(t, err)
		assert.Nil(t, r.Humidity)
		assert.Nil(t, r.LPG)
		assert.NotNil(t, r.Temp)
	})

	t.Run("keep raw captures unmapped columns", func(t *testing.T) {
		rec := base()
		rec["firmware"] = "v1.2.3"
		rec["site"] = ""

		r, err := FromRecord(rec, EpochAuto, true)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"firmware": "v1.2.3"}, r.Raw)

		r, err = FromRecord(rec, EpochAuto, false)
		require.NoError(t, err)
		assert.Nil(t, r.Raw)
	})
}
