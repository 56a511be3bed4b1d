package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDayLenientForms(t *testing.T) {
	cases := map[string]struct {
		raw    string
		hour   int
		minute int
	}{
		"full":         {raw: "09:30", hour: 9, minute: 30},
		"hour only":    {raw: "9", hour: 9, minute: 0},
		"two digits":   {raw: "14", hour: 14, minute: 0},
		"dangling":     {raw: "9:", hour: 9, minute: 0},
		"padded":       {raw: " 10:05 ", hour: 10, minute: 5},
		"single digit": {raw: "9:5", hour: 9, minute: 5},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTimeOfDay("2025-01-06", tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.hour, got.Hour())
			assert.Equal(t, tc.minute, got.Minute())
			assert.Equal(t, time.UTC, got.Location())
			assert.Equal(t, "2025-01-06", got.Format(DateLayout))
		})
	}
}

func TestParseTimeOfDayRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "25:00", "08:61", "123:00", "08:123", "8:3a", "-1"} {
		_, err := ParseTimeOfDay("2025-01-06", raw)
		assert.Error(t, err, "expected rejection of %q", raw)
	}
}

func TestParseTimeOfDayRejectsBadDate(t *testing.T) {
	_, err := ParseTimeOfDay("not-a-date", "09:00")
	require.Error(t, err)
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange("09:00-12:30", "2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, 9, start.Hour())
	assert.Equal(t, 12, end.Hour())
	assert.Equal(t, 30, end.Minute())
}

func TestParseRangeRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"09:00", "09:00-10:00-11:00", "-", "09:00-", "-10:00", "a-b"} {
		_, _, err := ParseRange(raw, "2025-01-06")
		assert.Error(t, err, "expected rejection of %q", raw)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2025, 1, 6, h, 0, 0, 0, time.UTC)
	}

	assert.True(t, Overlaps(at(9), at(11), at(10), at(12)))
	assert.True(t, Overlaps(at(10), at(12), at(9), at(11)))
	assert.True(t, Overlaps(at(9), at(12), at(10), at(11)))
	assert.False(t, Overlaps(at(9), at(10), at(10), at(11)), "touching intervals do not overlap")
	assert.False(t, Overlaps(at(9), at(10), at(11), at(12)))
}

func TestDatesBetween(t *testing.T) {
	start, err := ParseDate("2025-01-30")
	require.NoError(t, err)
	end, err := ParseDate("2025-02-02")
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"}, DatesBetween(start, end))
	assert.Equal(t, []string{"2025-01-30"}, DatesBetween(start, start))
	assert.Empty(t, DatesBetween(end, start))
}

func TestFormatLocal(t *testing.T) {
	got, err := ParseTimeOfDay("2025-01-06", "09:05")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06T09:05:00", FormatLocal(got))
}
