package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 2025-06-25 09:00 UTC
var testNow = time.Date(2025, time.June, 25, 9, 0, 0, 0, time.UTC)

func TestSearchDateTimeRelative(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"book a meeting today", time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)},
		{"book a meeting tomorrow", time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)},
		{"book for the day after tomorrow", time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)},
		{"book a meeting tomorrow at 10am", time.Date(2025, 6, 26, 10, 0, 0, 0, time.UTC)},
		{"book a meeting on friday", time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)},
		{"next wednesday works", time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)},
		{"friday at 3:30 pm", time.Date(2025, 6, 27, 15, 30, 0, 0, time.UTC)},
		{"in 2 days", testNow.AddDate(0, 0, 2)},
		{"in 90 minutes", testNow.Add(90 * time.Minute)},
	}

	for _, tt := range tests {
		got, ok := SearchDateTime(tt.text, testNow, time.UTC)
		require.True(t, ok, "expected a date in %q", tt.text)
		assert.Equal(t, tt.want, got, "text: %q", tt.text)
	}
}

func TestSearchDateTimeExplicit(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		// Day-before-month ordering.
		{"book on 28/06 at 2pm", time.Date(2025, 6, 28, 14, 0, 0, 0, time.UTC)},
		{"book on 03/07/2025", time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)},
		{"book on 28 June at 10am", time.Date(2025, 6, 28, 10, 0, 0, 0, time.UTC)},
		{"book on June 28 at 10am", time.Date(2025, 6, 28, 10, 0, 0, 0, time.UTC)},
		{"book on 29 Jun 2025 15:00", time.Date(2025, 6, 29, 15, 0, 0, 0, time.UTC)},
		{"meet 2025-07-01T14:30:00", time.Date(2025, 7, 1, 14, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, ok := SearchDateTime(tt.text, testNow, time.UTC)
		require.True(t, ok, "expected a date in %q", tt.text)
		assert.Equal(t, tt.want, got, "text: %q", tt.text)
	}
}

// A date without a year that would land far in the past belongs to next year.
func TestSearchDateTimeYearRoll(t *testing.T) {
	november := time.Date(2025, time.November, 1, 9, 0, 0, 0, time.UTC)

	got, ok := SearchDateTime("book on 5 January", november, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), got)

	got, ok = SearchDateTime("book on 20 December", november, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), got)
}

// A bare clock time anchors to today, which is what lets two "at 3pm"
// messages on the same day collide in the ledger.
func TestSearchDateTimeBareClock(t *testing.T) {
	got, ok := SearchDateTime("book a meeting at 3pm", testNow, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 25, 15, 0, 0, 0, time.UTC), got)

	got, ok = SearchDateTime("book a meeting at 12am", testNow, time.UTC)
	require.True(t, ok)
	assert.Equal(t, 0, got.Hour())

	got, ok = SearchDateTime("book a meeting at 12pm", testNow, time.UTC)
	require.True(t, ok)
	assert.Equal(t, 12, got.Hour())
}

func TestSearchDateTimeNoDate(t *testing.T) {
	for _, text := range []string{"hello there", "cancel my last event", "not sure yet"} {
		_, ok := SearchDateTime(text, testNow, time.UTC)
		assert.False(t, ok, "unexpected date in %q", text)
	}
}

// An explicit calendar date wins over a leading weekday name, so formatted
// confirmations like "Monday, June 29 at 03:00 PM" re-parse to the original
// date rather than to next Monday.
func TestSearchDateTimeExplicitBeatsWeekday(t *testing.T) {
	got, ok := SearchDateTime("Sunday, June 29 at 03:00 PM", testNow, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 29, 15, 0, 0, 0, time.UTC), got)
}

func TestSearchDateTimeHonorsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	got, ok := SearchDateTime("tomorrow at 10am", testNow, loc)
	require.True(t, ok)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 10, got.Hour())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 6, 29, 15, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2025-06-29T15:00:00Z",
		"2025-06-29T15:00:00",
		"29 Jun 2025 15:00",
		"2025-06-29 15:00:00",
	} {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, "raw: %q", raw)
		assert.True(t, got.Equal(want), "raw: %q got %v", raw, got)
	}

	_, err := ParseTimestamp("garbage")
	assert.Error(t, err)
	_, err = ParseTimestamp("")
	assert.Error(t, err)
}
