package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calassist-service/internal/domain/entity"
	"calassist-service/pkg/nlp"
)

func TestFormatEventNatural(t *testing.T) {
	b := &entity.Booking{
		Summary:   "Team sync",
		StartTime: "2025-06-29T15:00:00Z",
		Timezone:  "UTC",
		Status:    entity.StatusActive,
	}

	assert.Equal(t,
		"Your event 'Team sync' is scheduled for Sunday, June 29 at 03:00 PM (UTC). Status: active.",
		FormatEventNatural(b))
}

func TestFormatEventNaturalConvertsTimezone(t *testing.T) {
	b := &entity.Booking{
		Summary:   "Team sync",
		StartTime: "2025-06-29T15:00:00Z",
		Timezone:  "Asia/Kolkata",
		Status:    entity.StatusActive,
	}

	// 15:00 UTC is 20:30 in Kolkata.
	assert.Equal(t,
		"Your event 'Team sync' is scheduled for Sunday, June 29 at 08:30 PM (Asia/Kolkata). Status: active.",
		FormatEventNatural(b))
}

func TestFormatEventNaturalUnknownTime(t *testing.T) {
	b := &entity.Booking{
		Summary:   "Mystery",
		StartTime: "garbage",
		Status:    entity.StatusActive,
	}

	assert.Equal(t, "Your event 'Mystery' (time unknown).", FormatEventNatural(b))
}

// Re-parsing the date phrase inside a formatted sentence recovers the
// original start time, so formatted replies can serve as conversation
// context later.
func TestFormatEventNaturalRoundTrip(t *testing.T) {
	b := &entity.Booking{
		Summary:   "Team sync",
		StartTime: "2025-06-29T15:00:00Z",
		Timezone:  "UTC",
		Status:    entity.StatusActive,
	}

	formatted := FormatEventNatural(b)
	parsed, ok := nlp.SearchDateTime(formatted, testNow, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 29, 15, 0, 0, 0, time.UTC), parsed)
}

func TestFormatEventNaturalCancelledStatus(t *testing.T) {
	b := &entity.Booking{
		Summary:   "Old sync",
		StartTime: "2025-06-20T10:00:00Z",
		Timezone:  "UTC",
		Status:    entity.StatusCancelled,
	}

	assert.Contains(t, FormatEventNatural(b), "Status: cancelled.")
}
