package usecase

import (
	"fmt"
	"time"

	"calassist-service/internal/domain/entity"
	"calassist-service/pkg/nlp"
)

// naturalLayout renders a timestamp the way a person would say it.
const naturalLayout = "Monday, January 2 at 03:04 PM"

// FormatEventNatural renders one ledger record as a human-readable sentence.
// A start time that cannot be parsed still produces a sentence; the record is
// shown with its time marked unknown instead of being dropped from the list.
func FormatEventNatural(b *entity.Booking) string {
	dt, err := nlp.ParseTimestamp(b.StartTime)
	if err != nil {
		return fmt.Sprintf("Your event '%s' (time unknown).", b.Summary)
	}

	if b.Timezone != "" && b.Timezone != nlp.DefaultTimezone {
		if loc, err := time.LoadLocation(b.Timezone); err == nil {
			dt = dt.In(loc)
		}
	}

	return fmt.Sprintf("Your event '%s' is scheduled for %s (%s). Status: %s.",
		b.Summary, dt.Format(naturalLayout), b.Timezone, b.Status)
}
