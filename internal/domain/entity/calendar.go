package entity

import "time"

// BusyPeriod is one busy interval reported by the calendar provider.
type BusyPeriod struct {
	Start time.Time
	End   time.Time
}

// CalendarEvent is the provider's view of a created event.
type CalendarEvent struct {
	ID       string
	HTMLLink string
	Status   string
}
