package repository

import (
	"context"
	"time"

	"calassist-service/internal/domain/entity"
)

// CalendarRepository defines the interface to the external calendar provider.
// Calls may fail or time out; callers must treat errors as non-fatal and keep
// the local ledger authoritative.
type CalendarRepository interface {
	FreeBusy(ctx context.Context, timeMin, timeMax time.Time, timezone string) ([]entity.BusyPeriod, error)
	CreateEvent(ctx context.Context, start, end time.Time, summary, description string, attendees []string, timezone string) (*entity.CalendarEvent, error)
	FindAvailableSlots(ctx context.Context, timeMin, timeMax time.Time, durationMinutes int, timezone string) ([]entity.BusyPeriod, error)
}
