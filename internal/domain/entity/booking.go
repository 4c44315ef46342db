// internal/domain/entity/booking.go
package entity

import (
	"time"
)

// Booking Status
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Booking represents one record in the booking ledger. Start and end times
// are stored as ISO 8601 strings, matching what the slot extractor produces.
// Records are never physically removed; cancellation flips Status.
type Booking struct {
	ID        uint
	Summary   string
	EventID   string
	StartTime string
	EndTime   string
	Timezone  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the booking still counts against availability.
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}
