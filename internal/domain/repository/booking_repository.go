package repository

import (
	"context"

	"calassist-service/internal/domain/entity"
)

// BookingRepository defines the interface for the booking ledger.
// List returns records ordered by start_time ascending. Cancel and Update
// only touch active records; both are no-ops otherwise.
type BookingRepository interface {
	Save(ctx context.Context, booking *entity.Booking) error
	List(ctx context.Context, status string) ([]*entity.Booking, error)
	GetByID(ctx context.Context, id uint) (*entity.Booking, error)
	GetLastActive(ctx context.Context) (*entity.Booking, error)
	Cancel(ctx context.Context, id uint) error
	Update(ctx context.Context, id uint, summary, startTime, endTime, timezone string) error
}
