package usecase

import (
	"context"
	"strings"
	"time"

	"calassist-service/internal/domain/entity"
	"calassist-service/internal/domain/repository"
	"calassist-service/pkg/logger"
	"calassist-service/pkg/nlp"
)

// BookingResolver maps a reference token from the slot extractor to a record
// in the booking ledger.
type BookingResolver struct {
	bookings repository.BookingRepository
	logger   logger.Logger
}

// NewBookingResolver creates a new booking resolver
func NewBookingResolver(bookings repository.BookingRepository, logger logger.Logger) *BookingResolver {
	return &BookingResolver{
		bookings: bookings,
		logger:   logger,
	}
}

// Resolve finds the active booking a reference points at. The candidate list
// is ordered by start time, so "next" is the earliest upcoming booking and
// "last" the latest. A nil booking with a nil error means nothing matched;
// callers report that to the user rather than treating it as a failure.
func (r *BookingResolver) Resolve(ctx context.Context, reference string, contextEvent *nlp.ContextEvent) (*entity.Booking, error) {
	if reference == "" {
		return nil, nil
	}

	candidates, err := r.bookings.List(ctx, entity.StatusActive)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	switch reference {
	case "last":
		return candidates[len(candidates)-1], nil
	case "next":
		return candidates[0], nil
	case nlp.ReferenceContext:
		if contextEvent != nil {
			if b := r.matchContext(candidates, contextEvent); b != nil {
				return b, nil
			}
		}
	}

	// Generic scan: the reference may be a time fragment that appears in the
	// stored start time, or a piece of the summary.
	for _, b := range candidates {
		if strings.Contains(b.StartTime, reference) ||
			strings.Contains(strings.ToLower(b.Summary), strings.ToLower(reference)) {
			r.logger.Debug("Reference matched by scan", "reference", reference, "bookingId", b.ID)
			return b, nil
		}
	}

	return nil, nil
}

func (r *BookingResolver) matchContext(candidates []*entity.Booking, contextEvent *nlp.ContextEvent) *entity.Booking {
	for _, b := range candidates {
		if contextEvent.Summary != "" &&
			strings.Contains(strings.ToLower(b.Summary), strings.ToLower(contextEvent.Summary)) {
			return b
		}
		if contextEvent.Datetime != nil &&
			strings.Contains(b.StartTime, contextEvent.Datetime.Format(time.RFC3339)) {
			return b
		}
	}
	return nil
}
