package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"calassist-service/internal/domain/entity"
	"calassist-service/internal/domain/repository"
	"calassist-service/internal/infrastructure/oauth"
	"calassist-service/pkg/logger"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarRepository implements the CalendarRepository interface on the
// Google Calendar v3 API.
type GoogleCalendarRepository struct {
	service    *gcal.Service
	calendarID string
	logger     logger.Logger
}

// NewGoogleCalendarRepository creates a new Google Calendar repository
func NewGoogleCalendarRepository(ctx context.Context, auth *oauth.GoogleOAuth, calendarID string, logger logger.Logger) (repository.CalendarRepository, error) {
	service, err := gcal.NewService(ctx, option.WithTokenSource(auth.GetTokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	if calendarID == "" {
		calendarID = "primary"
	}

	return &GoogleCalendarRepository{
		service:    service,
		calendarID: calendarID,
		logger:     logger,
	}, nil
}

// FreeBusy returns the busy intervals between timeMin and timeMax
func (r *GoogleCalendarRepository) FreeBusy(ctx context.Context, timeMin, timeMax time.Time, timezone string) ([]entity.BusyPeriod, error) {
	req := &gcal.FreeBusyRequest{
		TimeMin:  timeMin.Format(time.RFC3339),
		TimeMax:  timeMax.Format(time.RFC3339),
		TimeZone: timezone,
		Items:    []*gcal.FreeBusyRequestItem{{Id: r.calendarID}},
	}

	resp, err := r.service.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	cal, ok := resp.Calendars[r.calendarID]
	if !ok {
		return nil, nil
	}

	periods := make([]entity.BusyPeriod, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			r.logger.Warn("Skipping busy period with bad start", "start", p.Start, "error", err)
			continue
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			r.logger.Warn("Skipping busy period with bad end", "end", p.End, "error", err)
			continue
		}
		periods = append(periods, entity.BusyPeriod{Start: start, End: end})
	}

	return periods, nil
}

// CreateEvent inserts an event into the calendar and returns the provider's
// view of it.
func (r *GoogleCalendarRepository) CreateEvent(ctx context.Context, start, end time.Time, summary, description string, attendees []string, timezone string) (*entity.CalendarEvent, error) {
	event := &gcal.Event{
		Summary:     summary,
		Description: description,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: timezone,
		},
	}
	for _, email := range attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}

	created, err := r.service.Events.Insert(r.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("event insert failed: %w", err)
	}

	r.logger.Info("Calendar event created",
		"eventId", created.Id,
		"summary", summary,
		"start", event.Start.DateTime)

	return &entity.CalendarEvent{
		ID:       created.Id,
		HTMLLink: created.HtmlLink,
		Status:   created.Status,
	}, nil
}

// FindAvailableSlots scans the gaps between busy periods and returns every
// free interval long enough to hold durationMinutes.
func (r *GoogleCalendarRepository) FindAvailableSlots(ctx context.Context, timeMin, timeMax time.Time, durationMinutes int, timezone string) ([]entity.BusyPeriod, error) {
	busy, err := r.FreeBusy(ctx, timeMin, timeMax, timezone)
	if err != nil {
		return nil, err
	}

	return GapScan(busy, timeMin, timeMax, durationMinutes), nil
}

// GapScan is the pure half of FindAvailableSlots: given the busy intervals,
// walk them in order and collect the gaps that fit the duration. The tail gap
// up to timeMax counts too.
func GapScan(busy []entity.BusyPeriod, timeMin, timeMax time.Time, durationMinutes int) []entity.BusyPeriod {
	need := time.Duration(durationMinutes) * time.Minute

	sorted := make([]entity.BusyPeriod, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var slots []entity.BusyPeriod
	current := timeMin
	for _, p := range sorted {
		if p.Start.Sub(current) >= need {
			slots = append(slots, entity.BusyPeriod{Start: current, End: p.Start})
		}
		if p.End.After(current) {
			current = p.End
		}
	}
	if timeMax.Sub(current) >= need {
		slots = append(slots, entity.BusyPeriod{Start: current, End: timeMax})
	}

	return slots
}
