package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"calassist-service/internal/domain/entity"
	"calassist-service/internal/domain/repository"
	"calassist-service/pkg/logger"
	"calassist-service/pkg/metrics"
	"calassist-service/pkg/nlp"
)

const helpText = "You can ask me to book, cancel, edit, or list your events. " +
	"Examples:\n" +
	"- Book an event tomorrow at 10am for 1 hour with Alice\n" +
	"- Cancel my last event\n" +
	"- Edit my next event to Friday at 3pm\n" +
	"- What are my events this week?\n" +
	"- You can also use natural language like 'Add a call after lunch next Monday.'"

// Result is the outcome of handling one chat message.
type Result struct {
	Intent   nlp.Intent
	Slots    nlp.SlotRecord
	Response string
}

// Assistant runs the message pipeline: classify the intent, extract slots,
// consult the ledger, and produce a reply. The booking ledger is the source
// of truth; the calendar provider is consulted best-effort and its failures
// never block a local mutation.
type Assistant struct {
	bookings repository.BookingRepository
	calendar repository.CalendarRepository
	parser   SlotParser
	context  *nlp.ContextExtractor
	resolver *BookingResolver
	metrics  *metrics.Metrics
	logger   logger.Logger
	now      func() time.Time
}

// NewAssistant creates a new assistant. The calendar repository may be nil
// when no provider credentials are configured.
func NewAssistant(
	bookings repository.BookingRepository,
	calendar repository.CalendarRepository,
	parser SlotParser,
	contextExtractor *nlp.ContextExtractor,
	resolver *BookingResolver,
	m *metrics.Metrics,
	logger logger.Logger,
) *Assistant {
	return &Assistant{
		bookings: bookings,
		calendar: calendar,
		parser:   parser,
		context:  contextExtractor,
		resolver: resolver,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleMessage processes one user message against the given chat history.
// It always returns a result; every failure path ends in a reply string.
func (a *Assistant) HandleMessage(ctx context.Context, userMsg string, history []*entity.ChatMessage) *Result {
	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.MessagesProcessed.Inc()
			a.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	contextEvent := a.context.FromHistory(history)
	intent := nlp.ClassifyIntent(userMsg)
	slots := a.parser.Extract(ctx, userMsg, contextEvent)

	if a.metrics != nil {
		a.metrics.IntentsDetected.WithLabelValues(string(intent)).Inc()
	}

	a.logger.Info("Handling message",
		"intent", intent,
		"ambiguous", slots.Ambiguous,
		"reference", slots.Reference)

	var response string
	switch intent {
	case nlp.IntentBook:
		response = a.handleBook(ctx, slots)
	case nlp.IntentCancel:
		response = a.handleCancel(ctx, slots, contextEvent)
	case nlp.IntentEdit:
		response = a.handleEdit(ctx, slots, contextEvent)
	case nlp.IntentList:
		response = a.handleList(ctx)
	case nlp.IntentCheck:
		response = a.handleCheck(ctx)
	case nlp.IntentHelp:
		response = helpText
	default:
		response = "Sorry, I didn't understand. Please try again or type 'help'."
	}

	return &Result{
		Intent:   intent,
		Slots:    slots,
		Response: response,
	}
}

func (a *Assistant) handleBook(ctx context.Context, slots nlp.SlotRecord) string {
	if slots.Ambiguous || slots.Datetime == nil {
		return "Please specify a clear date and time for your event."
	}

	startTime := slots.Datetime.Format(time.RFC3339)
	endTime := slots.Datetime.Add(time.Duration(slots.DurationMinutes) * time.Minute).Format(time.RFC3339)

	existing, err := a.bookings.List(ctx, "")
	if err != nil {
		return a.ledgerError("list", err)
	}
	for _, b := range existing {
		if b.StartTime == startTime && b.IsActive() {
			return a.conflictReply(ctx, slots)
		}
	}

	eventID, syncErr := a.createProviderEvent(ctx, slots)
	booking := &entity.Booking{
		Summary:   slots.Summary,
		EventID:   eventID,
		StartTime: startTime,
		EndTime:   endTime,
		Timezone:  slots.Timezone,
		Status:    entity.StatusActive,
	}
	if err := a.bookings.Save(ctx, booking); err != nil {
		return a.ledgerError("save", err)
	}

	if a.metrics != nil {
		a.metrics.BookingsCreated.Inc()
	}
	a.logger.Info("Booking created", "bookingId", booking.ID, "startTime", startTime)

	response := fmt.Sprintf("Event '%s' booked for %s (%s).",
		slots.Summary, slots.Datetime.Format(nlp.DateLayout), slots.Timezone)
	if len(slots.Attendees) > 0 {
		response += fmt.Sprintf(" Attendees: %s.", strings.Join(slots.Attendees, ", "))
	}
	if syncErr != nil {
		response += " Note: calendar sync failed, the event is saved locally."
	}
	return response
}

// conflictReply reports the collision and, when a provider is wired, offers
// up to three free slots in the two hours after the requested start.
func (a *Assistant) conflictReply(ctx context.Context, slots nlp.SlotRecord) string {
	response := "You already have an event at that time."
	if a.calendar == nil {
		return response
	}

	windowEnd := slots.Datetime.Add(2 * time.Hour)
	free, err := a.calendar.FindAvailableSlots(ctx, *slots.Datetime, windowEnd, slots.DurationMinutes, slots.Timezone)
	if err != nil {
		a.logger.Warn("Failed to fetch alternative slots", "error", err)
		return response
	}
	if len(free) == 0 {
		return response
	}
	if len(free) > 3 {
		free = free[:3]
	}

	var times []string
	for _, s := range free {
		times = append(times, fmt.Sprintf("%s - %s",
			s.Start.Format("Monday 03:04 PM"), s.End.Format("03:04 PM")))
	}
	return response + " Available options: " + strings.Join(times, ", ")
}

// createProviderEvent pushes the event to the calendar provider and returns
// its event ID, or a synthesized one when no provider is wired or the call
// fails. The booking proceeds either way; the error only annotates the reply.
func (a *Assistant) createProviderEvent(ctx context.Context, slots nlp.SlotRecord) (string, error) {
	fallbackID := fmt.Sprintf("evt_%d_%s", a.now().Unix(), uuid.NewString()[:8])
	if a.calendar == nil {
		return fallbackID, nil
	}

	end := slots.Datetime.Add(time.Duration(slots.DurationMinutes) * time.Minute)
	event, err := a.calendar.CreateEvent(ctx, *slots.Datetime, end, slots.Summary, "", slots.Attendees, slots.Timezone)
	if err != nil {
		a.logger.Warn("Calendar provider rejected event, keeping local booking", "error", err)
		if a.metrics != nil {
			a.metrics.ErrorsCount.WithLabelValues("calendar_create").Inc()
		}
		return fallbackID, err
	}
	return event.ID, nil
}

func (a *Assistant) handleCancel(ctx context.Context, slots nlp.SlotRecord, contextEvent *nlp.ContextEvent) string {
	booking, err := a.findTarget(ctx, slots.Reference, contextEvent)
	if err != nil {
		return a.ledgerError("resolve", err)
	}
	if booking == nil {
		return "No matching event found to cancel."
	}

	if err := a.bookings.Cancel(ctx, booking.ID); err != nil {
		return a.ledgerError("cancel", err)
	}

	if a.metrics != nil {
		a.metrics.BookingsCancelled.Inc()
	}
	a.logger.Info("Booking cancelled", "bookingId", booking.ID)

	return fmt.Sprintf("Cancelled event: '%s' at %s", booking.Summary, booking.StartTime)
}

func (a *Assistant) handleEdit(ctx context.Context, slots nlp.SlotRecord, contextEvent *nlp.ContextEvent) string {
	booking, err := a.findTarget(ctx, slots.Reference, contextEvent)
	if err != nil {
		return a.ledgerError("resolve", err)
	}
	if booking == nil {
		return "No matching event found to edit."
	}

	if slots.Ambiguous || slots.Datetime == nil {
		return "Please specify the new date/time or summary for your event."
	}

	startTime := slots.Datetime.Format(time.RFC3339)
	endTime := slots.Datetime.Add(time.Duration(slots.DurationMinutes) * time.Minute).Format(time.RFC3339)
	if err := a.bookings.Update(ctx, booking.ID, slots.Summary, startTime, endTime, slots.Timezone); err != nil {
		return a.ledgerError("update", err)
	}

	if a.metrics != nil {
		a.metrics.BookingsUpdated.Inc()
	}
	a.logger.Info("Booking updated", "bookingId", booking.ID, "startTime", startTime)

	return fmt.Sprintf("Updated event to '%s' at %s (%s).",
		slots.Summary, slots.Datetime.Format(nlp.DateLayout), slots.Timezone)
}

// findTarget resolves the reference when the message carries one, or falls
// back to the most recently created active booking.
func (a *Assistant) findTarget(ctx context.Context, reference string, contextEvent *nlp.ContextEvent) (*entity.Booking, error) {
	if reference != "" {
		return a.resolver.Resolve(ctx, reference, contextEvent)
	}
	return a.bookings.GetLastActive(ctx)
}

func (a *Assistant) handleList(ctx context.Context) string {
	bookings, err := a.bookings.List(ctx, "")
	if err != nil {
		return a.ledgerError("list", err)
	}

	now := a.now().UTC()
	var past, upcoming []*entity.Booking
	for _, b := range bookings {
		dt, err := nlp.ParseTimestamp(b.StartTime)
		if err == nil && dt.Before(now) {
			past = append(past, b)
			continue
		}
		// Records with an unreadable start time list as upcoming so they
		// stay visible.
		upcoming = append(upcoming, b)
	}

	if len(past) == 0 && len(upcoming) == 0 {
		return "You have no events scheduled."
	}

	var response string
	if len(upcoming) > 0 {
		response += "Here are your upcoming events:\n" + joinFormatted(upcoming)
	}
	if len(past) > 0 {
		if response != "" {
			response += "\n\n"
		}
		response += "Here are your past events:\n" + joinFormatted(past)
	}
	return response
}

func (a *Assistant) handleCheck(ctx context.Context) string {
	bookings, err := a.bookings.List(ctx, entity.StatusActive)
	if err != nil {
		return a.ledgerError("list", err)
	}
	if len(bookings) == 0 {
		return "You are free! No events scheduled."
	}

	var lines []string
	for _, b := range bookings {
		lines = append(lines, fmt.Sprintf("%s - %s (%s)", b.StartTime, b.EndTime, b.Timezone))
	}
	return "You are busy at:\n" + strings.Join(lines, "\n")
}

func (a *Assistant) ledgerError(operation string, err error) string {
	a.logger.Error("Ledger operation failed", "operation", operation, "error", err)
	if a.metrics != nil {
		a.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
	return "Something went wrong while accessing your events. Please try again."
}

func joinFormatted(bookings []*entity.Booking) string {
	var lines []string
	for _, b := range bookings {
		lines = append(lines, FormatEventNatural(b))
	}
	return strings.Join(lines, "\n")
}
