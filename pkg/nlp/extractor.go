package nlp

import (
	"regexp"
	"strings"
	"time"

	"calassist-service/pkg/logger"
)

// vagueTimePhrases mark a message as too underspecified to act on even when
// a date was technically found.
var vagueTimePhrases = []string{
	"next week", "someday", "later", "soon", "whenever", "some time", "not sure",
}

var (
	hourLiteralRe  = regexp.MustCompile(`(?i)1 ?hour`)
	minutesRe      = regexp.MustCompile(`(?i)(\d+)\s*min`)
	hoursRe        = regexp.MustCompile(`(?i)(\d+)\s*hour`)
	summaryRe      = regexp.MustCompile(`(?i)for ([^,.;]+)`)
	timezoneRe     = regexp.MustCompile(`([A-Za-z]+/[A-Za-z_]+)`)
	attendeesRe    = regexp.MustCompile(`(?i)with ([A-Za-z ,]+)`)
	refTimeRe      = regexp.MustCompile(`(?i)(\d{1,2}(:\d{2})?\s*(am|pm)?)`)
	refSummaryRe   = regexp.MustCompile(`(?i)(event|call|appointment) (about|on|for) ([^,.]+)`)
	attendeeSplit  = regexp.MustCompile(`(?i),| and `)
	pronounRefList = []string{"it", "that", "this"}
)

// SlotExtractor turns raw chat text into a SlotRecord. Each field is an
// independent regex pass over the same input; missing fields fall back to the
// context event when one is available. Deterministic given identical input.
type SlotExtractor struct {
	logger logger.Logger
	now    func() time.Time
}

// NewSlotExtractor creates a new slot extractor
func NewSlotExtractor(logger logger.Logger) *SlotExtractor {
	return &SlotExtractor{
		logger: logger,
		now:    time.Now,
	}
}

// Extract parses one message into a slot record
func (e *SlotExtractor) Extract(text string, contextEvent *ContextEvent) SlotRecord {
	timezone := e.extractTimezone(text, contextEvent)

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		e.logger.Warn("Unknown timezone, falling back to UTC", "timezone", timezone)
		timezone = DefaultTimezone
		loc = time.UTC
	}

	var datetime *time.Time
	if dt, ok := SearchDateTime(text, e.now(), loc); ok {
		datetime = &dt
	} else if contextEvent != nil && contextEvent.Datetime != nil {
		datetime = contextEvent.Datetime
	}

	record := SlotRecord{
		Datetime:        datetime,
		DurationMinutes: e.extractDuration(text, contextEvent),
		Summary:         e.extractSummary(text, contextEvent),
		Timezone:        timezone,
		Attendees:       e.extractAttendees(text, contextEvent),
		Ambiguous:       e.detectAmbiguity(text, datetime),
		Reference:       ExtractReference(text),
	}

	e.logger.Debug("Slots extracted",
		"datetime", record.Datetime,
		"duration", record.DurationMinutes,
		"timezone", record.Timezone,
		"ambiguous", record.Ambiguous,
		"reference", record.Reference)

	return record
}

// extractDuration applies the duration overrides in priority order: the
// literal "1 hour", then an explicit minute count, then an hour count, then
// the context event.
func (e *SlotExtractor) extractDuration(text string, contextEvent *ContextEvent) int {
	if hourLiteralRe.MatchString(text) {
		return 60
	}
	if m := minutesRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	if m := hoursRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1]) * 60
	}
	if contextEvent != nil && contextEvent.DurationMinutes > 0 {
		return contextEvent.DurationMinutes
	}
	return DefaultDurationMinutes
}

func (e *SlotExtractor) extractSummary(text string, contextEvent *ContextEvent) string {
	if m := summaryRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if contextEvent != nil && contextEvent.Summary != "" {
		return contextEvent.Summary
	}
	return DefaultSummary
}

func (e *SlotExtractor) extractTimezone(text string, contextEvent *ContextEvent) string {
	if m := timezoneRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if contextEvent != nil && contextEvent.Timezone != "" {
		return contextEvent.Timezone
	}
	return DefaultTimezone
}

// extractAttendees parses "with Alice, Bob and Carol" into title-cased names.
func (e *SlotExtractor) extractAttendees(text string, contextEvent *ContextEvent) []string {
	if m := attendeesRe.FindStringSubmatch(text); m != nil {
		var names []string
		for _, part := range attendeeSplit.Split(m[1], -1) {
			if name := strings.TrimSpace(part); name != "" {
				names = append(names, titleCase(name))
			}
		}
		if len(names) > 0 {
			return names
		}
	}
	if contextEvent != nil && len(contextEvent.Attendees) > 0 {
		return contextEvent.Attendees
	}
	return nil
}

func (e *SlotExtractor) detectAmbiguity(text string, datetime *time.Time) bool {
	if datetime == nil {
		return true
	}
	msg := strings.ToLower(text)
	for _, phrase := range vagueTimePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// ExtractReference finds the token identifying which existing booking the
// message refers to: an explicit time, a summary fragment, "last", "next",
// or a pronoun mapped to the context token. Empty when nothing matches.
func ExtractReference(text string) string {
	if m := refTimeRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := refSummaryRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[3])
	}
	msg := strings.ToLower(text)
	if strings.Contains(msg, "last") {
		return "last"
	}
	if strings.Contains(msg, "next") {
		return "next"
	}
	for _, pronoun := range pronounRefList {
		if strings.Contains(msg, pronoun) {
			return ReferenceContext
		}
	}
	return ""
}

func titleCase(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
