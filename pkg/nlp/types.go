package nlp

import "time"

// Intent is the user's high-level goal, one of a closed enumeration.
type Intent string

const (
	IntentBook    Intent = "book"
	IntentCancel  Intent = "cancel"
	IntentEdit    Intent = "edit"
	IntentList    Intent = "list"
	IntentCheck   Intent = "check"
	IntentHelp    Intent = "help"
	IntentUnknown Intent = "unknown"
)

// ReferenceContext is the reference token produced when the message points at
// the current conversation topic with a pronoun ("it", "that", "this").
const ReferenceContext = "context"

// SlotRecord is the structured scheduling information extracted from one
// chat message. Datetime is nil when no date could be found.
type SlotRecord struct {
	Datetime        *time.Time
	DurationMinutes int
	Summary         string
	Timezone        string
	Attendees       []string
	Ambiguous       bool
	Reference       string
}

// ContextEvent is a best-effort reconstruction of the most recently discussed
// booking, rebuilt from an earlier assistant reply. Used as a fallback source
// for slot fields the current message does not supply.
type ContextEvent struct {
	Summary         string
	Datetime        *time.Time
	DurationMinutes int
	Timezone        string
	Attendees       []string
}

// Constants
const (
	DefaultDurationMinutes = 30
	DefaultTimezone        = "UTC"
	DefaultSummary         = "Event"

	// DateLayout is the layout used when a reply embeds a timestamp that a
	// later message may refer back to.
	DateLayout = "02 Jan 2006 15:04"
)
