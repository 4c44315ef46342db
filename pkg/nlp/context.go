package nlp

import (
	"regexp"
	"strings"
	"time"

	"calassist-service/internal/domain/entity"
	"calassist-service/pkg/logger"
)

// contextEventRe pulls the summary and date phrase out of a confirmation
// reply like "Event 'Standup' booked for 29 Jun 2025 15:00 (UTC)."
var contextEventRe = regexp.MustCompile(`'(.+?)' (?:booked|scheduled|updated|cancelled).*?for ([\w, :]+)`)

// ContextExtractor reconstructs the most recently discussed booking from the
// chat transcript. This is heuristic by nature: it re-parses the assistant's
// own replies, so callers must treat a nil result as "no fallback available",
// not as an error.
type ContextExtractor struct {
	logger logger.Logger
	now    func() time.Time
}

// NewContextExtractor creates a new context extractor
func NewContextExtractor(logger logger.Logger) *ContextExtractor {
	return &ContextExtractor{
		logger: logger,
		now:    time.Now,
	}
}

// FromHistory scans the history newest-first for an assistant reply that
// mentions an event and rebuilds a context event from it. Returns nil when no
// such reply exists or the reply does not match the confirmation shape.
func (c *ContextExtractor) FromHistory(messages []*entity.ChatMessage) *ContextEvent {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != entity.RoleAssistant {
			continue
		}
		if !strings.Contains(strings.ToLower(msg.Content), "event") {
			continue
		}

		m := contextEventRe.FindStringSubmatch(msg.Content)
		if m == nil {
			c.logger.Debug("Assistant reply mentions an event but has no parseable confirmation", "content", msg.Content)
			return nil
		}

		event := &ContextEvent{
			Summary:         m[1],
			DurationMinutes: DefaultDurationMinutes,
			Timezone:        DefaultTimezone,
		}
		if dt, ok := SearchDateTime(strings.TrimSpace(m[2]), c.now(), time.UTC); ok {
			event.Datetime = &dt
		}

		c.logger.Debug("Context event reconstructed",
			"summary", event.Summary,
			"datetime", event.Datetime)
		return event
	}
	return nil
}
