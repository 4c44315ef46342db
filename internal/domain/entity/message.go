package entity

import "time"

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. SessionID groups turns so the
// context extractor can look back over earlier replies.
type ChatMessage struct {
	ID        string    `bson:"_id,omitempty"`
	SessionID string    `bson:"sessionId"`
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
}
