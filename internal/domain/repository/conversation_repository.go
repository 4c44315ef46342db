package repository

import (
	"context"

	"calassist-service/internal/domain/entity"
)

// ConversationRepository defines the interface for chat transcript storage
type ConversationRepository interface {
	Append(ctx context.Context, message *entity.ChatMessage) error
	Recent(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error)
}
