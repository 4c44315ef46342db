package repository

import (
	"context"
	"time"

	"calassist-service/internal/domain/entity"
	"calassist-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConversationRepository implements the ConversationRepository interface
type MongoConversationRepository struct {
	collection *mongo.Collection
}

// NewMongoConversationRepository creates a new MongoDB conversation repository
func NewMongoConversationRepository(db *mongo.Database) repository.ConversationRepository {
	collection := db.Collection("chatMessages")

	// Create indexes for better performance
	ctx := context.Background()

	sessionIndex := mongo.IndexModel{
		Keys: bson.M{"sessionId": 1},
	}

	// Compound index for fetching a session's recent turns
	recentIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		sessionIndex,
		recentIndex,
	})

	return &MongoConversationRepository{
		collection: collection,
	}
}

// Append saves one turn of a conversation
func (r *MongoConversationRepository) Append(ctx context.Context, message *entity.ChatMessage) error {
	if message.ID == "" {
		message.ID = primitive.NewObjectID().Hex()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// Recent returns the last limit turns of a session in chronological order,
// newest last.
func (r *MongoConversationRepository) Recent(ctx context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*entity.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
