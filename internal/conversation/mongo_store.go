package conversation

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/goal-planner/internal/models"
)

type conversationDocument struct {
	SessionID string        `bson:"session_id"`
	Turns     []models.Turn `bson:"turns"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// MongoStore keeps one document per session with its turns embedded.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

func (s *MongoStore) GetOrCreate(ctx context.Context, sessionID string) ([]models.Turn, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"turns":      bson.A{},
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc conversationDocument
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"session_id": sessionID}, update, opts).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("mongo: load conversation: %w", err)
	}

	if doc.Turns == nil {
		return []models.Turn{}, nil
	}
	return doc.Turns, nil
}

func (s *MongoStore) Append(ctx context.Context, sessionID string, turn models.Turn) error {
	now := time.Now().UTC()
	update := bson.M{
		"$push":        bson.M{"turns": turn},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := s.collection.UpdateOne(ctx, bson.M{"session_id": sessionID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: append turn: %w", err)
	}
	return nil
}
