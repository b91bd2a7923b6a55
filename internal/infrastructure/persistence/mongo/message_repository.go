package mongo

import (
	"context"
	"errors"

	"github.com/licsync/backend/internal/domain/messaging"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoMessageRepository implements messaging.Repository on MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection(messagesCollection)}
}

// FindByID finds a message by its id
func (r *MongoMessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*messaging.Message, error) {
	var m messaging.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindAll finds messages matching the filter
func (r *MongoMessageRepository) FindAll(ctx context.Context, filter shared.Filter) ([]messaging.Message, error) {
	query := buildQuery(filter, "phone", "content")

	cursor, err := r.collection.Find(ctx, query, findOptions(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []messaging.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []messaging.Message{}
	}
	return messages, nil
}

// Count counts messages matching the filter
func (r *MongoMessageRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.collection.CountDocuments(ctx, buildQuery(filter, "phone", "content"))
}

// Insert persists a new message and assigns its id
func (r *MongoMessageRepository) Insert(ctx context.Context, m *messaging.Message) error {
	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

// Update replaces the stored document
func (r *MongoMessageRepository) Update(ctx context.Context, m *messaging.Message) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure MongoMessageRepository implements messaging.Repository
var _ messaging.Repository = (*MongoMessageRepository)(nil)
