package mongo

import (
	"context"

	"github.com/licsync/backend/internal/domain/company"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistoryRepository implements company.HistoryRepository on MongoDB
type MongoHistoryRepository struct {
	collection *mongo.Collection
}

// NewMongoHistoryRepository creates a new MongoHistoryRepository
func NewMongoHistoryRepository(db *mongo.Database) *MongoHistoryRepository {
	return &MongoHistoryRepository{collection: db.Collection(historyCollection)}
}

// Record appends one audit entry
func (r *MongoHistoryRepository) Record(ctx context.Context, entry *company.HistoryEntry) error {
	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}
	return nil
}

// FindByCompany retrieves the most recent entries for a company
func (r *MongoHistoryRepository) FindByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]company.HistoryEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []company.HistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []company.HistoryEntry{}
	}
	return entries, nil
}

// Ensure MongoHistoryRepository implements company.HistoryRepository
var _ company.HistoryRepository = (*MongoHistoryRepository)(nil)
