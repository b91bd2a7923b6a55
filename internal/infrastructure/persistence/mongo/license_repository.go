package mongo

import (
	"context"
	"errors"

	"github.com/licsync/backend/internal/domain/license"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoLicenseRepository implements license.Repository on MongoDB
type MongoLicenseRepository struct {
	collection *mongo.Collection
}

// NewMongoLicenseRepository creates a new MongoLicenseRepository
func NewMongoLicenseRepository(db *mongo.Database) *MongoLicenseRepository {
	return &MongoLicenseRepository{collection: db.Collection(licensesCollection)}
}

// FindByID finds a license by its id
func (r *MongoLicenseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*license.License, error) {
	var l license.License
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByPortalID finds a license by its external portal id
func (r *MongoLicenseRepository) FindByPortalID(ctx context.Context, portalID string) (*license.License, error) {
	var l license.License
	err := r.collection.FindOne(ctx, bson.M{"portal_id": portalID}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByCustomer finds every license attached to a customer
func (r *MongoLicenseRepository) FindByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]license.License, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var licenses []license.License
	if err := cursor.All(ctx, &licenses); err != nil {
		return nil, err
	}
	if licenses == nil {
		licenses = []license.License{}
	}
	return licenses, nil
}

// FindAll finds licenses matching the filter
func (r *MongoLicenseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]license.License, error) {
	query := buildQuery(filter, "portal_id", "license_type")

	cursor, err := r.collection.Find(ctx, query, findOptions(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var licenses []license.License
	if err := cursor.All(ctx, &licenses); err != nil {
		return nil, err
	}
	if licenses == nil {
		licenses = []license.License{}
	}
	return licenses, nil
}

// Count counts licenses matching the filter
func (r *MongoLicenseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.collection.CountDocuments(ctx, buildQuery(filter, "portal_id", "license_type"))
}

// Insert persists a new license and assigns its id
func (r *MongoLicenseRepository) Insert(ctx context.Context, l *license.License) error {
	result, err := r.collection.InsertOne(ctx, l)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		l.ID = oid
	}
	return nil
}

// Update replaces the stored document
func (r *MongoLicenseRepository) Update(ctx context.Context, l *license.License) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": l.ID}, l)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the license document
func (r *MongoLicenseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure MongoLicenseRepository implements license.Repository
var _ license.Repository = (*MongoLicenseRepository)(nil)
