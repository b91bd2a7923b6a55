package mongo

import (
	"context"
	"errors"
	"strings"

	"github.com/licsync/backend/internal/domain/company"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCompanyRepository implements company.Repository on MongoDB
type MongoCompanyRepository struct {
	collection *mongo.Collection
}

// NewMongoCompanyRepository creates a new MongoCompanyRepository
func NewMongoCompanyRepository(db *mongo.Database) *MongoCompanyRepository {
	return &MongoCompanyRepository{collection: db.Collection(companiesCollection)}
}

// FindByID finds a company by its id
func (r *MongoCompanyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*company.Company, error) {
	var c company.Company
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByName finds a company by exact trimmed name
func (r *MongoCompanyRepository) FindByName(ctx context.Context, name string) (*company.Company, error) {
	var c company.Company
	err := r.collection.FindOne(ctx, bson.M{"name": strings.TrimSpace(name)}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByNames finds companies matching any of the given names in one query
func (r *MongoCompanyRepository) FindByNames(ctx context.Context, names []string) ([]company.Company, error) {
	if len(names) == 0 {
		return []company.Company{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var companies []company.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	if companies == nil {
		companies = []company.Company{}
	}
	return companies, nil
}

// FindAll finds companies matching the filter
func (r *MongoCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]company.Company, error) {
	query := buildQuery(filter, "name", "cnpj", "portal_id")

	cursor, err := r.collection.Find(ctx, query, findOptions(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var companies []company.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	if companies == nil {
		companies = []company.Company{}
	}
	return companies, nil
}

// Count counts companies matching the filter
func (r *MongoCompanyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.collection.CountDocuments(ctx, buildQuery(filter, "name", "cnpj", "portal_id"))
}

// Insert persists a new company and assigns its id
func (r *MongoCompanyRepository) Insert(ctx context.Context, c *company.Company) error {
	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// Update replaces the stored document
func (r *MongoCompanyRepository) Update(ctx context.Context, c *company.Company) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the company document
func (r *MongoCompanyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks if a company with the given name exists
func (r *MongoCompanyRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"name": strings.TrimSpace(name)})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure MongoCompanyRepository implements company.Repository
var _ company.Repository = (*MongoCompanyRepository)(nil)
