// Package mongo implements the repository contracts on MongoDB. Affiliate
// company fields are normalized on every read; only the canonical array
// shape is ever written back.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// Config holds connection settings
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	EnableTracing  bool
}

// Connect establishes the client, verifies the connection with a ping, and
// returns the database handle.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.EnableTracing {
		opts.SetMonitor(otelmongo.NewMonitor())
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes the query paths depend on. Company name
// lookups are exact-match and hot; affiliate collections are scanned by
// embedded company id during cascades.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	companyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "portal_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := db.Collection(companiesCollection).Indexes().CreateMany(ctx, companyIndexes); err != nil {
		return fmt.Errorf("failed to create company indexes: %w", err)
	}

	affiliateIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "company.id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	for _, name := range affiliateCollections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, affiliateIndexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}

	licenseIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "portal_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
	}
	if _, err := db.Collection(licensesCollection).Indexes().CreateMany(ctx, licenseIndexes); err != nil {
		return fmt.Errorf("failed to create license indexes: %w", err)
	}

	historyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if _, err := db.Collection(historyCollection).Indexes().CreateMany(ctx, historyIndexes); err != nil {
		return fmt.Errorf("failed to create history indexes: %w", err)
	}

	return nil
}

const (
	companiesCollection = "companies"
	licensesCollection  = "licenses"
	messagesCollection  = "messages"
	historyCollection   = "company_history"
)

var affiliateCollections = []string{"customers", "indicadores", "parceiros"}
