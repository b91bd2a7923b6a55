package company

import (
	"context"

	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository defines the persistence contract for companies
type Repository interface {
	// FindByID retrieves a company by id. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Company, error)

	// FindByName retrieves a company by exact (trimmed) name.
	// Returns shared.ErrNotFound when absent.
	FindByName(ctx context.Context, name string) (*Company, error)

	// FindByNames retrieves all companies whose name matches one of the given
	// names in a single batch query. Missing names are simply absent from the
	// result.
	FindByNames(ctx context.Context, names []string) ([]Company, error)

	// FindAll lists companies matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, error)

	// Count returns the number of companies matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Insert persists a new company and assigns its id
	Insert(ctx context.Context, c *Company) error

	// Update replaces the stored document
	Update(ctx context.Context, c *Company) error

	// Delete removes the company document. Reference cleanup in affiliate
	// collections must run before this.
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ExistsByName reports whether a company with the name exists
	ExistsByName(ctx context.Context, name string) (bool, error)
}
