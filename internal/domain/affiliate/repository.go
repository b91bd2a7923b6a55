package affiliate

import (
	"context"

	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository defines the persistence contract for one affiliate collection.
// Implementations normalize the stored company field on every read and write
// only the canonical array shape.
type Repository interface {
	// Kind identifies which collection this repository serves
	Kind() Kind

	// FindByID retrieves an affiliate by id. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id primitive.ObjectID) (*Affiliate, error)

	// FindByPhone retrieves the first affiliate with the given phone.
	// Returns shared.ErrNotFound when absent.
	FindByPhone(ctx context.Context, phone string) (*Affiliate, error)

	// FindByEmail retrieves the first affiliate with the given email.
	// Returns shared.ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*Affiliate, error)

	// FindAll lists affiliates matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Affiliate, error)

	// Count returns the number of affiliates matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Insert persists a new affiliate and assigns its id
	Insert(ctx context.Context, a *Affiliate) error

	// Update replaces the stored document
	Update(ctx context.Context, a *Affiliate) error

	// Delete removes the affiliate document
	Delete(ctx context.Context, id primitive.ObjectID) error

	// LoadReferences reads and normalizes the affiliate's company field.
	// Returns shared.ErrNotFound when the affiliate does not exist.
	LoadReferences(ctx context.Context, id primitive.ObjectID) ([]affiliation.CompanyRef, error)

	// SaveReferences persists the full reference array, replacing whatever
	// shape was stored. When licenseType is non-empty the affiliate's own
	// license_type field is set in the same write. This read-modify-write
	// pair is not atomic; concurrent writers on the same affiliate are
	// last-writer-wins.
	SaveReferences(ctx context.Context, id primitive.ObjectID, refs []affiliation.CompanyRef, licenseType string) error
}
