package affiliation

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferenceStore is the per-collection write surface the cascade propagator
// fans out to. Each affiliate collection (customers, indicadores, parceiros)
// implements it with shape-tolerant filters: embedded references may still be
// stored as a legacy single object instead of an array.
//
// Implementations scan matching documents and issue per-document updates.
// There is no cross-collection transaction; a crash mid-cascade leaves some
// collections updated and others stale.
type ReferenceStore interface {
	// CollectionName identifies the collection for logging.
	CollectionName() string

	// RenameReferences rewrites the cached company name on every reference
	// to the company, in any activation state. History must show correct
	// names too. Returns the number of documents updated.
	RenameReferences(ctx context.Context, companyID primitive.ObjectID, newName string) (int64, error)

	// PropagateLicenseType updates the cached license type, and the
	// affiliate's own license_type field, only where the company is the
	// currently active reference. Historical references are left untouched.
	PropagateLicenseType(ctx context.Context, companyID primitive.ObjectID, licenseType string) (int64, error)

	// SetCompanyActive recomputes the cached isCompanyActive flag. Documents
	// with a single reference are always updated; documents with several are
	// updated only on the reference marked active, so historical entries are
	// not resurrected.
	SetCompanyActive(ctx context.Context, companyID primitive.ObjectID, isCompanyActive bool) (int64, error)

	// RemoveReferences strips every reference to the company, active or
	// historical. Used before a company document is deleted.
	RemoveReferences(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}
