package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/infrastructure/telemetry"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Cascade fans company-side changes out to every affiliate collection that
// embeds references. Collections are visited sequentially with no
// cross-collection transaction: a crash or a failing collection leaves the
// remaining ones stale. Failures are logged per collection and joined into
// the returned error instead of aborting the fan-out, so one bad collection
// does not stop the others from converging.
type Cascade struct {
	stores []affiliation.ReferenceStore
	logger *zap.Logger
}

// NewCascade creates a propagator over the given reference stores
func NewCascade(logger *zap.Logger, stores ...affiliation.ReferenceStore) *Cascade {
	return &Cascade{
		stores: stores,
		logger: logger,
	}
}

// Rename propagates a company rename to every embedded reference, active or
// historical. History must show correct names too.
func (c *Cascade) Rename(ctx context.Context, companyID primitive.ObjectID, newName string) error {
	return c.fanOut(ctx, "rename", companyID, func(ctx context.Context, store affiliation.ReferenceStore) (int64, error) {
		return store.RenameReferences(ctx, companyID, newName)
	})
}

// PropagateLicenseType updates the cached license type only on affiliates
// whose active reference is this company.
func (c *Cascade) PropagateLicenseType(ctx context.Context, companyID primitive.ObjectID, licenseType string) error {
	return c.fanOut(ctx, "license_type", companyID, func(ctx context.Context, store affiliation.ReferenceStore) (int64, error) {
		return store.PropagateLicenseType(ctx, companyID, licenseType)
	})
}

// SetCompanyActive recomputes the cached isCompanyActive flag across all
// collections after a status, active or linked change.
func (c *Cascade) SetCompanyActive(ctx context.Context, companyID primitive.ObjectID, isCompanyActive bool) error {
	return c.fanOut(ctx, "company_active", companyID, func(ctx context.Context, store affiliation.ReferenceStore) (int64, error) {
		return store.SetCompanyActive(ctx, companyID, isCompanyActive)
	})
}

// RemoveReferences strips every reference to the company from all
// collections. Runs before the company document itself is deleted.
func (c *Cascade) RemoveReferences(ctx context.Context, companyID primitive.ObjectID) error {
	return c.fanOut(ctx, "remove", companyID, func(ctx context.Context, store affiliation.ReferenceStore) (int64, error) {
		return store.RemoveReferences(ctx, companyID)
	})
}

func (c *Cascade) fanOut(ctx context.Context, op string, companyID primitive.ObjectID, apply func(context.Context, affiliation.ReferenceStore) (int64, error)) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "cascade", op)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCompanyID, companyID.Hex(),
		"collections", len(c.stores),
	)

	var errs []error
	for _, store := range c.stores {
		updated, err := apply(ctx, store)
		if err != nil {
			telemetry.RecordError(span, err)
			// Keep going: the other collections can still converge. The
			// skipped collection stays stale until the next company write.
			c.logger.Error("cascade step failed, collection left stale",
				zap.String("operation", op),
				zap.String("collection", store.CollectionName()),
				zap.String("company_id", companyID.Hex()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", store.CollectionName(), err))
			continue
		}
		c.logger.Info("cascade step applied",
			zap.String("operation", op),
			zap.String("collection", store.CollectionName()),
			zap.String("company_id", companyID.Hex()),
			zap.Int64("documents_updated", updated),
		)
	}
	return errors.Join(errs...)
}
