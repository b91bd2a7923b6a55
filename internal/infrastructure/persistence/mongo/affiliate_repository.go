package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/licsync/backend/internal/domain/affiliate"
	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAffiliateRepository implements affiliate.Repository and
// affiliation.ReferenceStore for one affiliate collection. The stored company
// field may be a bare string, a single object, or an array; reads normalize
// whatever is found, repository writes emit only the canonical array shape,
// and cascade updates patch legacy shapes in place without rewriting them.
type MongoAffiliateRepository struct {
	kind       affiliate.Kind
	collection *mongo.Collection
}

// NewMongoAffiliateRepository creates a repository over the collection named
// after the affiliate kind.
func NewMongoAffiliateRepository(db *mongo.Database, kind affiliate.Kind) *MongoAffiliateRepository {
	return &MongoAffiliateRepository{
		kind:       kind,
		collection: db.Collection(string(kind)),
	}
}

// affiliateDoc is the raw storage shape. Company stays untyped until the
// normalizer has seen it.
type affiliateDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Phone       string             `bson:"phone,omitempty"`
	Email       string             `bson:"email,omitempty"`
	Company     interface{}        `bson:"company,omitempty"`
	LicenseType string             `bson:"license_type,omitempty"`
	Status      string             `bson:"status,omitempty"`
	PortalID    string             `bson:"portal_id,omitempty"`
	Tipo        string             `bson:"tipo,omitempty"`
	Comissao    string             `bson:"comissao,omitempty"`
	CreatedAt   time.Time          `bson:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty"`
}

func (d *affiliateDoc) toDomain(kind affiliate.Kind) *affiliate.Affiliate {
	return &affiliate.Affiliate{
		ID:          d.ID,
		Kind:        kind,
		Name:        d.Name,
		Phone:       d.Phone,
		Email:       d.Email,
		Company:     affiliation.Normalize(d.Company),
		LicenseType: d.LicenseType,
		Status:      d.Status,
		PortalID:    d.PortalID,
		Tipo:        d.Tipo,
		Comissao:    d.Comissao,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Kind identifies which collection this repository serves
func (r *MongoAffiliateRepository) Kind() affiliate.Kind {
	return r.kind
}

// CollectionName returns the backing collection name
func (r *MongoAffiliateRepository) CollectionName() string {
	return r.collection.Name()
}

// FindByID finds an affiliate by its id
func (r *MongoAffiliateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*affiliate.Affiliate, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByPhone finds the first affiliate with the given phone
func (r *MongoAffiliateRepository) FindByPhone(ctx context.Context, phone string) (*affiliate.Affiliate, error) {
	if phone == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"phone": phone})
}

// FindByEmail finds the first affiliate with the given email
func (r *MongoAffiliateRepository) FindByEmail(ctx context.Context, email string) (*affiliate.Affiliate, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAffiliateRepository) findOne(ctx context.Context, query bson.M) (*affiliate.Affiliate, error) {
	var doc affiliateDoc
	err := r.collection.FindOne(ctx, query).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(r.kind), nil
}

// FindAll finds affiliates matching the filter
func (r *MongoAffiliateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]affiliate.Affiliate, error) {
	query := buildQuery(filter, "name", "phone", "email")

	cursor, err := r.collection.Find(ctx, query, findOptions(filter))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	affiliates := []affiliate.Affiliate{}
	for cursor.Next(ctx) {
		var doc affiliateDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		affiliates = append(affiliates, *doc.toDomain(r.kind))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return affiliates, nil
}

// Count counts affiliates matching the filter
func (r *MongoAffiliateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return r.collection.CountDocuments(ctx, buildQuery(filter, "name", "phone", "email"))
}

// Insert persists a new affiliate and assigns its id
func (r *MongoAffiliateRepository) Insert(ctx context.Context, a *affiliate.Affiliate) error {
	if a.Company == nil {
		a.Company = []affiliation.CompanyRef{}
	}
	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

// Update replaces the stored document with the canonical shape
func (r *MongoAffiliateRepository) Update(ctx context.Context, a *affiliate.Affiliate) error {
	if a.Company == nil {
		a.Company = []affiliation.CompanyRef{}
	}
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the affiliate document
func (r *MongoAffiliateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LoadReferences reads and normalizes the affiliate's company field
func (r *MongoAffiliateRepository) LoadReferences(ctx context.Context, id primitive.ObjectID) ([]affiliation.CompanyRef, error) {
	var doc struct {
		Company interface{} `bson:"company"`
	}
	opts := options.FindOne().SetProjection(bson.M{"company": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return affiliation.Normalize(doc.Company), nil
}

// SaveReferences persists the full reference array in the canonical shape,
// replacing whatever shape was stored.
func (r *MongoAffiliateRepository) SaveReferences(ctx context.Context, id primitive.ObjectID, refs []affiliation.CompanyRef, licenseType string) error {
	if refs == nil {
		refs = []affiliation.CompanyRef{}
	}

	set := bson.M{
		"company":    refs,
		"updated_at": time.Now().UTC(),
	}
	if licenseType != "" {
		set["license_type"] = licenseType
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// referenceIDs matches ids stored natively or as legacy hex strings
func referenceIDs(companyID primitive.ObjectID) bson.A {
	return bson.A{companyID, companyID.Hex()}
}

// referenceFilter unions the two embedding shapes: single-object documents
// match on the dotted path, array documents match on an element.
func referenceFilter(companyID primitive.ObjectID) bson.M {
	ids := referenceIDs(companyID)
	return bson.M{"$or": []bson.M{
		{"company.id": bson.M{"$in": ids}},
		{"company": bson.M{"$elemMatch": bson.M{"id": bson.M{"$in": ids}}}},
	}}
}

// referenceUpdate is one per-document patch produced by a cascade scan
type referenceUpdate struct {
	update interface{}
	opts   []*options.UpdateOptions
}

// scanAndPatch finds every document embedding the company, lets decide
// produce a shape-appropriate patch for each, and applies the patches one
// document at a time. Legacy bare-string references carry no id and are
// never matched. There is no transaction: a failure mid-scan leaves earlier
// documents updated.
func (r *MongoAffiliateRepository) scanAndPatch(ctx context.Context, companyID primitive.ObjectID, decide referenceDecision) (int64, error) {
	opts := options.Find().SetProjection(bson.M{"company": 1})
	cursor, err := r.collection.Find(ctx, referenceFilter(companyID), opts)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var updated int64
	for cursor.Next(ctx) {
		var doc struct {
			ID      primitive.ObjectID `bson:"_id"`
			Company interface{}        `bson:"company"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return updated, err
		}

		patch := decide(affiliation.Normalize(doc.Company), isArrayShape(doc.Company))
		if patch == nil {
			continue
		}

		result, err := r.collection.UpdateByID(ctx, doc.ID, patch.update, patch.opts...)
		if err != nil {
			return updated, err
		}
		updated += result.ModifiedCount
	}
	if err := cursor.Err(); err != nil {
		return updated, err
	}
	return updated, nil
}

func isArrayShape(raw interface{}) bool {
	switch raw.(type) {
	case primitive.A, []interface{}:
		return true
	default:
		return false
	}
}

func matchElement(companyID primitive.ObjectID, extra bson.M) *options.UpdateOptions {
	cond := bson.M{"el.id": bson.M{"$in": referenceIDs(companyID)}}
	for k, v := range extra {
		cond[k] = v
	}
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: bson.A{cond},
	})
}

// RenameReferences rewrites the cached company name on every embedded
// reference, active or historical.
func (r *MongoAffiliateRepository) RenameReferences(ctx context.Context, companyID primitive.ObjectID, newName string) (int64, error) {
	return r.scanAndPatch(ctx, companyID, renameDecision(companyID, newName))
}

// PropagateLicenseType updates the cached license type where this company is
// the active reference. See licenseTypeDecision for the selectivity rules.
func (r *MongoAffiliateRepository) PropagateLicenseType(ctx context.Context, companyID primitive.ObjectID, licenseType string) (int64, error) {
	return r.scanAndPatch(ctx, companyID, licenseTypeDecision(companyID, licenseType))
}

// SetCompanyActive recomputes the cached isCompanyActive flag. See
// companyActiveDecision for the per-shape rules.
func (r *MongoAffiliateRepository) SetCompanyActive(ctx context.Context, companyID primitive.ObjectID, isCompanyActive bool) (int64, error) {
	return r.scanAndPatch(ctx, companyID, companyActiveDecision(companyID, isCompanyActive))
}

// RemoveReferences strips every reference to the company from the collection.
func (r *MongoAffiliateRepository) RemoveReferences(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return r.scanAndPatch(ctx, companyID, removeDecision(companyID))
}

// Ensure the contracts are implemented
var (
	_ affiliate.Repository       = (*MongoAffiliateRepository)(nil)
	_ affiliation.ReferenceStore = (*MongoAffiliateRepository)(nil)
)
