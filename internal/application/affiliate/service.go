// Package affiliate orchestrates affiliate CRUD and the link/unlink
// operations on embedded company references. One Service instance serves one
// affiliate collection; the three collections share the same behavior.
package affiliate

import (
	"context"
	"errors"

	"github.com/licsync/backend/internal/domain/affiliate"
	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/domain/company"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateInput carries the fields accepted when creating an affiliate.
// CompanyNames is the caller-supplied company list in caller order; position
// 0 wins the active slot.
type CreateInput struct {
	Name         string
	Phone        string
	Email        string
	CompanyNames []string
	Status       string
	PortalID     string
	Tipo         string
	Comissao     string
}

// UpdateInput carries the fields accepted when updating an affiliate.
// Nil pointers mean "leave unchanged". A non-nil CompanyNames replaces the
// whole reference array from the freshly supplied list.
type UpdateInput struct {
	Name         *string
	Phone        *string
	Email        *string
	CompanyNames *[]string
	Status       *string
	PortalID     *string
	Tipo         *string
	Comissao     *string
}

// Service implements affiliate operations for one collection
type Service struct {
	repo     affiliate.Repository
	resolver *company.Resolver
	logger   *zap.Logger
}

// NewService creates an affiliate service over the given repository
func NewService(repo affiliate.Repository, resolver *company.Resolver, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

// Kind identifies which affiliate collection this service manages
func (s *Service) Kind() affiliate.Kind {
	return s.repo.Kind()
}

// Create creates an affiliate, resolving any supplied company names into an
// embedded reference array with position 0 active.
func (s *Service) Create(ctx context.Context, input CreateInput) (*affiliate.Affiliate, error) {
	a, err := affiliate.New(s.repo.Kind(), input.Name)
	if err != nil {
		return nil, err
	}
	a.Phone = input.Phone
	a.Email = input.Email
	a.Status = input.Status
	a.PortalID = input.PortalID
	if err := a.SetClassification(input.Tipo, input.Comissao); err != nil {
		return nil, err
	}

	refs, licenseType, err := s.resolveSupplied(ctx, input.CompanyNames)
	if err != nil {
		return nil, err
	}
	a.Company = refs
	a.LicenseType = licenseType

	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateResolved creates an affiliate from references that were already
// resolved, skipping the per-name lookup. The bulk importer uses this to
// resolve a whole file's company names in one batch.
func (s *Service) CreateResolved(ctx context.Context, input CreateInput, refs []affiliation.CompanyRef, licenseType string) (*affiliate.Affiliate, error) {
	a, err := affiliate.New(s.repo.Kind(), input.Name)
	if err != nil {
		return nil, err
	}
	a.Phone = input.Phone
	a.Email = input.Email
	a.Status = input.Status
	a.PortalID = input.PortalID
	if err := a.SetClassification(input.Tipo, input.Comissao); err != nil {
		return nil, err
	}
	a.Company = refs
	a.LicenseType = licenseType

	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get retrieves an affiliate by its hex id
func (s *Service) Get(ctx context.Context, id string) (*affiliate.Affiliate, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

// List retrieves affiliates matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]affiliate.Affiliate, int64, error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update applies the changed fields. A supplied company list replaces the
// stored reference array entirely, with the same resolution and single-active
// enforcement as create.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*affiliate.Affiliate, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		renamed, err := affiliate.New(s.repo.Kind(), *input.Name)
		if err != nil {
			return nil, err
		}
		a.Name = renamed.Name
	}
	if input.Phone != nil {
		a.Phone = *input.Phone
	}
	if input.Email != nil {
		a.Email = *input.Email
	}
	if input.Status != nil {
		a.Status = *input.Status
	}
	if input.PortalID != nil {
		a.PortalID = *input.PortalID
	}
	if input.Tipo != nil || input.Comissao != nil {
		tipo, comissao := a.Tipo, a.Comissao
		if input.Tipo != nil {
			tipo = *input.Tipo
		}
		if input.Comissao != nil {
			comissao = *input.Comissao
		}
		if err := a.SetClassification(tipo, comissao); err != nil {
			return nil, err
		}
	}
	if input.CompanyNames != nil {
		refs, licenseType, err := s.resolveSupplied(ctx, *input.CompanyNames)
		if err != nil {
			return nil, err
		}
		a.Company = refs
		if licenseType != "" {
			a.LicenseType = licenseType
		}
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an affiliate
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, oid)
}

// Link attaches the named company as the affiliate's current company,
// preserving previous references as history. The resolved license type is
// propagated onto the affiliate's own license_type field in the same write;
// affiliates always track the license type of their active company.
func (s *Service) Link(ctx context.Context, id, companyName string) ([]affiliation.CompanyRef, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, companyName, true)
	if err != nil {
		return nil, err
	}

	refs, err := s.repo.LoadReferences(ctx, oid)
	if err != nil {
		return nil, err
	}

	updated, err := affiliation.Link(refs, resolved)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveReferences(ctx, oid, updated, resolved.LicenseType); err != nil {
		return nil, err
	}
	return updated, nil
}

// Unlink removes the affiliate's current company reference
func (s *Service) Unlink(ctx context.Context, id string) ([]affiliation.CompanyRef, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	refs, err := s.repo.LoadReferences(ctx, oid)
	if err != nil {
		return nil, err
	}

	updated, err := affiliation.Unlink(refs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveReferences(ctx, oid, updated, ""); err != nil {
		return nil, err
	}
	return updated, nil
}

// resolveSupplied resolves a caller-supplied company name list into a
// reference array with position 0 active. Every name must resolve; a single
// bad name fails the whole operation. The returned license type is the active
// company's, empty when there is none.
func (s *Service) resolveSupplied(ctx context.Context, names []string) ([]affiliation.CompanyRef, string, error) {
	refs := make([]affiliation.CompanyRef, 0, len(names))
	for _, name := range names {
		resolved, err := s.resolver.Resolve(ctx, name, true)
		if err != nil {
			return nil, "", err
		}
		refs = append(refs, resolved)
	}
	refs = affiliation.ApplyCallerOrder(refs)

	licenseType := ""
	if active, ok := affiliation.ActiveRef(refs); ok {
		licenseType = active.LicenseType
	}
	return refs, licenseType, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, shared.ErrInvalidIdentifier
	}
	return oid, nil
}

// IsUserError reports whether the error is user-correctable rather than a
// storage failure. The HTTP layer maps these to 4xx responses.
func IsUserError(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr)
}
