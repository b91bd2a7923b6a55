// Package license orchestrates portal license administration.
package license

import (
	"context"
	"errors"

	"github.com/licsync/backend/internal/domain/license"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateInput carries the fields accepted when creating a license
type CreateInput struct {
	CustomerID  string
	LicenseType string
	Status      string
	PortalID    string
}

// UpdateInput carries the fields accepted when updating a license.
// Nil pointers mean "leave unchanged".
type UpdateInput struct {
	LicenseType *string
	Status      *string
	PortalID    *string
}

// Service manages license records
type Service struct {
	repo   license.Repository
	logger *zap.Logger
}

// NewService creates a license service
func NewService(repo license.Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Create creates a license for a customer. PortalID, when supplied, must not
// collide with an existing license: the portal id is the external identity
// the webhook reconciles against.
func (s *Service) Create(ctx context.Context, input CreateInput) (*license.License, error) {
	customerID, err := parseID(input.CustomerID)
	if err != nil {
		return nil, err
	}

	l, err := license.New(customerID, input.LicenseType, license.Status(input.Status), input.PortalID)
	if err != nil {
		return nil, err
	}

	if l.PortalID != "" {
		existing, err := s.repo.FindByPortalID(ctx, l.PortalID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A license with this portal id already exists")
		}
	}

	if err := s.repo.Insert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Get retrieves a license by its hex id
func (s *Service) Get(ctx context.Context, id string) (*license.License, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

// List retrieves licenses matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]license.License, int64, error) {
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

// ListByCustomer retrieves every license attached to a customer
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]license.License, error) {
	oid, err := parseID(customerID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByCustomer(ctx, oid)
}

// Update applies the changed fields
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*license.License, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	l, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	licenseType := l.LicenseType
	status := l.Status
	portalID := l.PortalID
	if input.LicenseType != nil {
		licenseType = *input.LicenseType
	}
	if input.Status != nil {
		status = license.Status(*input.Status)
	}
	if input.PortalID != nil {
		portalID = *input.PortalID
	}

	// Revalidate through the constructor so update and create accept the
	// same value sets.
	validated, err := license.New(l.CustomerID, licenseType, status, portalID)
	if err != nil {
		return nil, err
	}
	l.LicenseType = validated.LicenseType
	l.Status = validated.Status
	l.PortalID = validated.PortalID
	l.UpdatedAt = validated.UpdatedAt

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes a license
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, oid)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, shared.ErrInvalidIdentifier
	}
	return oid, nil
}
