// Package license holds portal license records synchronized through the
// webhook and administrative API.
package license

import (
	"context"
	"time"

	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status represents the lifecycle state of a license
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
)

// License is a portal license attached to a customer
type License struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID  primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	LicenseType string             `bson:"license_type" json:"license_type"`
	Status      Status             `bson:"status" json:"status"`
	PortalID    string             `bson:"portal_id,omitempty" json:"portal_id,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// New creates a license with validated fields
func New(customerID primitive.ObjectID, licenseType string, status Status, portalID string) (*License, error) {
	if customerID.IsZero() {
		return nil, shared.ErrInvalidIdentifier
	}
	if licenseType != "Start" && licenseType != "Hub" {
		return nil, shared.NewDomainError("INVALID_LICENSE_TYPE", "License type must be 'Start' or 'Hub'")
	}
	if status == "" {
		status = StatusActive
	}
	switch status {
	case StatusActive, StatusInactive, StatusCancelled:
	default:
		return nil, shared.NewDomainError("INVALID_STATUS", "License status must be 'active', 'inactive' or 'cancelled'")
	}

	now := time.Now().UTC()
	return &License{
		CustomerID:  customerID,
		LicenseType: licenseType,
		Status:      status,
		PortalID:    portalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Repository defines the persistence contract for licenses
type Repository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*License, error)
	FindByPortalID(ctx context.Context, portalID string) (*License, error)
	FindByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]License, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]License, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Insert(ctx context.Context, l *License) error
	Update(ctx context.Context, l *License) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
