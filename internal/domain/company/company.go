// Package company holds the canonical company aggregate. Companies are the
// source of truth for the name, status, and license type that affiliate
// documents embed as denormalized references.
package company

import (
	"strings"
	"time"

	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status represents a company's commercial status
type Status string

const (
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
	StatusNegotiating Status = "negotiating"
)

// LicenseType represents the license tier a company sells
type LicenseType string

const (
	LicenseTypeStart LicenseType = "Start"
	LicenseTypeHub   LicenseType = "Hub"
)

// ContractRenovation records one contract renewal cycle
type ContractRenovation struct {
	Date       time.Time `bson:"date" json:"date"`
	Expiration time.Time `bson:"expiration" json:"expiration"`
	Expired    bool      `bson:"expired" json:"expired"`
}

// Company is the canonical entity affiliates reference. Name is unique by
// convention only; there is no database constraint enforcing it.
type Company struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name               string               `bson:"name" json:"name"`
	CNPJ               string               `bson:"cnpj,omitempty" json:"cnpj,omitempty"`
	Status             Status               `bson:"status" json:"status"`
	Active             bool                 `bson:"active" json:"active"` // legacy flag, still authoritative
	Linked             bool                 `bson:"linked" json:"linked"`
	LicenseType        LicenseType          `bson:"license_type,omitempty" json:"license_type,omitempty"`
	LicenseTimeout     int                  `bson:"license_timeout,omitempty" json:"license_timeout,omitempty"`
	ContractExpiration *time.Time           `bson:"contract_expiration,omitempty" json:"contract_expiration,omitempty"`
	ContractRenovated  []ContractRenovation `bson:"contract_renovated,omitempty" json:"contract_renovated,omitempty"`
	EmployeeCount      int                  `bson:"employee_count,omitempty" json:"employee_count,omitempty"`
	PortalID           string               `bson:"portal_id,omitempty" json:"portal_id,omitempty"`
	Notes              string               `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updated_at"`
}

// New creates a company with required fields validated
func New(name string, status Status, licenseType LicenseType) (*Company, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if status == "" {
		status = StatusNegotiating
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if licenseType != "" {
		if err := validateLicenseType(licenseType); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &Company{
		Name:        name,
		Status:      status,
		Active:      status == StatusActive,
		LicenseType: licenseType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOperational reports whether the company may be referenced by affiliates:
// the status field must be "active" AND the legacy active flag must be set.
func (c *Company) IsOperational() bool {
	return c.Status == StatusActive && c.Active
}

// Rename changes the company name. Embedded copies in affiliate documents go
// stale until the cascade runs.
func (c *Company) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// SetStatus changes the commercial status
func (c *Company) SetStatus(status Status) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// SetActive toggles the legacy active flag
func (c *Company) SetActive(active bool) {
	c.Active = active
	c.UpdatedAt = time.Now().UTC()
}

// SetLinked toggles the portal-linked flag
func (c *Company) SetLinked(linked bool) {
	c.Linked = linked
	c.UpdatedAt = time.Now().UTC()
}

// SetLicenseType changes the license tier
func (c *Company) SetLicenseType(licenseType LicenseType) error {
	if err := validateLicenseType(licenseType); err != nil {
		return err
	}
	c.LicenseType = licenseType
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Renovate appends a contract renovation record and moves the contract
// expiration forward
func (c *Company) Renovate(date, expiration time.Time) error {
	if !expiration.After(date) {
		return shared.NewDomainError("INVALID_RENOVATION", "Renovation expiration must be after its date")
	}
	c.ContractRenovated = append(c.ContractRenovated, ContractRenovation{
		Date:       date,
		Expiration: expiration,
	})
	c.ContractExpiration = &expiration
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ExpireLatestRenovation marks the most recent renovation record expired
func (c *Company) ExpireLatestRenovation() error {
	if len(c.ContractRenovated) == 0 {
		return shared.NewDomainError("NO_RENOVATIONS", "Company has no contract renovations")
	}
	c.ContractRenovated[len(c.ContractRenovated)-1].Expired = true
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}

func validateStatus(status Status) error {
	switch status {
	case StatusActive, StatusSuspended, StatusNegotiating:
		return nil
	default:
		return shared.NewDomainError("INVALID_STATUS", "Company status must be 'active', 'suspended' or 'negotiating'")
	}
}

func validateLicenseType(licenseType LicenseType) error {
	switch licenseType {
	case LicenseTypeStart, LicenseTypeHub:
		return nil
	default:
		return shared.NewDomainError("INVALID_LICENSE_TYPE", "License type must be 'Start' or 'Hub'")
	}
}
