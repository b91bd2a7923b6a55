package company

import "time"

// CreateInput carries the fields accepted when creating a company
type CreateInput struct {
	Name               string
	CNPJ               string
	Status             string
	Active             *bool
	Linked             *bool
	LicenseType        string
	LicenseTimeout     int
	ContractExpiration *time.Time
	EmployeeCount      int
	PortalID           string
	Notes              string
}

// UpdateInput carries the fields accepted when updating a company.
// Nil pointers mean "leave unchanged".
type UpdateInput struct {
	Name               *string
	CNPJ               *string
	Status             *string
	Active             *bool
	Linked             *bool
	LicenseType        *string
	LicenseTimeout     *int
	ContractExpiration *time.Time
	EmployeeCount      *int
	PortalID           *string
	Notes              *string
}

// RenovateInput carries one contract renovation record
type RenovateInput struct {
	Date       time.Time
	Expiration time.Time
}
