// Package importer implements bulk affiliate creation from CSV files.
package importer

import (
	"context"
	"io"

	appaffiliate "github.com/licsync/backend/internal/application/affiliate"
	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/domain/company"
	csvimport "github.com/licsync/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Expected CSV columns. Only name and phone are required per row.
const (
	ColumnName     = "name"
	ColumnPhone    = "phone"
	ColumnEmail    = "email"
	ColumnCompany  = "company"
	ColumnPortalID = "portal_id"
)

// Result summarizes one import run. Failed rows are skipped, never rolled
// back: the batch is a partial-failure operation by design.
type Result struct {
	ImportID    string               `json:"import_id"`
	Total       int                  `json:"total"`
	Imported    int                  `json:"imported"`
	Skipped     int                  `json:"skipped"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// Service imports customers in bulk
type Service struct {
	customers *appaffiliate.Service
	resolver  *company.Resolver
	logger    *zap.Logger
}

// NewService creates an import service
func NewService(customers *appaffiliate.Service, resolver *company.Resolver, logger *zap.Logger) *Service {
	return &Service{
		customers: customers,
		resolver:  resolver,
		logger:    logger,
	}
}

// ImportCustomers parses the CSV stream and creates one customer per row.
// Company names are resolved once as a deduplicated batch before the row
// loop; per-row outcomes are identical to resolving each name individually.
// Rows with a missing required field or an unresolvable company are skipped
// and reported, the rest of the batch proceeds.
func (s *Service) ImportCustomers(ctx context.Context, r io.Reader) (*Result, error) {
	parser, err := csvimport.NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.ValidateHeaders([]string{ColumnName, ColumnPhone}); len(missing) > 0 {
		return nil, csvimport.ErrMissingHeader
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := row.Get(ColumnCompany); name != "" {
			names = append(names, name)
		}
	}
	resolved, err := s.resolver.ResolveBatch(ctx, names, true)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ImportID: uuid.New().String(),
		Total:    len(rows),
	}
	errs := csvimport.NewErrorCollection(100)

	for _, row := range rows {
		if row.Get(ColumnName) == "" {
			errs.AddRequiredError(row.LineNumber, ColumnName)
			result.Skipped++
			continue
		}
		if row.Get(ColumnPhone) == "" {
			errs.AddRequiredError(row.LineNumber, ColumnPhone)
			result.Skipped++
			continue
		}

		companyName := row.Get(ColumnCompany)
		var companyNames []string
		if companyName != "" {
			if _, ok := resolved[companyName]; !ok {
				errs.AddReferenceError(row.LineNumber, ColumnCompany, companyName, "company")
				result.Skipped++
				continue
			}
			companyNames = []string{companyName}
		}

		_, err := s.createFromBatch(ctx, row, companyNames, resolved)
		if err != nil {
			errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
			result.Skipped++
			continue
		}
		result.Imported++
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()
	s.logger.Info("customer import finished",
		zap.String("import_id", result.ImportID),
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// createFromBatch builds the customer using references already resolved by
// the batch lookup, so the row loop issues no further company queries.
func (s *Service) createFromBatch(ctx context.Context, row *csvimport.Row, companyNames []string, resolved map[string]affiliation.CompanyRef) (interface{}, error) {
	refs := make([]affiliation.CompanyRef, 0, len(companyNames))
	for _, name := range companyNames {
		refs = append(refs, resolved[name])
	}
	refs = affiliation.ApplyCallerOrder(refs)

	licenseType := ""
	if active, ok := affiliation.ActiveRef(refs); ok {
		licenseType = active.LicenseType
	}

	return s.customers.CreateResolved(ctx, appaffiliate.CreateInput{
		Name:     row.Get(ColumnName),
		Phone:    row.Get(ColumnPhone),
		Email:    row.Get(ColumnEmail),
		PortalID: row.Get(ColumnPortalID),
	}, refs, licenseType)
}
