package dto

import csvimport "github.com/licsync/backend/internal/infrastructure/import"

// CustomerImportResponse represents the response from a customer CSV import
type CustomerImportResponse struct {
	ImportID     string               `json:"import_id"`
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}
