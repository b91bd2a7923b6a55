package handler

import (
	importerapp "github.com/licsync/backend/internal/application/importer"
	"github.com/licsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// maxImportFileSize caps the uploaded CSV at 10 MB
const maxImportFileSize = 10 << 20

// ImportHandler handles bulk customer import from CSV uploads
type ImportHandler struct {
	BaseHandler
	importService *importerapp.Service
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importerapp.Service) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// ImportCustomers godoc
// @ID           importCustomers
// @Summary      Import customers from CSV
// @Description  Upload a CSV file and create one customer per row; rows with a missing required field or an unresolvable company are skipped and reported
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file with name, phone, email, company, portal_id columns"
// @Success      200 {object} APIResponse[dto.CustomerImportResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /import/customers [post]
func (h *ImportHandler) ImportCustomers(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file upload is required")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.BadRequest(c, "File exceeds the 10MB import limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.importService.ImportCustomers(c.Request.Context(), file)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, dto.CustomerImportResponse{
		ImportID:     result.ImportID,
		TotalRows:    result.Total,
		ImportedRows: result.Imported,
		SkippedRows:  result.Skipped,
		Errors:       result.Errors,
		IsTruncated:  result.IsTruncated,
		TotalErrors:  result.TotalErrors,
	})
}
