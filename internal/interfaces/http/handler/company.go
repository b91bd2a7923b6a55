package handler

import (
	"strconv"
	"time"

	companyapp "github.com/licsync/backend/internal/application/company"
	"github.com/licsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CompanyHandler handles company API endpoints
type CompanyHandler struct {
	BaseHandler
	companyService *companyapp.Service
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *companyapp.Service) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// CreateCompanyRequest represents a request to create a new company
// @Description Request body for creating a new company
type CreateCompanyRequest struct {
	Name               string     `json:"name" binding:"required,min=1,max=200" example:"Acme Ltda"`
	CNPJ               string     `json:"cnpj" binding:"max=20" example:"12.345.678/0001-90"`
	Status             string     `json:"status" binding:"omitempty,oneof=active suspended negotiating" example:"active"`
	Active             *bool      `json:"active" example:"true"`
	Linked             *bool      `json:"linked" example:"true"`
	LicenseType        string     `json:"license_type" binding:"omitempty,oneof=Start Hub" example:"Start"`
	LicenseTimeout     int        `json:"license_timeout" binding:"omitempty,min=0" example:"30"`
	ContractExpiration *time.Time `json:"contract_expiration"`
	EmployeeCount      int        `json:"employee_count" binding:"omitempty,min=0" example:"25"`
	PortalID           string     `json:"portal_id" binding:"max=100"`
	Notes              string     `json:"notes" binding:"max=2000"`
}

// UpdateCompanyRequest represents a request to update a company
// @Description Request body for updating a company
type UpdateCompanyRequest struct {
	Name               *string    `json:"name" binding:"omitempty,min=1,max=200"`
	CNPJ               *string    `json:"cnpj" binding:"omitempty,max=20"`
	Status             *string    `json:"status" binding:"omitempty,oneof=active suspended negotiating"`
	Active             *bool      `json:"active"`
	Linked             *bool      `json:"linked"`
	LicenseType        *string    `json:"license_type" binding:"omitempty,oneof=Start Hub"`
	LicenseTimeout     *int       `json:"license_timeout" binding:"omitempty,min=0"`
	ContractExpiration *time.Time `json:"contract_expiration"`
	EmployeeCount      *int       `json:"employee_count" binding:"omitempty,min=0"`
	PortalID           *string    `json:"portal_id" binding:"omitempty,max=100"`
	Notes              *string    `json:"notes" binding:"omitempty,max=2000"`
}

// RenovateCompanyRequest represents one contract renovation record
// @Description Request body for recording a contract renovation
type RenovateCompanyRequest struct {
	Date       time.Time `json:"date" binding:"required"`
	Expiration time.Time `json:"expiration" binding:"required"`
}

// Create godoc
// @ID           createCompany
// @Summary      Create a new company
// @Description  Create a new company with a unique name
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body CreateCompanyRequest true "Company creation request"
// @Success      201 {object} APIResponse[company.Company]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.companyService.Create(c.Request.Context(), getUsername(c), companyapp.CreateInput{
		Name:               req.Name,
		CNPJ:               req.CNPJ,
		Status:             req.Status,
		Active:             req.Active,
		Linked:             req.Linked,
		LicenseType:        req.LicenseType,
		LicenseTimeout:     req.LicenseTimeout,
		ContractExpiration: req.ContractExpiration,
		EmployeeCount:      req.EmployeeCount,
		PortalID:           req.PortalID,
		Notes:              req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getCompanyById
// @Summary      Get company by ID
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} APIResponse[company.Company]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id} [get]
func (h *CompanyHandler) GetByID(c *gin.Context) {
	found, err := h.companyService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, found)
}

// List godoc
// @ID           listCompanies
// @Summary      List companies
// @Description  Retrieve a paginated list of companies with optional filtering
// @Tags         companies
// @Produce      json
// @Param        search query string false "Search term (name, cnpj, portal id)"
// @Param        status query string false "Company status" Enums(active, suspended, negotiating)
// @Param        license_type query string false "License type" Enums(Start, Hub)
// @Param        active query bool false "Active flag"
// @Param        linked query bool false "Linked flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]company.Company]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := listFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if licenseType := c.Query("license_type"); licenseType != "" {
		filter.Filters["license_type"] = licenseType
	}
	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			h.BadRequest(c, "Invalid active flag")
			return
		}
		filter.Filters["active"] = parsed
	}
	if linked := c.Query("linked"); linked != "" {
		parsed, err := strconv.ParseBool(linked)
		if err != nil {
			h.BadRequest(c, "Invalid linked flag")
			return
		}
		filter.Filters["linked"] = parsed
	}

	companies, total, err := h.companyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, companies, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateCompany
// @Summary      Update a company
// @Description  Update company fields; renames and license or status changes propagate to every embedded affiliate reference
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID"
// @Param        request body UpdateCompanyRequest true "Company update request"
// @Success      200 {object} APIResponse[company.Company]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.companyService.Update(c.Request.Context(), getUsername(c), c.Param("id"), companyapp.UpdateInput{
		Name:               req.Name,
		CNPJ:               req.CNPJ,
		Status:             req.Status,
		Active:             req.Active,
		Linked:             req.Linked,
		LicenseType:        req.LicenseType,
		LicenseTimeout:     req.LicenseTimeout,
		ContractExpiration: req.ContractExpiration,
		EmployeeCount:      req.EmployeeCount,
		PortalID:           req.PortalID,
		Notes:              req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// Delete godoc
// @ID           deleteCompany
// @Summary      Delete a company
// @Description  Remove the company and strip every embedded reference to it from the affiliate collections
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.companyService.Delete(c.Request.Context(), getUsername(c), c.Param("id")); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Renovate godoc
// @ID           renovateCompany
// @Summary      Record a contract renovation
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID"
// @Param        request body RenovateCompanyRequest true "Renovation record"
// @Success      200 {object} APIResponse[company.Company]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id}/renovations [post]
func (h *CompanyHandler) Renovate(c *gin.Context) {
	var req RenovateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.companyService.Renovate(c.Request.Context(), getUsername(c), c.Param("id"), companyapp.RenovateInput{
		Date:       req.Date,
		Expiration: req.Expiration,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// ExpireRenovation godoc
// @ID           expireCompanyRenovation
// @Summary      Expire the latest contract renovation
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} APIResponse[company.Company]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id}/renovations/expire [post]
func (h *CompanyHandler) ExpireRenovation(c *gin.Context) {
	updated, err := h.companyService.ExpireLatestRenovation(c.Request.Context(), getUsername(c), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, updated)
}

// History godoc
// @ID           getCompanyHistory
// @Summary      Get company audit history
// @Description  Retrieve the most recent audit entries for a company
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Param        limit query int false "Maximum entries" default(50)
// @Success      200 {object} APIResponse[[]company.HistoryEntry]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id}/history [get]
func (h *CompanyHandler) History(c *gin.Context) {
	limit := int64(0)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.companyService.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, entries)
}
