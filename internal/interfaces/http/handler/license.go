package handler

import (
	licenseapp "github.com/licsync/backend/internal/application/license"
	"github.com/licsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LicenseHandler handles license API endpoints
type LicenseHandler struct {
	BaseHandler
	licenseService *licenseapp.Service
}

// NewLicenseHandler creates a new LicenseHandler
func NewLicenseHandler(licenseService *licenseapp.Service) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// CreateLicenseRequest represents a request to create a license
// @Description Request body for creating a license
type CreateLicenseRequest struct {
	CustomerID  string `json:"customer_id" binding:"required" example:"64b1f0c2a8d3e45f6a7b8c9d"`
	LicenseType string `json:"license_type" binding:"required,max=100" example:"Start"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive cancelled" example:"active"`
	PortalID    string `json:"portal_id" binding:"max=100"`
}

// UpdateLicenseRequest represents a request to update a license
// @Description Request body for updating a license
type UpdateLicenseRequest struct {
	LicenseType *string `json:"license_type" binding:"omitempty,max=100"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive cancelled"`
	PortalID    *string `json:"portal_id" binding:"omitempty,max=100"`
}

// Create godoc
// @ID           createLicense
// @Summary      Create a license
// @Description  Create a license for a customer; the portal id must be unique when supplied
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Param        request body CreateLicenseRequest true "License creation request"
// @Success      201 {object} APIResponse[license.License]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /licenses [post]
func (h *LicenseHandler) Create(c *gin.Context) {
	var req CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.licenseService.Create(c.Request.Context(), licenseapp.CreateInput{
		CustomerID:  req.CustomerID,
		LicenseType: req.LicenseType,
		Status:      req.Status,
		PortalID:    req.PortalID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, created)
}

// GetByID godoc
// @ID           getLicenseById
// @Summary      Get license by ID
// @Tags         licenses
// @Produce      json
// @Param        id path string true "License ID"
// @Success      200 {object} APIResponse[license.License]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /licenses/{id} [get]
func (h *LicenseHandler) GetByID(c *gin.Context) {
	found, err := h.licenseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, found)
}

// List godoc
// @ID           listLicenses
// @Summary      List licenses
// @Description  Retrieve a paginated list of licenses; customer_id narrows to one customer's licenses
// @Tags         licenses
// @Produce      json
// @Param        customer_id query string false "Customer ID"
// @Param        status query string false "License status" Enums(active, inactive, cancelled)
// @Param        license_type query string false "License type"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]license.License]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /licenses [get]
func (h *LicenseHandler) List(c *gin.Context) {
	if customerID := c.Query("customer_id"); customerID != "" {
		items, err := h.licenseService.ListByCustomer(c.Request.Context(), customerID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, items)
		return
	}

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

	items, total, err := h.licenseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateLicense
// @Summary      Update a license
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Param        id path string true "License ID"
// @Param        request body UpdateLicenseRequest true "License update request"
// @Success      200 {object} APIResponse[license.License]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /licenses/{id} [put]
func (h *LicenseHandler) Update(c *gin.Context) {
	var req UpdateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.licenseService.Update(c.Request.Context(), c.Param("id"), licenseapp.UpdateInput{
		LicenseType: req.LicenseType,
		Status:      req.Status,
		PortalID:    req.PortalID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, updated)
}

// Delete godoc
// @ID           deleteLicense
// @Summary      Delete a license
// @Tags         licenses
// @Produce      json
// @Param        id path string true "License ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /licenses/{id} [delete]
func (h *LicenseHandler) Delete(c *gin.Context) {
	if err := h.licenseService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
