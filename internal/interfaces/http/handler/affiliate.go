package handler

import (
	"time"

	affiliateapp "github.com/licsync/backend/internal/application/affiliate"
	"github.com/licsync/backend/internal/domain/affiliate"
	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AffiliateHandler handles one affiliate collection's API endpoints. The
// three collections (customers, indicadores, parceiros) share the same
// behavior, so one handler type serves all of them.
type AffiliateHandler struct {
	BaseHandler
	affiliateService *affiliateapp.Service
}

// NewAffiliateHandler creates an AffiliateHandler over one collection's service
func NewAffiliateHandler(affiliateService *affiliateapp.Service) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateService: affiliateService,
	}
}

// CreateAffiliateRequest represents a request to create an affiliate
// @Description Request body for creating an affiliate
type CreateAffiliateRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=200" example:"Maria Souza"`
	Phone     string   `json:"phone" binding:"max=50" example:"5511999990000"`
	Email     string   `json:"email" binding:"omitempty,email,max=200"`
	Companies []string `json:"companies" binding:"max=50"`
	Status    string   `json:"status" binding:"max=50"`
	PortalID  string   `json:"portal_id" binding:"max=100"`
	Tipo      string   `json:"tipo" binding:"max=100"`
	Comissao  string   `json:"comissao" binding:"max=100"`
}

// UpdateAffiliateRequest represents a request to update an affiliate
// @Description Request body for updating an affiliate
type UpdateAffiliateRequest struct {
	Name      *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Phone     *string   `json:"phone" binding:"omitempty,max=50"`
	Email     *string   `json:"email" binding:"omitempty,email,max=200"`
	Companies *[]string `json:"companies" binding:"omitempty,max=50"`
	Status    *string   `json:"status" binding:"omitempty,max=50"`
	PortalID  *string   `json:"portal_id" binding:"omitempty,max=100"`
	Tipo      *string   `json:"tipo" binding:"omitempty,max=100"`
	Comissao  *string   `json:"comissao" binding:"omitempty,max=100"`
}

// LinkCompanyRequest represents a request to link a company to an affiliate
// @Description Request body for linking a company by name
type LinkCompanyRequest struct {
	Company string `json:"company" binding:"required,min=1,max=200" example:"Acme Ltda"`
}

// AffiliateResponse is the API representation of an affiliate. Company
// references are rendered as views with hex string ids.
type AffiliateResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Phone       string                `json:"phone,omitempty"`
	Email       string                `json:"email,omitempty"`
	Company     []affiliation.RefView `json:"company"`
	LicenseType string                `json:"license_type,omitempty"`
	Status      string                `json:"status,omitempty"`
	PortalID    string                `json:"portal_id,omitempty"`
	Tipo        string                `json:"tipo,omitempty"`
	Comissao    string                `json:"comissao,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ReferencesResponse carries an affiliate's reference array after a link or
// unlink mutation.
type ReferencesResponse struct {
	Company []affiliation.RefView `json:"company"`
}

func toAffiliateResponse(a *affiliate.Affiliate) AffiliateResponse {
	return AffiliateResponse{
		ID:          a.ID.Hex(),
		Name:        a.Name,
		Phone:       a.Phone,
		Email:       a.Email,
		Company:     affiliation.ViewsFrom(a.Company),
		LicenseType: a.LicenseType,
		Status:      a.Status,
		PortalID:    a.PortalID,
		Tipo:        a.Tipo,
		Comissao:    a.Comissao,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toAffiliateResponses(items []affiliate.Affiliate) []AffiliateResponse {
	responses := make([]AffiliateResponse, 0, len(items))
	for i := range items {
		responses = append(responses, toAffiliateResponse(&items[i]))
	}
	return responses
}

// Create godoc
// @ID           createAffiliate
// @Summary      Create an affiliate
// @Description  Create an affiliate; supplied company names are resolved into embedded references with the first one active
// @Tags         affiliates
// @Accept       json
// @Produce      json
// @Param        request body CreateAffiliateRequest true "Affiliate creation request"
// @Success      201 {object} APIResponse[AffiliateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /{collection} [post]
func (h *AffiliateHandler) Create(c *gin.Context) {
	var req CreateAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.affiliateService.Create(c.Request.Context(), affiliateapp.CreateInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		CompanyNames: req.Companies,
		Status:       req.Status,
		PortalID:     req.PortalID,
		Tipo:         req.Tipo,
		Comissao:     req.Comissao,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toAffiliateResponse(created))
}

// GetByID godoc
// @ID           getAffiliateById
// @Summary      Get affiliate by ID
// @Tags         affiliates
// @Produce      json
// @Param        id path string true "Affiliate ID"
// @Success      200 {object} APIResponse[AffiliateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /{collection}/{id} [get]
func (h *AffiliateHandler) GetByID(c *gin.Context) {
	found, err := h.affiliateService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toAffiliateResponse(found))
}

// List godoc
// @ID           listAffiliates
// @Summary      List affiliates
// @Description  Retrieve a paginated list with optional filtering by status or cached license type
// @Tags         affiliates
// @Produce      json
// @Param        search query string false "Search term (name, phone, email)"
// @Param        status query string false "Affiliate status"
// @Param        license_type query string false "Cached license type"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]AffiliateResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /{collection} [get]
func (h *AffiliateHandler) List(c *gin.Context) {
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

	items, total, err := h.affiliateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toAffiliateResponses(items), total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateAffiliate
// @Summary      Update an affiliate
// @Description  Update affiliate fields; a supplied company list replaces the whole reference array
// @Tags         affiliates
// @Accept       json
// @Produce      json
// @Param        id path string true "Affiliate ID"
// @Param        request body UpdateAffiliateRequest true "Affiliate update request"
// @Success      200 {object} APIResponse[AffiliateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /{collection}/{id} [put]
func (h *AffiliateHandler) Update(c *gin.Context) {
	var req UpdateAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.affiliateService.Update(c.Request.Context(), c.Param("id"), affiliateapp.UpdateInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		CompanyNames: req.Companies,
		Status:       req.Status,
		PortalID:     req.PortalID,
		Tipo:         req.Tipo,
		Comissao:     req.Comissao,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAffiliateResponse(updated))
}

// Delete godoc
// @ID           deleteAffiliate
// @Summary      Delete an affiliate
// @Tags         affiliates
// @Produce      json
// @Param        id path string true "Affiliate ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /{collection}/{id} [delete]
func (h *AffiliateHandler) Delete(c *gin.Context) {
	if err := h.affiliateService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Link godoc
// @ID           linkAffiliateCompany
// @Summary      Link a company to an affiliate
// @Description  Attach the named company as the affiliate's current company, demoting any previous link to history
// @Tags         affiliates
// @Accept       json
// @Produce      json
// @Param        id path string true "Affiliate ID"
// @Param        request body LinkCompanyRequest true "Company to link"
// @Success      200 {object} APIResponse[ReferencesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /{collection}/{id}/link [post]
func (h *AffiliateHandler) Link(c *gin.Context) {
	var req LinkCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	refs, err := h.affiliateService.Link(c.Request.Context(), c.Param("id"), req.Company)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ReferencesResponse{Company: affiliation.ViewsFrom(refs)})
}

// Unlink godoc
// @ID           unlinkAffiliateCompany
// @Summary      Unlink the affiliate's current company
// @Description  Remove the active company reference, keeping inactive history entries
// @Tags         affiliates
// @Produce      json
// @Param        id path string true "Affiliate ID"
// @Success      200 {object} APIResponse[ReferencesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /{collection}/{id}/unlink [post]
func (h *AffiliateHandler) Unlink(c *gin.Context) {
	refs, err := h.affiliateService.Unlink(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ReferencesResponse{Company: affiliation.ViewsFrom(refs)})
}
