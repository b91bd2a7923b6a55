package handler

import (
	"net/http"

	messageapp "github.com/licsync/backend/internal/application/message"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler handles the portal webhook endpoints. These are not behind
// JWT auth; the verify token is the only credential the portal presents.
type WebhookHandler struct {
	BaseHandler
	messageService *messageapp.Service
	verifyToken    string
	logger         *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(messageService *messageapp.Service, verifyToken string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		messageService: messageService,
		verifyToken:    verifyToken,
		logger:         logger,
	}
}

// Verify godoc
// @ID           verifyWebhook
// @Summary      Webhook verification handshake
// @Description  Echo the challenge when the subscribe mode and verify token match
// @Tags         webhook
// @Produce      plain
// @Param        hub.mode query string true "Subscription mode" Enums(subscribe)
// @Param        hub.verify_token query string true "Verify token"
// @Param        hub.challenge query string true "Challenge to echo"
// @Success      200 {string} string
// @Failure      403 {object} ErrorResponse
// @Router       /webhook [get]
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.verifyToken {
		h.logger.Warn("webhook verification rejected",
			zap.String("mode", mode),
			zap.String("ip", c.ClientIP()),
		)
		h.Forbidden(c, "Webhook verification failed")
		return
	}

	c.String(http.StatusOK, challenge)
}

// LicenseCreatedRequest represents the portal's license-created notification
// @Description Webhook payload announcing a license issued on the portal
type LicenseCreatedRequest struct {
	PortalID      string `json:"portal_id" binding:"required,max=100"`
	LicenseType   string `json:"license_type" binding:"required,max=100"`
	CustomerPhone string `json:"customer_phone" binding:"max=50"`
	CustomerEmail string `json:"customer_email" binding:"omitempty,email,max=200"`
}

// LicenseCreated godoc
// @ID           webhookLicenseCreated
// @Summary      Handle a license-created event
// @Description  Upsert the license by portal id, match the customer by phone then email, and send the welcome template
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Param        request body LicenseCreatedRequest true "License created event"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /webhook/license-created [post]
func (h *WebhookHandler) LicenseCreated(c *gin.Context) {
	var req LicenseCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	err := h.messageService.HandleLicenseCreated(c.Request.Context(), messageapp.LicenseCreatedEvent{
		PortalID:      req.PortalID,
		LicenseType:   req.LicenseType,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"received": true})
}
