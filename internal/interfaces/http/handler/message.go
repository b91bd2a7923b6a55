package handler

import (
	messageapp "github.com/licsync/backend/internal/application/message"
	"github.com/licsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// MessageHandler handles WhatsApp message API endpoints
type MessageHandler struct {
	BaseHandler
	messageService *messageapp.Service
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *messageapp.Service) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// SendMessageRequest represents a request to send one WhatsApp message
// @Description Request body for sending a message; template messages need a template name, text messages a content body
type SendMessageRequest struct {
	Phone        string   `json:"phone" binding:"required,min=8,max=50" example:"5511999990000"`
	MessageType  string   `json:"message_type" binding:"omitempty,oneof=text hsm" example:"hsm"`
	Content      string   `json:"content" binding:"max=4096"`
	TemplateName string   `json:"template_name" binding:"max=200" example:"license_welcome"`
	Params       []string `json:"params" binding:"max=20"`
}

// BroadcastRequest represents a request to message a license type segment
// @Description Request body for broadcasting to every customer with the given cached license type
type BroadcastRequest struct {
	LicenseType  string   `json:"license_type" binding:"required,max=100" example:"Start"`
	MessageType  string   `json:"message_type" binding:"omitempty,oneof=text hsm"`
	Content      string   `json:"content" binding:"max=4096"`
	TemplateName string   `json:"template_name" binding:"max=200"`
	Params       []string `json:"params" binding:"max=20"`
}

// Send godoc
// @ID           sendMessage
// @Summary      Send a WhatsApp message
// @Description  Send one message and record the attempt in the message log
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body SendMessageRequest true "Message to send"
// @Success      201 {object} APIResponse[messaging.Message]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sent, err := h.messageService.Send(c.Request.Context(), messageapp.SendInput{
		Phone:        req.Phone,
		Content:      req.Content,
		MessageType:  req.MessageType,
		TemplateName: req.TemplateName,
		Params:       req.Params,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, sent)
}

// Broadcast godoc
// @ID           broadcastMessage
// @Summary      Broadcast to a license type segment
// @Description  Send the same message to every customer whose cached license type matches; per-recipient failures are counted, not fatal
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body BroadcastRequest true "Broadcast request"
// @Success      200 {object} APIResponse[messageapp.BroadcastResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /messages/broadcast [post]
func (h *MessageHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.messageService.Broadcast(c.Request.Context(), messageapp.BroadcastInput{
		LicenseType:  req.LicenseType,
		Content:      req.Content,
		TemplateName: req.TemplateName,
		Params:       req.Params,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @ID           getMessageById
// @Summary      Get a logged message by ID
// @Tags         messages
// @Produce      json
// @Param        id path string true "Message ID"
// @Success      200 {object} APIResponse[messaging.Message]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /messages/{id} [get]
func (h *MessageHandler) GetByID(c *gin.Context) {
	found, err := h.messageService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, found)
}

// List godoc
// @ID           listMessages
// @Summary      List logged messages
// @Tags         messages
// @Produce      json
// @Param        status query string false "Delivery status" Enums(pending, sent, failed)
// @Param        phone query string false "Recipient phone"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]messaging.Message]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := listFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if phone := c.Query("phone"); phone != "" {
		filter.Filters["phone"] = phone
	}

	items, total, err := h.messageService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
