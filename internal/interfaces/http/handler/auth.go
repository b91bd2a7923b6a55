package handler

import (
	"github.com/licsync/backend/internal/infrastructure/auth"
	"github.com/licsync/backend/internal/infrastructure/config"
	"github.com/licsync/backend/internal/interfaces/http/dto"
	"github.com/licsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related HTTP requests. The system has a
// single admin identity held in configuration; there is no user store.
type AuthHandler struct {
	BaseHandler
	jwtService    *auth.JWTService
	adminUser     string
	adminPassword string
	logger        *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtService *auth.JWTService, cfg config.JWTConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtService:    jwtService,
		adminUser:     cfg.AdminUser,
		adminPassword: cfg.AdminPassword,
		logger:        logger,
	}
}

// Login godoc
// @Summary      Admin login
// @Description  Authenticate with the admin credentials and receive an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if req.Username != h.adminUser || !auth.VerifyPassword(h.adminPassword, req.Password) {
		h.logger.Warn("login rejected",
			zap.String("username", req.Username),
			zap.String("ip", c.ClientIP()),
		)
		h.ErrorWithCode(c, dto.ErrCodeUnauthorized, "Invalid username or password")
		return
	}

	token, err := h.jwtService.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		h.InternalError(c, "Could not issue token")
		return
	}

	h.Success(c, LoginResponse{
		Token: TokenResponse{
			AccessToken: token.AccessToken,
			ExpiresAt:   token.ExpiresAt,
			TokenType:   token.TokenType,
		},
		Username: req.Username,
	})
}

// Me godoc
// @Summary      Current identity
// @Description  Return the identity carried by the bearer token
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[MeResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	username := middleware.GetJWTUsername(c)
	if username == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, MeResponse{Username: username})
}
