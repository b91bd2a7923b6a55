package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/licsync/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects oversized payloads before a handler reads them. CSV
// imports are the largest expected bodies; the limit comes from the HTTP
// config. Requests without a Content-Length header are still capped by the
// MaxBytesReader wrap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "Request body exceeds the maximum allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
