package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func verifyRequest(h *WebhookHandler, params url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/webhook?"+params.Encode(), nil)
	h.Verify(c)
	return w
}

func TestWebhookVerify_EchoesChallenge(t *testing.T) {
	h := NewWebhookHandler(nil, "portal-secret", zap.NewNop())

	w := verifyRequest(h, url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {"portal-secret"},
		"hub.challenge":    {"challenge-123"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "challenge-123", w.Body.String())
}

func TestWebhookVerify_WrongToken(t *testing.T) {
	h := NewWebhookHandler(nil, "portal-secret", zap.NewNop())

	w := verifyRequest(h, url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {"guess"},
		"hub.challenge":    {"challenge-123"},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookVerify_WrongMode(t *testing.T) {
	h := NewWebhookHandler(nil, "portal-secret", zap.NewNop())

	w := verifyRequest(h, url.Values{
		"hub.mode":         {"unsubscribe"},
		"hub.verify_token": {"portal-secret"},
		"hub.challenge":    {"challenge-123"},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookVerify_EmptyToken(t *testing.T) {
	// An unset verify token must never validate an empty query token.
	h := NewWebhookHandler(nil, "", zap.NewNop())

	w := verifyRequest(h, url.Values{
		"hub.mode":      {"subscribe"},
		"hub.challenge": {"challenge-123"},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookLicenseCreated_InvalidBody(t *testing.T) {
	h := NewWebhookHandler(nil, "portal-secret", zap.NewNop())

	w := postJSON(t, h.LicenseCreated, gin.H{"license_type": "Start"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
