package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linkPayload struct {
	CompanyName string `json:"company_name" binding:"required"`
}

type companyPayload struct {
	Name        string `json:"name" binding:"required,min=2"`
	LicenseType string `json:"license_type" binding:"required,oneof=Start Hub"`
	Email       string `json:"email" binding:"omitempty,email"`
}

func bindJSON(t *testing.T, body string, out interface{}) error {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/customers/abc/link", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(out)
}

func TestSetupValidator_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	var payload linkPayload
	err := bindJSON(t, `{}`, &payload)
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-1")

	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "company_name", resp.Error.Details[0].Field,
		"errors name the wire field, not the Go field")
}

func TestFormatValidationErrors_Messages(t *testing.T) {
	SetupValidator()

	var payload companyPayload
	err := bindJSON(t, `{"name":"A","license_type":"Enterprise","email":"not-an-email"}`, &payload)
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-2")

	require.NotNil(t, resp.Error)
	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at least 2 characters", messages["name"])
	assert.Equal(t, "Must be one of: Start Hub", messages["license_type"])
	assert.Equal(t, "Invalid email format", messages["email"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-3")

	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Error.Details)
}

func TestHandleValidationError_WritesBadRequest(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/api/v1/companies", func(c *gin.Context) {
		var payload companyPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies", strings.NewReader(`{"license_type":"Start"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_VALIDATION")
	assert.Contains(t, rec.Body.String(), "name")
}
