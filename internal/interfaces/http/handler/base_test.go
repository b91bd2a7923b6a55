package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/licsync/backend/internal/domain/shared"
	"github.com/licsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID_FromContext(t *testing.T) {
	c, _ := newTestContext()
	c.Set(RequestIDKey, "ctx-id")
	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestGetRequestID_FromHeader(t *testing.T) {
	c, _ := newTestContext()
	c.Request.Header.Set("X-Request-ID", "header-id")
	assert.Equal(t, "header-id", getRequestID(c))
}

func TestGetRequestID_ContextWinsOverHeader(t *testing.T) {
	c, _ := newTestContext()
	c.Set(RequestIDKey, "ctx-id")
	c.Request.Header.Set("X-Request-ID", "header-id")
	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestGetUsername_Default(t *testing.T) {
	c, _ := newTestContext()
	assert.Equal(t, "system", getUsername(c))
}

func TestSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, gin.H{"name": "test"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Created(c, gin.H{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestNoContent(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.NoContent(c)
	// gin's test context defers the status write until a body is written,
	// so flush it explicitly before inspecting the recorder.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.SuccessWithMeta(c, []string{"a", "b"}, 42, 2, 10)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(42), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 5, resp.Meta.TotalPages)
}

func TestHandleDomainError_MapsCodes(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"already exists", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"invalid identifier", shared.ErrInvalidIdentifier, http.StatusBadRequest, dto.ErrCodeInvalidIdentifier},
		{"company not eligible", shared.ErrCompanyNotEligible, http.StatusUnprocessableEntity, dto.ErrCodeCompanyNotEligible},
		{"already linked", shared.ErrAlreadyLinked, http.StatusConflict, dto.ErrCodeAlreadyLinked},
		{"nothing to unlink", shared.ErrNothingToUnlink, http.StatusUnprocessableEntity, dto.ErrCodeNothingToUnlink},
		{"constructor code folds to invalid input", shared.NewDomainError("INVALID_NAME", "bad name"), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestHandleError_NilIsNoop(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

func TestHandleError_WrappedDomainError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	wrapped := fmt.Errorf("load company: %w", shared.NewDomainError("NOT_FOUND", "Company not found"))
	h.HandleError(c, wrapped)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Company not found", resp.Error.Message)
}

func TestErrorWithCode_CarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set(RequestIDKey, "req-42")

	h.ErrorWithCode(c, dto.ErrCodeUnauthorized, "Authentication required")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-42", resp.Error.RequestID)
}

func TestValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.ValidationError(c, []dto.ValidationDetail{{Field: "name", Message: "required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "name", resp.Error.Details[0].Field)
}
