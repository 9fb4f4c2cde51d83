package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestFromError(t *testing.T) {
	c, w := newContext()

	response.FromError(c, apperror.ErrUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Ok)
	assert.Equal(t, apperror.CodeUnauthorized, body.Error.(map[string]any)["code"])
}

func TestSuccess_WithMeta(t *testing.T) {
	c, w := newContext()

	response.Success(c, http.StatusOK, []string{"a", "b"}, response.NewListMeta(2))

	assert.JSONEq(t, `{"ok":true,"data":["a","b"],"meta":{"total":2}}`, w.Body.String())
}

func TestAttachment(t *testing.T) {
	c, w := newContext()

	response.Attachment(c, "application/pdf", "salary-slip-E1-2025-03.pdf", []byte("%PDF-1.3"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=salary-slip-E1-2025-03.pdf`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestAttachment_NonASCIIFilename(t *testing.T) {
	c, w := newContext()

	response.Attachment(c, "application/pdf", "salary-slip-É1-2025-03.pdf", []byte("%PDF-1.3"))

	assert.Equal(t, `attachment; filename*=utf-8''salary-slip-%C3%891-2025-03.pdf`, w.Header().Get("Content-Disposition"))
}

func TestAttachment_QuotedFilename(t *testing.T) {
	c, w := newContext()

	response.Attachment(c, "text/csv", "march report.csv", []byte("a,b"))

	assert.Equal(t, `attachment; filename="march report.csv"`, w.Header().Get("Content-Disposition"))
}
