package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailWithDetailsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": []string{"age"}}, "req-1")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "req-1", body["requestId"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "validation_error", errBody["code"])
	assert.NotNil(t, errBody["details"])
	_, hasData := body["data"]
	assert.False(t, hasData)
}

func TestNewPageNeverEncodesNullItems(t *testing.T) {
	page := NewPage[string](nil, 0, 20, 0)
	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"total":0,"limit":20,"offset":0}`, string(raw))
}

func TestBinarySetsAttachmentHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Binary(rec, "application/pdf", "payslip.pdf", []byte("%PDF"))

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="payslip.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rec.Body.String())
}
