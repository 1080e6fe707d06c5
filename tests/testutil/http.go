// Package testutil provides shared helpers for HTTP-level tests. They
// drive a handler through httptest and unwrap the API response envelope.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// PerformRequest runs one request through the handler and returns the
// recorder. A non-nil body is JSON-encoded.
func PerformRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// JSONBody parses the recorded response body as a JSON object
func JSONBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err, "Failed to parse JSON response: %s", w.Body.String())
	return body
}

// AssertSuccess asserts a 200 success envelope and returns its data field
func AssertSuccess(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()

	require.Equal(t, http.StatusOK, w.Code, "unexpected status, body: %s", w.Body.String())
	body := JSONBody(t, w)
	assert.Equal(t, true, body["success"], "expected success envelope")
	assert.Nil(t, body["error"], "expected no error in envelope")
	return body["data"]
}

// AssertErrorCode asserts an error envelope with the given status and code
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()

	require.Equal(t, wantStatus, w.Code, "unexpected status, body: %s", w.Body.String())
	body := JSONBody(t, w)
	assert.Equal(t, false, body["success"], "expected error envelope")

	errInfo, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error object in envelope, body: %s", w.Body.String())
	assert.Equal(t, wantCode, errInfo["code"])
	assert.NotEmpty(t, errInfo["message"])
}
