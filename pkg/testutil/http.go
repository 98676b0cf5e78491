// Package testutil holds helpers shared by handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewJSONRequest marshals body (when non-nil) into a JSON request.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err, "marshal request body")
	}
	return jsonRequest(httptest.NewRequest(method, path, bytes.NewReader(payload)))
}

// NewRequestWithBody sends raw as-is, for malformed payload cases.
func NewRequestWithBody(method, path, raw string) *http.Request {
	return jsonRequest(httptest.NewRequest(method, path, strings.NewReader(raw)))
}

func jsonRequest(req *http.Request) *http.Request {
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest serves req on h and returns what was written.
func DoRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func UnmarshalResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) *T {
	t.Helper()
	out := new(T)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "decode response: %s", rec.Body.String())
	return out
}

// ErrorBody is the error envelope written by httputil.
type ErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             uint32 `json:"code"`
}

// AssertStatusAndError checks the status, the error slug and the numeric
// registry code. Code is 0 for transport errors.
func AssertStatusAndError(t *testing.T, rec *httptest.ResponseRecorder, status int, slug string, code uint32) {
	t.Helper()
	assert.Equal(t, status, rec.Code, "status")
	body := UnmarshalResponse[ErrorBody](t, rec)
	assert.Equal(t, slug, body.Error, "error slug")
	assert.Equal(t, code, body.Code, "registry code")
}

// AssertJSONContains checks a single top-level field of a JSON object body.
func AssertJSONContains(t *testing.T, rec *httptest.ResponseRecorder, key string, want any) {
	t.Helper()
	fields := *UnmarshalResponse[map[string]any](t, rec)
	assert.Equal(t, want, fields[key], "field %q", key)
}
