// Package handlertest drives handler routers in tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"garmenthr/internal/requestctx"
)

type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// Router mounts register on a fresh chi router.
func Router(register func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	register(r)
	return r
}

// NewRequest builds a request whose body is body marshalled to JSON (strings
// are sent verbatim). An empty role sends the request anonymously.
func NewRequest(t *testing.T, method, path string, body any, role string) *http.Request {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if role != "" {
		req = req.WithContext(requestctx.WithCaller(req.Context(), requestctx.Caller{UserID: "user-1", Email: "user@garment.com", Role: role}))
	}
	return req
}

func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Do(t *testing.T, h http.Handler, method, path string, body any, role string) *httptest.ResponseRecorder {
	t.Helper()
	return Serve(h, NewRequest(t, method, path, body, role))
}

func Decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// Data decodes the envelope data into dst.
func Data(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := Decode(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// ErrorCode returns the envelope error code, or "" on success.
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := Decode(t, rec)
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}
