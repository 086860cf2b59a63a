package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmenthr/internal/domain/auth"
)

type memoryIdempotency struct {
	hashes    map[string]string
	responses map[string]StoredResponse
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{hashes: map[string]string{}, responses: map[string]StoredResponse{}}
}

func (m *memoryIdempotency) Check(_ context.Context, userID, endpoint, key, requestHash string) (StoredResponse, bool, error) {
	id := userID + "|" + endpoint + "|" + key
	hash, ok := m.hashes[id]
	if !ok {
		return StoredResponse{}, false, nil
	}
	if hash != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return m.responses[id], true, nil
}

func (m *memoryIdempotency) Save(_ context.Context, userID, endpoint, key, requestHash string, response StoredResponse) error {
	id := userID + "|" + endpoint + "|" + key
	m.hashes[id] = requestHash
	m.responses[id] = response
	return nil
}

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	calls := 0
	handler := Idempotency(newMemoryIdempotency())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"s1"}}`))
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/submissions", bytes.NewBufferString(body)).WithContext(withCaller(auth.RoleSupervisor))
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"employeeId":"e1"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := send(`{"employeeId":"e1"}`)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	conflict := send(`{"employeeId":"e2"}`)
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencySkipsFailedResponses(t *testing.T) {
	calls := 0
	handler := Idempotency(newMemoryIdempotency())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/submissions", bytes.NewBufferString(`{}`)).WithContext(withCaller(auth.RoleAdmin))
		req.Header.Set(IdempotencyHeader, "key-2")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	calls := 0
	handler := Idempotency(newMemoryIdempotency())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/submissions", bytes.NewBufferString(`{}`)).WithContext(withCaller(auth.RoleAdmin))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}
