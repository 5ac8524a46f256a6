// Package testutil provides HTTP test doubles for the directory providers.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock provider endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is a configurable mock directory API for testing.
type MockProvider struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requests    map[string]int
	lastQuery   map[string]url.Values
	lastHeaders map[string]http.Header
}

// NewMockProvider creates a new mock provider server.
// Paths without a handler answer 404.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		handlers:    make(map[string]http.HandlerFunc),
		requests:    make(map[string]int),
		lastQuery:   make(map[string]url.Values),
		lastHeaders: make(map[string]http.Header),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests[r.URL.Path]++
		mock.lastQuery[r.URL.Path] = r.URL.Query()
		mock.lastHeaders[r.URL.Path] = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if !exists {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
	m.lastQuery = make(map[string]url.Values)
	m.lastHeaders = make(map[string]http.Header)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockProvider) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockProvider) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetSequence answers successive requests to path with the given responses.
// Requests beyond the sequence repeat the last response.
func (m *MockProvider) SetSequence(path string, responses ...MockResponse) {
	var mu sync.Mutex
	next := 0
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		i := next
		if next < len(responses)-1 {
			next++
		}
		mu.Unlock()
		writeResponse(w, responses[i])
	})
}

// RequestCount returns the number of requests made to path.
func (m *MockProvider) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// LastQuery returns the query parameters of the last request to path.
func (m *MockProvider) LastQuery(path string) url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery[path]
}

// LastHeader returns the headers of the last request to path.
func (m *MockProvider) LastHeader(path string) http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeaders[path]
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse creates a 200 OK response carrying v encoded as JSON.
func NewJSONResponse(v any) MockResponse {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return MockResponse{StatusCode: http.StatusOK, Body: string(body)}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers:    map[string]string{"Retry-After": "1"},
	}
}

// NewUnauthorizedResponse creates a 401 response.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"errorType": "AccessDeniedError", "message": "wrong appkey"}`,
	}
}
