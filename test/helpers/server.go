// Package test provides test utilities and helpers for mirai tests.
package test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// MockServer is a fake gateway that answers registered routes and records
// every request.
type MockServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []RecordedRequest
	handlers map[string]http.HandlerFunc
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// NewMockServer creates a new mock server, closed when the test ends.
func NewMockServer(t *testing.T) *MockServer {
	t.Helper()

	ms := &MockServer{
		requests: make([]RecordedRequest, 0),
		handlers: make(map[string]http.HandlerFunc),
	}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && r.Header.Get("Upgrade") == "" {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		ms.mu.Lock()
		ms.requests = append(ms.requests, RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: r.Header.Clone(),
			Body:    body,
		})
		handler, ok := ms.handlers[fmt.Sprintf("%s %s", r.Method, r.URL.Path)]
		ms.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ms.Close)

	return ms
}

// HandleFunc registers a handler for a specific method and path.
func (ms *MockServer) HandleFunc(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[fmt.Sprintf("%s %s", method, path)] = handler
}

// HandleJSON registers a handler that returns a fixed JSON body.
func (ms *MockServer) HandleJSON(method, path string, statusCode int, body string) {
	ms.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	})
}

// HandleCode registers a handler answering with a bare status envelope.
func (ms *MockServer) HandleCode(method, path string, code int) {
	ms.HandleJSON(method, path, http.StatusOK, fmt.Sprintf(`{"code":%d,"msg":""}`, code))
}

// HandleOK registers a handler answering with a success envelope.
func (ms *MockServer) HandleOK(method, path string) {
	ms.HandleCode(method, path, 0)
}

// HandleWebSocket registers a websocket endpoint that sends frames in order
// and then holds the connection open until the client goes away.
func (ms *MockServer) HandleWebSocket(path string, frames ...string) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ms.HandleFunc(http.MethodGet, path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

// Requests returns all recorded requests.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	result := make([]RecordedRequest, len(ms.requests))
	copy(result, ms.requests)
	return result
}

// LastRequest returns the most recent request to path.
func (ms *MockServer) LastRequest(path string) (RecordedRequest, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i := len(ms.requests) - 1; i >= 0; i-- {
		if ms.requests[i].Path == path {
			return ms.requests[i], true
		}
	}
	return RecordedRequest{}, false
}

// Reset clears recorded requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = make([]RecordedRequest, 0)
}

// Poll polls a function until it returns true or times out.
func Poll(t *testing.T, ctx context.Context, interval time.Duration, fn func() bool) bool {
	t.Helper()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if fn() {
				return true
			}
		}
	}
}
