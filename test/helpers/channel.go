package test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/liteclaw/mirai/internal/channels"
)

// MockAdapter is a channels.Adapter that records what it is asked to send.
type MockAdapter struct {
	*channels.BaseAdapter

	mu       sync.RWMutex
	requests []channels.SendRequest
	sendErr  error
}

// NewMockAdapter creates a mock adapter of the given channel type.
func NewMockAdapter(id string, chanType channels.ChannelType) *MockAdapter {
	caps := &channels.Capabilities{
		ChatTypes: []channels.ChatType{channels.ChatTypeDirect, channels.ChatTypeGroup, channels.ChatTypeTemp},
	}
	return &MockAdapter{
		BaseAdapter: channels.NewBaseAdapter(id, id, chanType, caps, zerolog.Nop()),
	}
}

// Start marks the adapter running.
func (a *MockAdapter) Start(ctx context.Context) error {
	a.SetRunning(true)
	return nil
}

// Stop marks the adapter stopped.
func (a *MockAdapter) Stop(ctx context.Context) error {
	a.SetRunning(false)
	return nil
}

// Probe always succeeds.
func (a *MockAdapter) Probe(ctx context.Context) (*channels.ProbeResult, error) {
	return &channels.ProbeResult{OK: true}, nil
}

// Send records req, or fails with the error set by FailSends.
func (a *MockAdapter) Send(ctx context.Context, req *channels.SendRequest) (*channels.SendResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sendErr != nil {
		return nil, a.sendErr
	}
	a.requests = append(a.requests, *req)
	return &channels.SendResult{MessageID: "1", Success: true}, nil
}

// FailSends makes every following Send return err.
func (a *MockAdapter) FailSends(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sendErr = err
}

// Sent returns all recorded send requests.
func (a *MockAdapter) Sent() []channels.SendRequest {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]channels.SendRequest, len(a.requests))
	copy(result, a.requests)
	return result
}

// SimulateIncoming hands msg to the registered handler.
func (a *MockAdapter) SimulateIncoming(ctx context.Context, msg *channels.IncomingMessage) error {
	handler := a.Handler()
	if handler == nil {
		return nil
	}
	return handler.HandleIncoming(ctx, msg)
}

// Reset clears all recorded requests.
func (a *MockAdapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = nil
}

// AssertMessageSent asserts that a message with text was sent.
func (a *MockAdapter) AssertMessageSent(t *testing.T, text string) {
	t.Helper()

	for _, req := range a.Sent() {
		if req.Text == text {
			return
		}
	}
	t.Errorf("Expected message %q to be sent, but it wasn't. Sent messages: %v", text, a.Sent())
}

// AssertNoMessagesSent asserts that nothing was sent.
func (a *MockAdapter) AssertNoMessagesSent(t *testing.T) {
	t.Helper()

	if sent := a.Sent(); len(sent) > 0 {
		t.Errorf("Expected no messages to be sent, but got: %v", sent)
	}
}
