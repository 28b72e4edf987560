// Package channels provides the communication channel framework.
package channels

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Adapter is the core interface that all channel implementations must satisfy.
// It translates between a chat platform and the bot runtime: platform events
// become IncomingMessages, SendRequests become platform calls.
type Adapter interface {
	// Metadata
	ID() string                  // Unique identifier (e.g., "mirai:10001")
	Name() string                // Human-readable name
	Type() ChannelType           // Channel type enum
	Capabilities() *Capabilities // What this adapter supports

	// Lifecycle
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	Probe(ctx context.Context) (*ProbeResult, error)

	// Messaging (outbound from the runtime to the platform)
	Send(ctx context.Context, req *SendRequest) (*SendResult, error)

	// State
	State() RuntimeState
	SetHandler(handler MessageHandler)
}

// MessageHandler is called when the adapter receives a message from the platform.
type MessageHandler interface {
	// HandleIncoming is called when a message arrives from the platform.
	HandleIncoming(ctx context.Context, msg *IncomingMessage) error
}

// MessageHandlerFunc is a function adapter for MessageHandler.
type MessageHandlerFunc func(ctx context.Context, msg *IncomingMessage) error

func (f MessageHandlerFunc) HandleIncoming(ctx context.Context, msg *IncomingMessage) error {
	return f(ctx, msg)
}

// SendRequest is a unified request for sending messages.
type SendRequest struct {
	To          Destination  `json:"to"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	ReplyTo     string       `json:"replyTo,omitempty"`
}

// BaseAdapter provides common functionality for all adapters.
type BaseAdapter struct {
	id           string
	name         string
	chanType     ChannelType
	capabilities *Capabilities
	logger       zerolog.Logger

	mu      sync.RWMutex
	handler MessageHandler
	state   RuntimeState
}

// NewBaseAdapter creates a new base adapter.
func NewBaseAdapter(id, name string, chanType ChannelType, caps *Capabilities, logger zerolog.Logger) *BaseAdapter {
	return &BaseAdapter{
		id:           id,
		name:         name,
		chanType:     chanType,
		capabilities: caps,
		logger:       logger.With().Str("adapter", id).Logger(),
	}
}

func (a *BaseAdapter) ID() string                  { return a.id }
func (a *BaseAdapter) Name() string                { return a.name }
func (a *BaseAdapter) Type() ChannelType           { return a.chanType }
func (a *BaseAdapter) Capabilities() *Capabilities { return a.capabilities }

// Logger returns a pointer to the logger for calling pointer receiver methods.
func (a *BaseAdapter) Logger() *zerolog.Logger { return &a.logger }

// State returns a snapshot of the runtime state.
func (a *BaseAdapter) State() RuntimeState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// UpdateState applies fn to the runtime state under the adapter lock.
func (a *BaseAdapter) UpdateState(fn func(*RuntimeState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.state)
}

func (a *BaseAdapter) SetHandler(handler MessageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = handler
}

func (a *BaseAdapter) Handler() MessageHandler {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.handler
}

func (a *BaseAdapter) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Running
}

func (a *BaseAdapter) SetRunning(running bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Running = running
}
