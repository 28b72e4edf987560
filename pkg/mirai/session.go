package mirai

import (
	"context"
	"sync"

	"github.com/liteclaw/mirai/pkg/message"
)

// Session is an authorized session on the gateway. Most operations need the
// session to be bound to a bot with Verify first.
//
// The session key grants full control of the bound bot; keep it out of logs.
type Session struct {
	client *Client
	key    string

	mu    sync.RWMutex
	bound *message.Target
}

// Key returns the session key.
func (s *Session) Key() string {
	return s.key
}

// Client returns the client the session was opened on.
func (s *Session) Client() *Client {
	return s.client
}

// Bound returns the bot the session is bound to.
func (s *Session) Bound() (message.Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bound == nil {
		return 0, false
	}
	return *s.bound, true
}

// Verify binds the session to a logged-in bot account.
func (s *Session) Verify(ctx context.Context, qq message.Target) error {
	if err := s.post(ctx, "Verify", "/verify", map[string]any{"qq": qq}, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.bound = &qq
	s.mu.Unlock()

	s.client.logger.Info().Uint64("qq", uint64(qq)).Msg("Session bound")
	return nil
}

// Release releases the bot the session is bound to. It does nothing when the
// session is not bound.
func (s *Session) Release(ctx context.Context) error {
	qq, ok := s.Bound()
	if !ok {
		return nil
	}
	return s.ReleaseQQ(ctx, qq)
}

// ReleaseQQ releases the session from the given bot, whether or not this
// session believes it is bound to it.
func (s *Session) ReleaseQQ(ctx context.Context, qq message.Target) error {
	if err := s.post(ctx, "Release", "/release", map[string]any{"qq": qq}, nil); err != nil {
		return err
	}

	s.mu.Lock()
	if s.bound != nil && *s.bound == qq {
		s.bound = nil
	}
	s.mu.Unlock()

	s.client.logger.Info().Uint64("qq", uint64(qq)).Msg("Session released")
	return nil
}

// Close releases the bound bot. A session that is never released keeps
// receiving messages on the gateway, which leaks memory there.
func (s *Session) Close(ctx context.Context) error {
	if err := s.Release(ctx); err != nil {
		s.client.logger.Warn().Err(err).Msg("Failed to release session")
		return err
	}
	return nil
}

// post sends body with the session key added.
func (s *Session) post(ctx context.Context, op, path string, body map[string]any, out any) error {
	if body == nil {
		body = make(map[string]any, 1)
	}
	body["sessionKey"] = s.key
	return s.client.post(ctx, op, path, body, out)
}

// get sends query with the session key added.
func (s *Session) get(ctx context.Context, op, path string, query map[string]string, out any) error {
	if query == nil {
		query = make(map[string]string, 1)
	}
	query["sessionKey"] = s.key
	return s.client.get(ctx, op, path, query, out)
}
