package mirai

import (
	"context"
	"strconv"

	"github.com/liteclaw/mirai/pkg/message"
)

// FetchMessage removes and returns up to count of the oldest cached events.
func (s *Session) FetchMessage(ctx context.Context, count int) (message.Events, error) {
	return s.receive(ctx, true, false, count)
}

// FetchLatestMessage removes and returns up to count of the newest cached events.
func (s *Session) FetchLatestMessage(ctx context.Context, count int) (message.Events, error) {
	return s.receive(ctx, true, true, count)
}

// PeekMessage returns up to count of the oldest cached events without removing them.
func (s *Session) PeekMessage(ctx context.Context, count int) (message.Events, error) {
	return s.receive(ctx, false, false, count)
}

// PeekLatestMessage returns up to count of the newest cached events without removing them.
func (s *Session) PeekLatestMessage(ctx context.Context, count int) (message.Events, error) {
	return s.receive(ctx, false, true, count)
}

func (s *Session) receive(ctx context.Context, fetch, latest bool, count int) (message.Events, error) {
	op, path := "Peeking", "/peek"
	if fetch {
		op, path = "Fetching", "/fetch"
	}
	if latest {
		path += "Latest"
	}
	path += "Message"

	if count <= 0 {
		return nil, clientErrorf(op, "count must be positive, got %d", count)
	}

	var resp struct {
		Data message.Events `json:"data"`
	}
	query := map[string]string{"count": strconv.Itoa(count)}
	if err := s.get(ctx, op, path, query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
