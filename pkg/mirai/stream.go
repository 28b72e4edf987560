package mirai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/liteclaw/mirai/pkg/message"
)

// StreamKind selects which events a Stream receives.
type StreamKind string

const (
	StreamAll     StreamKind = "all"
	StreamMessage StreamKind = "message"
	StreamEvent   StreamKind = "event"
)

// Stream receives events over the gateway's websocket endpoints. The gateway
// must have websocket delivery enabled, see ServerConfig.
type Stream struct {
	session *Session
	kind    StreamKind
	dialer  *websocket.Dialer
	logger  zerolog.Logger

	// MaxElapsedTime bounds reconnect attempts after a connection drops.
	// Zero retries until the context is done.
	MaxElapsedTime time.Duration
}

// Stream returns a websocket listener for this session.
func (s *Session) Stream(kind StreamKind) *Stream {
	if kind == "" {
		kind = StreamAll
	}
	return &Stream{
		session: s,
		kind:    kind,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: s.client.logger.With().Str("component", "stream").Str("kind", string(kind)).Logger(),
	}
}

// URL returns the websocket address, including the session key.
func (st *Stream) URL() string {
	u := *st.session.client.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/" + string(st.kind)
	u.RawQuery = url.Values{"sessionKey": {st.session.key}}.Encode()
	return u.String()
}

// Listen delivers every event to handler until ctx is done, reconnecting with
// exponential backoff when the connection drops. It returns nil when ctx is
// done and an error when reconnecting gives up.
func (st *Stream) Listen(ctx context.Context, handler func(message.Event)) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = st.MaxElapsedTime

	err := backoff.RetryNotify(func() error {
		err := st.listenOnce(ctx, handler, b.Reset)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		st.logger.Warn().Err(err).Dur("retryIn", wait).Msg("Event stream disconnected")
	})

	if ctx.Err() != nil {
		return nil
	}
	return serverError("Stream", err)
}

// listenOnce reads one connection until it fails. onConnect is called once
// the connection is established.
func (st *Stream) listenOnce(ctx context.Context, handler func(message.Event), onConnect func()) error {
	conn, _, err := st.dialer.DialContext(ctx, st.URL(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	onConnect()
	st.logger.Info().Msg("Event stream connected")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("gateway closed the stream")
			}
			return fmt.Errorf("read: %w", err)
		}

		ev, err := message.DecodeEvent(data)
		if err != nil {
			st.logger.Warn().Err(err).Msg("Failed to decode event")
			continue
		}
		handler(ev)
	}
}
