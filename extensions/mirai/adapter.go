// Package mirai bridges a mirai-api-http session to the channel framework.
package mirai

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/liteclaw/mirai/internal/channels"
	"github.com/liteclaw/mirai/pkg/message"
	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

// Delivery modes.
const (
	ModePolling   = "polling"
	ModeWebsocket = "websocket"
)

// Config holds mirai-specific configuration.
type Config struct {
	// QQ is the bot account bound to the session.
	QQ message.Target
	// Mode is ModePolling (default) or ModeWebsocket.
	Mode string
	// PollInterval and Batch tune the poller in polling mode.
	PollInterval time.Duration
	Batch        int
}

// Adapter implements the mirai channel adapter on top of a bound session.
type Adapter struct {
	*channels.BaseAdapter

	session *gateway.Session
	cfg     Config

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new mirai adapter.
func New(session *gateway.Session, cfg Config, logger zerolog.Logger) *Adapter {
	if cfg.Mode == "" {
		cfg.Mode = ModePolling
	}

	caps := &channels.Capabilities{
		ChatTypes: []channels.ChatType{channels.ChatTypeDirect, channels.ChatTypeGroup, channels.ChatTypeTemp},
		Media:     true,
		Quotes:    true,
		Polling:   cfg.Mode == ModePolling,
		Websocket: cfg.Mode == ModeWebsocket,
	}

	base := channels.NewBaseAdapter(
		fmt.Sprintf("mirai:%d", cfg.QQ),
		"Mirai",
		channels.ChannelTypeMirai,
		caps,
		logger,
	)

	return &Adapter{
		BaseAdapter: base,
		session:     session,
		cfg:         cfg,
	}
}

// Start begins receiving events. Events are delivered until Stop is called.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.IsRunning() {
		return nil
	}

	var run func(context.Context) error
	switch a.cfg.Mode {
	case ModePolling:
		run = a.poll
	case ModeWebsocket:
		run = a.listen
	default:
		return fmt.Errorf("unknown delivery mode %q", a.cfg.Mode)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	go func() {
		defer close(done)
		if err := run(runCtx); err != nil {
			a.Logger().Error().Err(err).Msg("Mirai event delivery ended with error")
			a.UpdateState(func(s *channels.RuntimeState) { s.LastError = err.Error() })
		}
		a.SetRunning(false)
	}()

	now := time.Now()
	a.UpdateState(func(s *channels.RuntimeState) {
		s.Running = true
		s.Mode = a.cfg.Mode
		s.LastStartAt = &now
		s.LastError = ""
	})

	a.Logger().Info().Uint64("qq", uint64(a.cfg.QQ)).Str("mode", a.cfg.Mode).Msg("Mirai adapter started")
	return nil
}

// Stop stops event delivery and waits for it to wind down.
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel == nil {
		return nil
	}

	a.cancel()
	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	a.cancel = nil

	now := time.Now()
	a.UpdateState(func(s *channels.RuntimeState) {
		s.Running = false
		s.LastStopAt = &now
	})

	a.Logger().Info().Msg("Mirai adapter stopped")
	return nil
}

func (a *Adapter) poll(ctx context.Context) error {
	poller := gateway.NewPoller(a.session, gateway.PollerConfig{
		Interval: a.cfg.PollInterval,
		Batch:    a.cfg.Batch,
	}, *a.Logger())

	_, events := poller.Subscribe()
	errc := make(chan error, 1)
	go func() { errc <- poller.Run(ctx) }()

	for ev := range events {
		a.dispatch(ctx, ev)
	}
	return <-errc
}

func (a *Adapter) listen(ctx context.Context) error {
	return a.session.Stream(gateway.StreamAll).Listen(ctx, func(ev message.Event) {
		a.dispatch(ctx, ev)
	})
}

// Probe checks the gateway answers /about.
func (a *Adapter) Probe(ctx context.Context) (*channels.ProbeResult, error) {
	start := time.Now()

	about, err := a.session.Client().About(ctx)
	if err != nil {
		return &channels.ProbeResult{
			OK:        false,
			Error:     err.Error(),
			LatencyMs: time.Since(start).Milliseconds(),
		}, nil
	}

	return &channels.ProbeResult{
		OK:        true,
		BotID:     strconv.FormatUint(uint64(a.cfg.QQ), 10),
		Version:   about.Data.Version,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Send sends a message to "group:<id>", "friend:<qq>" or "temp:<qq>@<group>".
func (a *Adapter) Send(ctx context.Context, req *channels.SendRequest) (*channels.SendResult, error) {
	ch, err := message.ParseChannel(req.To.ChatID)
	if err != nil {
		return &channels.SendResult{Success: false, Error: err.Error()}, err
	}

	msg, err := BuildMessage(req)
	if err != nil {
		return &channels.SendResult{Success: false, Error: err.Error()}, err
	}

	id, err := a.session.SendMessage(ctx, ch, msg)
	if err != nil {
		a.Logger().Error().Err(err).Str("chat", req.To.ChatID).Msg("Failed to send mirai message")
		return &channels.SendResult{Success: false, Error: err.Error()}, err
	}

	now := time.Now()
	a.UpdateState(func(s *channels.RuntimeState) { s.LastOutboundAt = &now })

	return &channels.SendResult{
		MessageID: strconv.FormatInt(int64(id), 10),
		Success:   true,
	}, nil
}

// BuildMessage converts a SendRequest into a message chain. ReplyTo, when
// set, must be a message id and becomes a quote.
func BuildMessage(req *channels.SendRequest) (*message.Message, error) {
	b := message.NewBuilder()

	if req.ReplyTo != "" {
		id, err := strconv.ParseInt(req.ReplyTo, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid reply id %q: %w", req.ReplyTo, err)
		}
		b.Quote(message.MessageID(id))
	}

	if req.Text != "" {
		b.Plain(req.Text)
	}

	for _, att := range req.Attachments {
		ref := message.ImageRef{URL: att.URL, Path: att.Path}
		switch att.Type {
		case "image", "":
			b.Image(ref)
		case "flash_image":
			b.FlashImage(ref)
		default:
			return nil, fmt.Errorf("unsupported attachment type %q", att.Type)
		}
	}

	return b.Build()
}

func (a *Adapter) dispatch(ctx context.Context, ev message.Event) {
	me, ok := ev.(message.MessageEvent)
	if !ok {
		a.Logger().Debug().Str("event", ev.EventType()).Msg("Ignoring non-message event")
		return
	}

	incoming := ToIncoming(me, a.cfg.QQ)

	now := time.Now()
	a.UpdateState(func(s *channels.RuntimeState) {
		s.LastInboundAt = &now
		s.MessageCount++
	})

	a.Logger().Info().
		Str("chat", incoming.ChatID).
		Str("sender", incoming.SenderID).
		Str("content", incoming.Text).
		Msg("Received mirai message")

	handler := a.Handler()
	if handler == nil {
		return
	}
	if err := handler.HandleIncoming(ctx, incoming); err != nil {
		a.Logger().Error().Err(err).Msg("Failed to handle mirai message")
	}
}

// ToIncoming converts a message event into the channel framework's shape.
// bot is the account used to detect mentions.
func ToIncoming(ev message.MessageEvent, bot message.Target) *channels.IncomingMessage {
	msg := ev.Content()
	ch := ev.ReplyChannel()

	incoming := &channels.IncomingMessage{
		ChannelType: string(channels.ChannelTypeMirai),
		ChatID:      ch.String(),
		SenderID:    strconv.FormatUint(uint64(ev.SenderID()), 10),
		Text:        msg.Text(),
	}

	if src, ok := msg.Source(); ok {
		incoming.ID = strconv.FormatInt(int64(src.ID), 10)
		incoming.ReplyTo = incoming.ID
		incoming.Timestamp = int64(src.Time)
	}

	switch e := ev.(type) {
	case message.GroupMessage:
		incoming.ChatType = channels.ChatTypeGroup
		incoming.SenderName = e.Sender.MemberName
	case message.FriendMessage:
		incoming.ChatType = channels.ChatTypeDirect
		incoming.SenderName = e.Sender.DisplayName()
	case message.TempMessage:
		incoming.ChatType = channels.ChatTypeTemp
		incoming.SenderName = e.Sender.MemberName
	}

	for _, el := range msg.Elements() {
		switch v := el.(type) {
		case message.At:
			if v.Target == bot {
				incoming.Mentioned = true
			}
		case message.AtAll:
			incoming.Mentioned = true
		case message.Image:
			incoming.Attachments = append(incoming.Attachments, imageAttachment("image", v.ImageRef))
		case message.FlashImage:
			incoming.Attachments = append(incoming.Attachments, imageAttachment("flash_image", v.ImageRef))
		}
	}

	return incoming
}

func imageAttachment(typ string, ref message.ImageRef) channels.Attachment {
	att := channels.Attachment{Type: typ, URL: ref.URL, Path: ref.Path}
	if ref.ImageID != "" {
		att.Name = ref.ImageID
	}
	return att
}
