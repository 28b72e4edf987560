package mirai

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/liteclaw/mirai/pkg/message"
)

// EventFetcher is the part of a Session the Poller needs.
type EventFetcher interface {
	FetchLatestMessage(ctx context.Context, count int) (message.Events, error)
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	// Interval is the minimum time between two fetches. Default 500ms.
	Interval time.Duration
	// Batch is the number of events requested per fetch. Default 10.
	Batch int
	// Buffer is the channel size of each subscriber. Default 64.
	Buffer int
}

func (c *PollerConfig) setDefaults() {
	if c.Interval <= 0 {
		c.Interval = 500 * time.Millisecond
	}
	if c.Batch <= 0 {
		c.Batch = 10
	}
	if c.Buffer <= 0 {
		c.Buffer = 64
	}
}

// Poller repeatedly fetches the newest events and broadcasts them to every
// subscriber. A subscriber that falls behind misses events rather than
// blocking the others.
type Poller struct {
	source  EventFetcher
	cfg     PollerConfig
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu   sync.RWMutex
	subs map[string]chan message.Event
	done bool
}

// NewPoller creates a poller reading from source.
func NewPoller(source EventFetcher, cfg PollerConfig, logger zerolog.Logger) *Poller {
	cfg.setDefaults()
	return &Poller{
		source:  source,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		logger:  logger.With().Str("component", "poller").Logger(),
		subs:    make(map[string]chan message.Event),
	}
}

// Subscribe registers a subscriber. The channel is closed when the poller
// stops or the subscriber unsubscribes.
func (p *Poller) Subscribe() (string, <-chan message.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan message.Event, p.cfg.Buffer)
	if p.done {
		close(ch)
		return id, ch
	}
	p.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (p *Poller) Unsubscribe(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of active subscribers.
func (p *Poller) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// Run polls until ctx is done. Fetch errors are logged and polling continues.
func (p *Poller) Run(ctx context.Context) error {
	defer p.closeAll()

	p.logger.Info().
		Dur("interval", p.cfg.Interval).
		Int("batch", p.cfg.Batch).
		Msg("Poller started")

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			p.logger.Info().Msg("Poller stopped")
			return nil
		}

		events, err := p.source.FetchLatestMessage(ctx, p.cfg.Batch)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info().Msg("Poller stopped")
				return nil
			}
			p.logger.Warn().Err(err).Msg("Failed to fetch events")
			continue
		}

		for _, ev := range events {
			p.broadcast(ev)
		}
	}
}

func (p *Poller) broadcast(ev message.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for id, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			p.logger.Warn().Str("subscriber", id).Str("event", ev.EventType()).Msg("Subscriber lagging, event dropped")
		}
	}
}

func (p *Poller) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, ch := range p.subs {
		close(ch)
		delete(p.subs, id)
	}
	p.done = true
}
