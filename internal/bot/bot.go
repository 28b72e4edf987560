package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	miraiext "github.com/liteclaw/mirai/extensions/mirai"
	"github.com/liteclaw/mirai/internal/channels"
	"github.com/liteclaw/mirai/internal/config"
	"github.com/liteclaw/mirai/internal/schedule"
	"github.com/liteclaw/mirai/pkg/message"
	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

// Default timeouts.
const (
	DefaultReadyTimeout = 30 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// Bot owns one bound session and everything that runs on it.
type Bot struct {
	cfg    *config.Config
	watch  *viper.Viper
	logger zerolog.Logger

	// ReadyTimeout bounds how long Run waits for the gateway to answer.
	ReadyTimeout time.Duration
}

// New creates a bot from cfg. The config must name a bot account.
func New(cfg *config.Config, logger zerolog.Logger) (*Bot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RequireBot(); err != nil {
		return nil, err
	}
	if cfg.Gateway.AuthKey == "" {
		return nil, errors.New("gateway.authKey is required")
	}

	return &Bot{
		cfg:          cfg,
		logger:       logger.With().Str("component", "bot").Logger(),
		ReadyTimeout: DefaultReadyTimeout,
	}, nil
}

// WatchConfig makes Run reload reply rules when the config file behind v
// changes.
func (b *Bot) WatchConfig(v *viper.Viper) {
	b.watch = v
}

// Run connects, binds the session and serves until ctx is done. The session
// is released on the way out.
func (b *Bot) Run(ctx context.Context) error {
	client, err := gateway.NewClient(gateway.Config{
		BaseURL: b.cfg.Gateway.URL,
		Timeout: b.cfg.Gateway.Timeout,
		Logger:  &b.logger,
		Debug:   b.cfg.Gateway.Debug,
	})
	if err != nil {
		return err
	}

	about, err := client.WaitReady(ctx, b.ReadyTimeout)
	if err != nil {
		return fmt.Errorf("gateway not ready: %w", err)
	}
	b.logger.Info().Str("version", about.Data.Version).Msg("Gateway ready")

	session, err := client.Auth(ctx, b.cfg.Gateway.AuthKey)
	if err != nil {
		return err
	}
	qq := message.Target(b.cfg.Bot.QQ)
	if err := session.Verify(ctx, qq); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = session.Close(releaseCtx)
	}()

	adapter := miraiext.New(session, miraiext.Config{
		QQ:           qq,
		Mode:         b.cfg.Events.Mode,
		PollInterval: b.cfg.Events.PollInterval,
		Batch:        b.cfg.Events.Batch,
	}, b.logger)

	var replier *Replier
	registry := channels.NewRegistry(&b.logger, channels.MessageHandlerFunc(
		func(ctx context.Context, msg *channels.IncomingMessage) error {
			return replier.HandleIncoming(ctx, msg)
		},
	))
	replier = NewReplier(registry, b.cfg.Replies, b.logger)

	if err := registry.Register(adapter); err != nil {
		return err
	}

	if b.watch != nil {
		config.Watch(b.watch, func(cfg *config.Config) {
			replier.SetRules(cfg.Replies)
		}, func(err error) {
			b.logger.Warn().Err(err).Msg("Ignoring config change")
		})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := registry.StartAll(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return registry.StopAll(stopCtx)
	})

	if b.cfg.Schedule.Enabled {
		scheduler := schedule.NewScheduler(schedule.NewStore(b.cfg.SchedulePath()), b.logger)
		scheduler.SetExecutor(JobExecutor(registry))
		if err := scheduler.Load(); err != nil {
			return fmt.Errorf("load schedule: %w", err)
		}

		g.Go(func() error {
			scheduler.Start()
			<-gctx.Done()
			scheduler.Stop()
			return nil
		})
		g.Go(func() error {
			return scheduler.Watch(gctx)
		})
	}

	b.logger.Info().Uint64("qq", uint64(qq)).Msg("Bot running")
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	b.logger.Info().Msg("Bot stopped")
	return nil
}

// JobExecutor sends a scheduled job's payload through sender.
func JobExecutor(sender Sender) schedule.JobExecutor {
	return func(ctx context.Context, job *schedule.Job) error {
		req := &channels.SendRequest{
			To: channels.Destination{
				ChannelType: string(channels.ChannelTypeMirai),
				ChatID:      job.Payload.Channel,
			},
			Text: job.Payload.Text,
		}
		if job.Payload.ImageURL != "" {
			req.Attachments = []channels.Attachment{{Type: "image", URL: job.Payload.ImageURL}}
		}
		_, err := sender.Send(ctx, req)
		return err
	}
}
