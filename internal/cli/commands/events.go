package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/liteclaw/mirai/pkg/message"
	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

// NewEventsCommand creates the events command.
func NewEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Read messages and events from the gateway",
	}

	cmd.AddCommand(newEventsReadSubCommand("fetch", "Fetch and remove queued events"))
	cmd.AddCommand(newEventsReadSubCommand("peek", "Show queued events without removing them"))
	cmd.AddCommand(newEventsWatchSubCommand())

	return cmd
}

func newEventsReadSubCommand(name, short string) *cobra.Command {
	var (
		latest bool
		count  int
	)

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Example: fmt.Sprintf(`  mirai events %s --count 5
  mirai events %s --latest -o json`, name, name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			session, release, err := openSession(cmd, cfg)
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			var events message.Events
			switch {
			case name == "fetch" && latest:
				events, err = session.FetchLatestMessage(ctx, count)
			case name == "fetch":
				events, err = session.FetchMessage(ctx, count)
			case latest:
				events, err = session.PeekLatestMessage(ctx, count)
			default:
				events, err = session.PeekMessage(ctx, count)
			}
			if err != nil {
				return err
			}

			return printEvents(cmd.OutOrStdout(), flagString(cmd, "output"), events)
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "Read the newest events first")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "Maximum number of events")
	addOutputFlag(cmd, outputText, outputText, outputJSON, outputYAML)

	return cmd
}

func printEvents(w io.Writer, format string, events message.Events) error {
	if done, err := writeStructured(w, format, events); done || err != nil {
		return err
	}
	if format != outputText && format != "" {
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(events) == 0 {
		_, _ = fmt.Fprintln(w, "No events.")
		return nil
	}
	for _, ev := range events {
		_, _ = fmt.Fprintln(w, formatEvent(ev))
	}
	return nil
}

func newEventsWatchSubCommand() *cobra.Command {
	var (
		mode     string
		kind     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print events as they arrive until interrupted",
		Example: `  mirai events watch
  mirai events watch --mode websocket --kind message`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if mode == "" {
				mode = cfg.Events.Mode
			}
			if interval <= 0 {
				interval = cfg.Events.PollInterval
			}

			session, release, err := openSession(cmd, cfg)
			if err != nil {
				return err
			}
			defer release()

			out := cmd.OutOrStdout()
			handle := func(ev message.Event) {
				_, _ = fmt.Fprintln(out, formatEvent(ev))
			}

			ctx := cmd.Context()
			logger := newLogger(cmd, cfg)

			switch mode {
			case "websocket":
				return session.Stream(gateway.StreamKind(kind)).Listen(ctx, handle)
			case "polling", "":
				if kind != string(gateway.StreamAll) {
					return fmt.Errorf("--kind %s needs --mode websocket", kind)
				}
				poller := gateway.NewPoller(session, gateway.PollerConfig{
					Interval: interval,
					Batch:    cfg.Events.Batch,
				}, logger)
				return watchPoller(ctx, poller, handle)
			default:
				return fmt.Errorf("unknown mode %q: want polling or websocket", mode)
			}
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Delivery mode: polling or websocket (default from config)")
	cmd.Flags().StringVar(&kind, "kind", string(gateway.StreamAll), "Websocket stream: all, message or event")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (default from config)")

	return cmd
}

func watchPoller(ctx context.Context, poller *gateway.Poller, handle func(message.Event)) error {
	_, events := poller.Subscribe()

	errCh := make(chan error, 1)
	go func() { errCh <- poller.Run(ctx) }()

	for ev := range events {
		handle(ev)
	}
	if err := <-errCh; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
