package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/liteclaw/mirai/internal/bot"
	"github.com/liteclaw/mirai/internal/config"
)

// NewBotCommand creates the bot command.
func NewBotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the auto-reply and scheduling bot",
	}

	cmd.AddCommand(newBotRunSubCommand())

	return cmd
}

func newBotRunSubCommand() *cobra.Command {
	var (
		readyTimeout time.Duration
		noWatch      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and serve until interrupted",
		Long: `Connect to the gateway, bind a session to bot.qq and answer messages
using the reply rules in the config file. Reply rules are reloaded when the
file changes. Scheduled messages are sent when schedule.enabled is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.LoadViper()
			if errors.Is(err, config.ErrConfigNotFound) {
				return fmt.Errorf("no config at %s: run 'mirai init' first", config.ConfigPath())
			}
			if err != nil {
				return err
			}

			cfg, err := config.Decode(v)
			if err != nil {
				return err
			}
			if err := applyOverrides(cmd, cfg); err != nil {
				return err
			}

			b, err := bot.New(cfg, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			if readyTimeout > 0 {
				b.ReadyTimeout = readyTimeout
			}
			if !noWatch {
				b.WatchConfig(v)
			}

			return b.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&readyTimeout, "ready-timeout", bot.DefaultReadyTimeout, "How long to wait for the gateway to come up")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload reply rules when the config file changes")

	return cmd
}
