package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

// NewServerConfigCommand creates the server-config command.
func NewServerConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server-config",
		Short: "Show or change the gateway's runtime configuration",
	}

	cmd.AddCommand(newServerConfigGetSubCommand())
	cmd.AddCommand(newServerConfigSetSubCommand())

	return cmd
}

func newServerConfigGetSubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the gateway configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *gateway.Session) error {
				cfg, err := s.GetConfig(cmd.Context())
				if err != nil {
					return err
				}
				return writeServerConfig(cmd, cfg)
			})
		},
	}
	addOutputFlag(cmd, outputTable, outputTable, outputJSON, outputYAML)
	return cmd
}

func newServerConfigSetSubCommand() *cobra.Command {
	var (
		cacheSize       int
		enableWebsocket bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the gateway configuration",
		Long: `Change the gateway configuration. Only the given flags are changed; the
other settings keep their current values.`,
		Example: `  mirai server-config set --cache-size 8192
  mirai server-config set --enable-websocket`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("cache-size") && !flags.Changed("enable-websocket") {
				return fmt.Errorf("nothing to change: pass --cache-size or --enable-websocket")
			}

			return withSession(cmd, func(s *gateway.Session) error {
				cfg, err := s.GetConfig(cmd.Context())
				if err != nil {
					return err
				}
				if flags.Changed("cache-size") {
					cfg.CacheSize = cacheSize
				}
				if flags.Changed("enable-websocket") {
					cfg.EnableWebsocket = enableWebsocket
				}

				if err := s.ModifyConfig(cmd.Context(), *cfg); err != nil {
					return err
				}
				return writeServerConfig(cmd, cfg)
			})
		},
	}

	cmd.Flags().IntVar(&cacheSize, "cache-size", 0, "Number of messages the gateway keeps for quotes and recalls")
	cmd.Flags().BoolVar(&enableWebsocket, "enable-websocket", false, "Deliver events over websocket instead of polling")
	addOutputFlag(cmd, outputTable, outputTable, outputJSON, outputYAML)

	return cmd
}

func writeServerConfig(cmd *cobra.Command, cfg *gateway.ServerConfig) error {
	rows := [][]string{
		{"cacheSize", strconv.Itoa(cfg.CacheSize)},
		{"enableWebsocket", strconv.FormatBool(cfg.EnableWebsocket)},
	}
	return writeOutput(cmd, cfg, []string{"Setting", "Value"}, rows)
}
