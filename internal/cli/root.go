// Package cli provides the command-line interface for mirai.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/liteclaw/mirai/internal/cli/commands"
	"github.com/liteclaw/mirai/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mirai",
	Short: "mirai - client for the mirai-api-http gateway",
	Long: `mirai talks to a mirai-api-http gateway: it sends and receives QQ
messages, administers groups, and runs a small bot that answers messages
and sends scheduled ones.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			return os.Setenv("MIRAI_CONFIG_PATH", path)
		}
		return nil
	},
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(commands.NewAboutCommand())
	rootCmd.AddCommand(commands.NewSendCommand())
	rootCmd.AddCommand(commands.NewEventsCommand())
	rootCmd.AddCommand(commands.NewGroupCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewServerConfigCommand())
	rootCmd.AddCommand(commands.NewUploadCommand())
	rootCmd.AddCommand(commands.NewBotCommand())
	rootCmd.AddCommand(commands.NewScheduleCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ~/.mirai/mirai.json)")
	rootCmd.PersistentFlags().StringP("gateway", "g", "", "gateway URL (overrides gateway.url)")
	rootCmd.PersistentFlags().String("qq", "", "bot account (overrides bot.qq)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
