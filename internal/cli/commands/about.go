package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAboutCommand creates the about command.
func NewAboutCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "about",
		Short:   "Show the gateway plugin version",
		Example: `  mirai about --gateway http://localhost:8080`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd, cfg)
			if err != nil {
				return err
			}

			about, err := client.About(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Gateway: %s\n", client.BaseURL())
			_, _ = fmt.Fprintf(out, "Version: %s\n", about.Data.Version)
			return nil
		},
	}
}
