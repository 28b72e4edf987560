package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liteclaw/mirai/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var (
		authKey string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write mirai.json with the gateway address, bot account and auth key.
The auth key is prompted for when not given; use ${ENV_VAR} to keep it out
of the file.`,
		Example: `  mirai init --gateway http://localhost:8080 --qq 10001
  mirai init --qq 10001 --auth-key '${MIRAI_AUTH_KEY}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg, err := config.Load()
			if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
				return err
			}
			if err := applyOverrides(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.RequireBot(); err != nil {
				return fmt.Errorf("%w: pass --qq", err)
			}

			if authKey == "" {
				if authKey, err = promptSecret(cmd, "Auth key: "); err != nil {
					return err
				}
			}
			cfg.Gateway.AuthKey = authKey

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&authKey, "auth-key", "", "Gateway auth key (prompted when empty)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
