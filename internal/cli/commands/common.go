// Package commands provides CLI subcommands for mirai.
package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/liteclaw/mirai/internal/config"
	"github.com/liteclaw/mirai/pkg/message"
	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

const releaseTimeout = 5 * time.Second

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputText  = "text"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// flagString returns the value of a local or inherited flag, or "" when the
// command does not have it.
func flagString(cmd *cobra.Command, name string) string {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := strconv.ParseBool(flagString(cmd, name))
	return v
}

// loadConfig loads mirai.json and applies the global --gateway and --qq
// overrides. A missing config file is not an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if url := flagString(cmd, "gateway"); url != "" {
		cfg.Gateway.URL = url
	}
	if qq := flagString(cmd, "qq"); qq != "" && qq != "0" {
		target, err := message.ParseTarget(qq)
		if err != nil {
			return fmt.Errorf("invalid --qq: %w", err)
		}
		cfg.Bot.QQ = uint64(target)
	}
	return nil
}

// newLogger writes JSON logs to stderr. --verbose switches to debug level.
func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if l, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = l
		}
	}
	if flagBool(cmd, "verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(cmd.ErrOrStderr()).Level(level).With().Timestamp().Logger()
}

func newClient(cmd *cobra.Command, cfg *config.Config) (*gateway.Client, error) {
	logger := newLogger(cmd, cfg)
	return gateway.NewClient(gateway.Config{
		BaseURL: cfg.Gateway.URL,
		Timeout: cfg.Gateway.Timeout,
		Logger:  &logger,
		Debug:   cfg.Gateway.Debug || flagBool(cmd, "verbose"),
	})
}

// openSession authenticates and binds a session to the configured bot. The
// returned release function must be called when the command is done.
func openSession(cmd *cobra.Command, cfg *config.Config) (*gateway.Session, func(), error) {
	if err := cfg.RequireBot(); err != nil {
		return nil, nil, fmt.Errorf("%w (set it in %s or pass --qq)", err, config.ConfigPath())
	}

	client, err := newClient(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	authKey := cfg.Gateway.AuthKey
	if authKey == "" {
		if authKey, err = promptSecret(cmd, "Auth key: "); err != nil {
			return nil, nil, err
		}
	}

	ctx := cmd.Context()
	session, err := client.Auth(ctx, authKey)
	if err != nil {
		return nil, nil, err
	}
	if err := session.Verify(ctx, message.Target(cfg.Bot.QQ)); err != nil {
		return nil, nil, err
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = session.Close(releaseCtx)
	}
	return session, release, nil
}

// promptSecret reads a secret without echo when stdin is a terminal.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	_, _ = fmt.Fprint(out, prompt)
	var secret string
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read auth key: %w", err)
		}
		_, _ = fmt.Fprintln(out)
		secret = string(b)
	} else {
		input, _ := bufio.NewReader(in).ReadString('\n')
		secret = input
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", errors.New("auth key cannot be empty")
	}
	return secret, nil
}

func addOutputFlag(cmd *cobra.Command, def string, formats ...string) {
	cmd.Flags().StringP("output", "o", def, "Output format: "+strings.Join(formats, ", "))
}

// writeStructured writes v as JSON or YAML. It reports false for any other
// format so the caller can render its own.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		// yaml.v3 ignores MarshalJSON, so encode the wire form.
		wire, err := toWireForm(v)
		if err != nil {
			return true, err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(wire); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func toWireForm(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// writeOutput renders v per --output, using header and rows for tables.
func writeOutput(cmd *cobra.Command, v any, header []string, rows [][]string) error {
	format := flagString(cmd, "output")
	done, err := writeStructured(cmd.OutOrStdout(), format, v)
	if done || err != nil {
		return err
	}
	if format != outputTable && format != "" {
		return fmt.Errorf("unknown output format %q", format)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

func parseTargetArg(name, s string) (message.Target, error) {
	t, err := message.ParseTarget(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return t, nil
}

func formatTarget(t message.Target) string {
	return strconv.FormatUint(uint64(t), 10)
}
