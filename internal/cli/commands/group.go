package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/liteclaw/mirai/pkg/message"
	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

// NewGroupCommand creates the group administration command.
func NewGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Administer groups (the bot must be an administrator)",
	}

	cmd.AddCommand(newGroupMuteSubCommand())
	cmd.AddCommand(newGroupUnmuteSubCommand())
	cmd.AddCommand(newGroupAllSubCommand("mute-all", "Mute every member of a group", (*gateway.Session).MuteAll))
	cmd.AddCommand(newGroupAllSubCommand("unmute-all", "Lift the group-wide mute", (*gateway.Session).UnmuteAll))
	cmd.AddCommand(newGroupRecallSubCommand())

	return cmd
}

// withSession runs fn on a bound session and releases it afterwards.
func withSession(cmd *cobra.Command, fn func(*gateway.Session) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	session, release, err := openSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer release()
	return fn(session)
}

func newGroupMuteSubCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "mute <group> <member> <duration>",
		Short:   "Mute a member for a duration of at most 30 days",
		Example: `  mirai group mute 123456 10001 10m`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := parseTargetArg("group", args[0])
			if err != nil {
				return err
			}
			member, err := parseTargetArg("member", args[1])
			if err != nil {
				return err
			}
			d, err := time.ParseDuration(args[2])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[2], err)
			}

			return withSession(cmd, func(s *gateway.Session) error {
				if err := s.Mute(cmd.Context(), group, member, d); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Muted %d in %d for %s\n", member, group, d)
				return nil
			})
		},
	}
}

func newGroupUnmuteSubCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unmute <group> <member>",
		Short: "Unmute a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := parseTargetArg("group", args[0])
			if err != nil {
				return err
			}
			member, err := parseTargetArg("member", args[1])
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *gateway.Session) error {
				if err := s.Unmute(cmd.Context(), group, member); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unmuted %d in %d\n", member, group)
				return nil
			})
		},
	}
}

type groupAction func(*gateway.Session, context.Context, message.Target) error

func newGroupAllSubCommand(use, short string, action groupAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <group>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := parseTargetArg("group", args[0])
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *gateway.Session) error {
				if err := action(s, cmd.Context(), group); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Done: %s %d\n", use, group)
				return nil
			})
		},
	}
}

func newGroupRecallSubCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recall <message-id>",
		Short: "Recall a message",
		Long: `Recall a message by id. The gateway only knows messages still in its
cache; see server-config for the cache size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid message id %q: %w", args[0], err)
			}

			return withSession(cmd, func(s *gateway.Session) error {
				if err := s.Recall(cmd.Context(), message.MessageID(id)); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recalled message %d\n", id)
				return nil
			})
		},
	}
}
