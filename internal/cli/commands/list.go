package commands

import (
	"github.com/spf13/cobra"

	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List friends, groups and group members",
	}

	cmd.AddCommand(newListFriendsSubCommand())
	cmd.AddCommand(newListGroupsSubCommand())
	cmd.AddCommand(newListMembersSubCommand())

	return cmd
}

func newListFriendsSubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "List the bot's friends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *gateway.Session) error {
				friends, err := s.FriendList(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(friends))
				for _, f := range friends {
					rows = append(rows, []string{formatTarget(f.ID), f.Nickname, f.Remark})
				}
				return writeOutput(cmd, friends, []string{"QQ", "Nickname", "Remark"}, rows)
			})
		},
	}
	addOutputFlag(cmd, outputTable, outputTable, outputJSON, outputYAML)
	return cmd
}

func newListGroupsSubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the groups the bot is in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *gateway.Session) error {
				groups, err := s.GroupList(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(groups))
				for _, g := range groups {
					rows = append(rows, []string{formatTarget(g.ID), g.Name, string(g.Permission)})
				}
				return writeOutput(cmd, groups, []string{"Group", "Name", "Bot Permission"}, rows)
			})
		},
	}
	addOutputFlag(cmd, outputTable, outputTable, outputJSON, outputYAML)
	return cmd
}

func newListMembersSubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members <group>",
		Short: "List the members of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := parseTargetArg("group", args[0])
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *gateway.Session) error {
				members, err := s.MemberList(cmd.Context(), group)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(members))
				for _, m := range members {
					rows = append(rows, []string{formatTarget(m.ID), m.MemberName, string(m.Permission)})
				}
				return writeOutput(cmd, members, []string{"QQ", "Name", "Permission"}, rows)
			})
		},
	}
	addOutputFlag(cmd, outputTable, outputTable, outputJSON, outputYAML)
	return cmd
}
