package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/liteclaw/mirai/internal/schedule"
)

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage scheduled messages",
		Long: `Manage scheduled messages. Jobs are sent by 'mirai bot run' when
schedule.enabled is set; a running bot picks up changes on restart.`,
	}

	cmd.AddCommand(newScheduleAddSubCommand())
	cmd.AddCommand(newScheduleListSubCommand())
	cmd.AddCommand(newScheduleRemoveSubCommand())
	cmd.AddCommand(newScheduleToggleSubCommand("enable", true))
	cmd.AddCommand(newScheduleToggleSubCommand("disable", false))

	return cmd
}

func openStore(cmd *cobra.Command) (*schedule.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return schedule.NewStore(cfg.SchedulePath()), nil
}

func newScheduleAddSubCommand() *cobra.Command {
	var (
		name           string
		imageURL       string
		deleteAfterRun bool
	)

	cmd := &cobra.Command{
		Use:   "add <channel> <when> [text...]",
		Short: "Schedule a message",
		Long: `Schedule a message. <when> is a cron expression (five fields, or six with
seconds), a descriptor such as @daily, "@every <duration>", or an RFC 3339
time for a one-shot message.`,
		Example: `  mirai schedule add group:123456 "0 9 * * 1-5" "good morning"
  mirai schedule add friend:10001 "@every 1h" "drink water"
  mirai schedule add group:123456 2030-01-01T00:00:00+08:00 "happy new year" --delete-after-run`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := schedule.ParseSchedule(args[1])
			if err != nil {
				return err
			}

			job := schedule.NewJob(name, sched, schedule.Payload{
				Channel:  args[0],
				Text:     strings.Join(args[2:], " "),
				ImageURL: imageURL,
			})
			job.DeleteAfterRun = deleteAfterRun
			if err := job.Validate(); err != nil {
				return err
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Update(func(jobs []*schedule.Job) ([]*schedule.Job, error) {
				return append(jobs, job), nil
			}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added job %s (%s)\n", job.ID, job.Schedule)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Job name")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "Attach an image by URL")
	cmd.Flags().BoolVar(&deleteAfterRun, "delete-after-run", false, "Remove the job after it runs once")

	return cmd
}

func newScheduleListSubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			jobs, err := store.Load()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(jobs))
			for _, j := range jobs {
				rows = append(rows, []string{
					j.ID,
					j.Name,
					j.Schedule.String(),
					j.Payload.Channel,
					fmt.Sprintf("%t", j.Enabled),
					formatMillis(j.State.NextRunAtMs),
					j.State.LastStatus,
				})
			}
			return writeOutput(cmd, jobs, []string{"ID", "Name", "Schedule", "Channel", "Enabled", "Next Run", "Last Status"}, rows)
		},
	}
	addOutputFlag(cmd, outputTable, outputTable, outputJSON, outputYAML)
	return cmd
}

func newScheduleRemoveSubCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a scheduled message",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			id := args[0]
			if err := store.Update(func(jobs []*schedule.Job) ([]*schedule.Job, error) {
				for i, j := range jobs {
					if j.ID == id {
						return append(jobs[:i], jobs[i+1:]...), nil
					}
				}
				return nil, fmt.Errorf("%w: %s", schedule.ErrJobNotFound, id)
			}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", id)
			return nil
		},
	}
}

func newScheduleToggleSubCommand(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a scheduled message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			id := args[0]
			if err := store.Update(func(jobs []*schedule.Job) ([]*schedule.Job, error) {
				for _, j := range jobs {
					if j.ID == id {
						j.Enabled = enabled
						j.UpdatedAtMs = time.Now().UnixMilli()
						return jobs, nil
					}
				}
				return nil, fmt.Errorf("%w: %s", schedule.ErrJobNotFound, id)
			}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Job %s %sd\n", id, use)
			return nil
		},
	}
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format(time.RFC3339)
}
