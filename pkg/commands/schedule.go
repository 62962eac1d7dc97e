package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/commands/options"
	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/runner/schedule"
	"tableflip.dev/bulletin/pkg/snake"
)

func addSchedule(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List or add scheduled issues",
		Example: `
bulletin schedule list --month=2024-3
bulletin schedule add --cutoff=2024-3-4 --publication=2024-3-8 --title="Spring"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addScheduleList(cmd)
	addScheduleAdd(cmd)

	topLevel.AddCommand(cmd)
}

func addScheduleList(topLevel *cobra.Command) {
	mo := &options.MonthOptions{}
	ido := &options.IDOptions{}
	var calendar bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the issues scheduled in a month",
		Example: `
bulletin schedule list
bulletin schedule list --month=2024-3 --calendar
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load()
			if err != nil {
				return output.HandleError(err)
			}
			month, err := mo.GetMonth(time.Now())
			if err != nil {
				return output.HandleError(err)
			}
			l := schedule.List{
				Source:   e.p,
				Month:    month,
				Calendar: calendar,
				JSON:     output.JSON,
				ShowID:   ido.ShowID,
			}
			err = l.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddMonthArgs(cmd, mo)
	options.AddShowIDArgs(cmd, ido)
	cmd.Flags().BoolVarP(&calendar, "calendar", "c", false, "Show the month as a calendar.")
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

func addScheduleAdd(topLevel *cobra.Command) {
	do := &options.DateOptions{}
	ino := &options.InteractiveOptions{}
	var title, notes string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a new issue",
		Example: `
bulletin schedule add --cutoff=2024-3-4 --publication=2024-3-8
bulletin schedule add -i
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if ino.Interactive {
				err := snake.PromptMissing(cmd,
					snake.Field{Flag: "cutoff", Required: true, Validate: validDay},
					snake.Field{Flag: "publication", Required: true, Validate: validDay},
					snake.Field{Flag: "title"},
					snake.Field{Flag: "notes"},
				)
				if err != nil {
					return output.HandleError(err)
				}
			}

			cutoff, err := do.GetCutoff()
			if err != nil {
				return output.HandleError(err)
			}
			publication, err := do.GetPublication()
			if err != nil {
				return output.HandleError(err)
			}

			e, err := load()
			if err != nil {
				return output.HandleError(err)
			}
			a := schedule.Add{
				Source: e.p,
				Log:    e.log,
				JSON:   output.JSON,
				Issue: issue.ScheduledIssue{
					CutoffDate:      cutoff,
					PublicationDate: publication,
					Title:           title,
					Notes:           notes,
				},
			}
			err = a.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddDateArgs(cmd, do)
	cmd.Flags().StringVar(&title, "title", "", "Title of the issue.")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the issue.")
	options.InteractiveArgs(cmd, ino)
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

func validDay(v string) error {
	_, err := options.ParseDay(v, time.Now())
	return err
}
