package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/commands/options"
	"tableflip.dev/bulletin/pkg/runner/annexes"
	"tableflip.dev/bulletin/pkg/workspace"
)

func addAnnexes(topLevel *cobra.Command) {
	ido := &options.IDOptions{}
	iso := &options.IssueOptions{}
	var extra []string

	cmd := &cobra.Command{
		Use:   "annexes [ISSUE]",
		Short: "Show the publications running into an issue",
		Example: `
bulletin annexes
bulletin annexes 12
bulletin annexes --issue=12 --publication=PUB-A
bulletin annexes --extra=PUB-C --extra=PUB-D
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("accepts at most one issue number")
			}
			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid issue number %q", args[0])
				}
				iso.IssueID = id
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := load()
			if err != nil {
				return output.HandleError(err)
			}
			ws := workspace.New(e.p, e.log)
			ctx := context.Background()

			id := iso.IssueID
			if !cmd.Flags().Changed("issue") && len(args) == 0 {
				if err := ws.Refresh(ctx); err != nil {
					return output.HandleError(err)
				}
				current, ok := ws.CurrentIssueID()
				if !ok {
					return output.HandleError(errors.New("no current issue, pass --issue"))
				}
				id = current
			}

			a := annexes.Annexes{
				Workspace:     ws,
				IssueID:       id,
				PublicationID: iso.PublicationID,
				Extra:         extra,
				Lang:          e.cfg.Language(),
				ShowID:        ido.ShowID,
				JSON:          output.JSON,
			}
			err = a.Do(ctx)
			return output.HandleError(err)
		},
	}

	options.AddIssueArgs(cmd, iso)
	options.AddShowIDArgs(cmd, ido)
	cmd.Flags().StringArrayVar(&extra, "extra", nil, "Publication id to link after the running annexes. Repeatable.")
	options.AddOutputArg(cmd, output)

	for _, flagName := range []string{"publication", "extra"} {
		_ = cmd.RegisterFlagCompletionFunc(flagName, func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return publicationCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
		})
	}

	topLevel.AddCommand(cmd)
}
