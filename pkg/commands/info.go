package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/runner/info"
	"tableflip.dev/bulletin/pkg/workspace"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the store and what it holds.",
		Example: `
bulletin info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := load()
			if err != nil {
				return err
			}
			s := info.Info{
				Config:    e.cfg,
				Workspace: workspace.New(e.p, e.log),
			}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
