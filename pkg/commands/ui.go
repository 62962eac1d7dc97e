package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	var watch bool
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the scheduling calendar",
		Example: `
bulletin ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load()
			if err != nil {
				return err
			}
			i := ui.UI{
				Persistence:  e.p,
				Log:          e.log,
				ReadyDelay:   e.cfg.ReadyDelay(),
				HorizonYears: e.cfg.HorizonYears(),
				Watch:        watch,
			}
			return i.Do(context.Background())
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", true, "Follow changes made to the store by other processes.")

	topLevel.AddCommand(cmd)
}
