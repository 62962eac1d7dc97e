package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/runner/seed"
)

func addImport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import publications, issues and schedule from a YAML file",
		Example: `
bulletin import seed.yaml
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires exactly one file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := load()
			if err != nil {
				return err
			}
			s := seed.Seed{
				Persistence: e.p,
				File:        args[0],
			}
			return s.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
