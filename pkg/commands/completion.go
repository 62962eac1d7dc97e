package commands

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(bulletin completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(bulletin completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

func publicationCompletions(toComplete string) []string {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil
	}
	p, err := store.Load(cfg, zerolog.Nop())
	if err != nil {
		return nil
	}
	pubs, err := p.Publications(context.Background())
	if err != nil {
		return nil
	}
	byID := func(a, b store.Item[string, issue.Publication]) bool { return a.Key < b.Key }
	var out []string
	for _, pub := range store.NewQuerySet(pubs).OrderBy(byID).All() {
		if strings.HasPrefix(pub.ID, toComplete) {
			out = append(out, pub.ID)
		}
	}
	return out
}
