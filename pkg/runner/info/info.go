package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/bulletin/pkg/store"
	"tableflip.dev/bulletin/pkg/workspace"
)

type Info struct {
	Config    store.Config
	Workspace *workspace.Workspace
	Out       io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv("BULLETIN_CONFIG_PATH"); override != "" {
		fmt.Fprintln(out, "BULLETIN_CONFIG_PATH found on env, using", override)
	} else {
		fmt.Fprintln(out, "BULLETIN_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Config.path:    ", n.Config.BasePath())
	fmt.Fprintln(out, "Config.language:", n.Config.Language())
	fmt.Fprintln(out, "Config.horizon: ", n.Config.HorizonYears(), "year(s)")

	if n.Workspace == nil {
		return fmt.Errorf("failed to create workspace")
	}
	if err := n.Workspace.Refresh(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "Publications: %d\n", len(n.Workspace.Publications()))
	fmt.Fprintf(out, "Issues:       %d\n", len(n.Workspace.Issues()))
	if id, ok := n.Workspace.CurrentIssueID(); ok {
		fmt.Fprintf(out, "Current issue: #%d\n", id)
	} else {
		fmt.Fprintln(out, "Current issue: none scheduled")
	}

	modified := n.Workspace.Modified()
	if !modified.HasChanges() {
		fmt.Fprintln(out, "Local changes: none")
		return nil
	}
	fmt.Fprintln(out, "Local changes:")
	for _, kind := range []store.Kind{store.KindIssues, store.KindPublications, store.KindSchedule} {
		if ids := modified[kind]; len(ids) > 0 {
			fmt.Fprintf(out, "  %s: %d\n", kind, len(ids))
		}
	}
	return nil
}
