package info

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
	"tableflip.dev/bulletin/pkg/workspace"
)

func TestInfo(t *testing.T) {
	t.Setenv("BULLETIN_CONFIG_PATH", "")
	cfg := store.StaticConfig{Path: t.TempDir()}
	p, err := store.Load(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := p.StoreIssue(ctx, issue.Issue{ID: 3}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	n := &Info{Config: cfg, Workspace: workspace.New(p, zerolog.Nop()), Out: &out}
	if err := n.Do(ctx); err != nil {
		t.Fatalf("Do() = %v", err)
	}
	got := out.String()
	for _, want := range []string{"env var not set", cfg.Path, "Issues:       1", "Current issue: none scheduled", "issues: 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
}
