package annexes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
	"tableflip.dev/bulletin/pkg/workspace"
)

func init() {
	color.NoColor = true
}

func seeded(t *testing.T) *workspace.Workspace {
	t.Helper()
	p, err := store.Load(store.StaticConfig{Path: t.TempDir()}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Import(context.Background(), p, store.Seed{
		Publications: []issue.Publication{
			{ID: "PUB-A", Title: issue.LocalizedText{"en": "Road works"}},
			{ID: "PUB-B", Title: issue.LocalizedText{"en": "Tender"}},
		},
		Issues: []issue.Issue{
			{ID: 5, Annexes: map[string]*issue.AnnexEntry{"PUB-A": nil}},
			{ID: 9, Annexes: map[string]*issue.AnnexEntry{"PUB-A": nil, "PUB-B": nil, "PUB-GONE": nil}},
			{ID: 12},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return workspace.New(p, zerolog.Nop())
}

func TestAnnexes(t *testing.T) {
	var out bytes.Buffer
	a := &Annexes{Workspace: seeded(t), IssueID: 12, Out: &out}
	if err := a.Do(context.Background()); err != nil {
		t.Fatalf("Do() = %v", err)
	}
	got := out.String()
	for _, want := range []string{"2 annexes", "Road works", "#5", "Tender", "#9"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in\n%s", want, got)
		}
	}
	if strings.Contains(got, "PUB-GONE") {
		t.Errorf("unknown publication listed:\n%s", got)
	}
}

func TestAnnexesUnknownIssue(t *testing.T) {
	a := &Annexes{Workspace: seeded(t), IssueID: 40, Out: &bytes.Buffer{}}
	if err := a.Do(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Do() = %v", err)
	}
}

func TestAnnexesExtraLinks(t *testing.T) {
	var out bytes.Buffer
	a := &Annexes{
		Workspace: seeded(t),
		IssueID:   12,
		Extra:     []string{"PUB-B", "PUB-Z", "PUB-Y", "PUB-Z"},
		JSON:      true,
		Out:       &out,
	}
	if err := a.Do(context.Background()); err != nil {
		t.Fatalf("Do() = %v", err)
	}
	var got struct {
		Annexes    []issue.RunningAnnex `json:"annexes"`
		ExtraLinks []string             `json:"extra_links"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(got.Annexes) != 2 {
		t.Fatalf("annexes = %+v", got.Annexes)
	}
	// PUB-B already runs into the issue and PUB-Z keeps its last position.
	if !reflect.DeepEqual(got.ExtraLinks, []string{"PUB-Y", "PUB-Z"}) {
		t.Fatalf("extra links = %v", got.ExtraLinks)
	}
}
