package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
)

func init() {
	color.NoColor = true
}

func loadStore(t *testing.T) store.Persistence {
	t.Helper()
	p, err := store.Load(store.StaticConfig{Path: t.TempDir()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Load() = %v", err)
	}
	return p
}

func TestAddThenList(t *testing.T) {
	ctx := context.Background()
	p := loadStore(t)

	var out bytes.Buffer
	add := &Add{
		Source: p,
		Log:    zerolog.Nop(),
		Issue: issue.ScheduledIssue{
			CutoffDate:      issue.Day(2024, time.March, 4),
			PublicationDate: issue.Day(2024, time.March, 8),
			Title:           "Spring",
			Notes:           "Remember the supplement.",
		},
		Out: &out,
	}
	if err := add.Do(ctx); err != nil {
		t.Fatalf("Add.Do() = %v", err)
	}
	if !strings.Contains(out.String(), "Issue #1: Spring") {
		t.Fatalf("add output:\n%s", out.String())
	}

	out.Reset()
	list := &List{Source: p, Month: issue.Day(2024, time.March, 20), JSON: true, Out: &out}
	if err := list.Do(ctx); err != nil {
		t.Fatalf("List.Do() = %v", err)
	}
	var got []issue.ScheduledIssue
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if len(got) != 1 || got[0].Title != "Spring" || got[0].IDValue() != 1 {
		t.Fatalf("listed %+v", got)
	}

	out.Reset()
	list = &List{Source: p, Month: issue.Day(2024, time.March, 1), Calendar: true, ShowID: true, Out: &out}
	if err := list.Do(ctx); err != nil {
		t.Fatalf("List.Do() = %v", err)
	}
	for _, want := range []string{"March 2024", "1 issue", "2024-03-08"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in\n%s", want, out.String())
		}
	}
}

func TestAddConflict(t *testing.T) {
	ctx := context.Background()
	p := loadStore(t)
	first := issue.ScheduledIssue{CutoffDate: issue.Day(2024, time.March, 4), PublicationDate: issue.Day(2024, time.March, 8)}
	if err := (&Add{Source: p, Issue: first, Out: &bytes.Buffer{}}).Do(ctx); err != nil {
		t.Fatal(err)
	}
	second := issue.ScheduledIssue{CutoffDate: issue.Day(2024, time.March, 5), PublicationDate: issue.Day(2024, time.March, 8)}
	err := (&Add{Source: p, Issue: second, Out: &bytes.Buffer{}}).Do(ctx)
	msgs := store.MessagesOf(err)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "date conflict") {
		t.Fatalf("Do() = %v", err)
	}
}
