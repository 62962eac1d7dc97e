package annex

import (
	"errors"
	"reflect"
	"testing"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
)

func datePtr(s string) *issue.Date {
	d := issue.MustDate(s)
	return &d
}

func fixture() (store.Index[int, issue.Issue], store.Index[string, issue.Publication]) {
	issues := store.Index[int, issue.Issue]{
		5: {ID: 5, Annexes: map[string]*issue.AnnexEntry{"PUB-A": nil}},
		9: {ID: 9, Annexes: map[string]*issue.AnnexEntry{
			"PUB-A": {PositionOn: datePtr("2020-01-01")},
			"PUB-B": nil,
		}},
		12: {ID: 12, Annexes: map[string]*issue.AnnexEntry{"PUB-C": nil}},
	}
	pubs := store.Index[string, issue.Publication]{
		"PUB-A": {ID: "PUB-A", Title: issue.LocalizedText{"en": "A"}},
		"PUB-B": {ID: "PUB-B", Title: issue.LocalizedText{"en": "B"}},
		"PUB-C": {ID: "PUB-C", Title: issue.LocalizedText{"en": "C"}},
	}
	return issues, pubs
}

type summary struct {
	pub      string
	annexed  int
	position string
}

func summarize(in []issue.RunningAnnex) []summary {
	out := make([]summary, 0, len(in))
	for _, r := range in {
		pos := ""
		if r.PositionOn != nil {
			pos = r.PositionOn.String()
		}
		out = append(out, summary{pub: r.Publication.ID, annexed: r.AnnexedTo.ID, position: pos})
	}
	return out
}

func TestResolveEarliestWins(t *testing.T) {
	issues, pubs := fixture()
	got := summarize(Resolve(issue.Issue{ID: 12}, issues, pubs))
	want := []summary{
		{pub: "PUB-A", annexed: 5},
		{pub: "PUB-B", annexed: 9},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestResolveOnlyUsesEarlierIssues(t *testing.T) {
	issues, pubs := fixture()
	for _, target := range []int{1, 5, 6, 9, 10, 12, 13, 100} {
		for _, r := range Resolve(issue.Issue{ID: target}, issues, pubs) {
			if r.AnnexedTo.ID >= target {
				t.Fatalf("target %d: annexed to %d", target, r.AnnexedTo.ID)
			}
		}
	}
	if got := Resolve(issue.Issue{ID: 5}, issues, pubs); len(got) != 0 {
		t.Fatalf("expected nothing before issue 5, got %+v", got)
	}
	got := summarize(Resolve(issue.Issue{ID: 13}, issues, pubs))
	if len(got) != 3 || got[2].pub != "PUB-C" || got[2].annexed != 12 {
		t.Fatalf("unexpected result for 13: %+v", got)
	}
}

func TestResolveSkipsUnknownPublications(t *testing.T) {
	issues, pubs := fixture()
	issues[7] = issue.Issue{ID: 7, Annexes: map[string]*issue.AnnexEntry{
		"PUB-GONE": nil,
		"PUB-B":    {PositionOn: datePtr("2019-05-05")},
	}}
	got := summarize(Resolve(issue.Issue{ID: 12}, issues, pubs))
	want := []summary{
		{pub: "PUB-A", annexed: 5},
		{pub: "PUB-B", annexed: 7, position: "2019-05-05"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestResolveIsPure(t *testing.T) {
	issues, pubs := fixture()
	before := Resolve(issue.Issue{ID: 13}, issues, pubs)

	snapshot := make(map[int]issue.Issue, len(issues))
	for id, i := range issues {
		snapshot[id] = i.Clone()
	}

	before[0].AnnexedTo.Annexes["PUB-A"] = &issue.AnnexEntry{PositionOn: datePtr("1999-01-01")}
	before[0].Publication.Title["en"] = "mutated"

	after := Resolve(issue.Issue{ID: 13}, issues, pubs)
	if !reflect.DeepEqual(summarize(after), []summary{
		{pub: "PUB-A", annexed: 5},
		{pub: "PUB-B", annexed: 9},
		{pub: "PUB-C", annexed: 12},
	}) {
		t.Fatalf("unexpected second result %+v", summarize(after))
	}
	if pubs["PUB-A"].Title["en"] != "A" {
		t.Fatalf("publication index mutated through result")
	}
	for id, i := range issues {
		if !reflect.DeepEqual(i, snapshot[id]) {
			t.Fatalf("issue %d mutated", id)
		}
	}
}

func TestResolveFilter(t *testing.T) {
	issues, pubs := fixture()
	got := summarize(Resolve(issue.Issue{ID: 12}, issues, pubs, "PUB-A"))
	if want := []summary{{pub: "PUB-A", annexed: 5}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	if got := Resolve(issue.Issue{ID: 12}, issues, pubs, "PUB-Z"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestForIssueIDAndLatest(t *testing.T) {
	issues, pubs := fixture()
	if _, err := ForIssueID(11, issues, pubs); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := ForIssueID(12, issues, pubs)
	if err != nil {
		t.Fatalf("for issue id: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two annexes, got %+v", got)
	}
	latest, ok := Latest(12, issues, pubs, "PUB-B")
	if !ok || latest.AnnexedTo.ID != 9 {
		t.Fatalf("unexpected latest %+v (ok=%v)", latest, ok)
	}
	// PUB-A is annexed to 5 and again to 9; the earliest issue is reported.
	first, ok := Latest(12, issues, pubs, "PUB-A")
	if !ok || first.AnnexedTo.ID != 5 || first.PositionOn != nil {
		t.Fatalf("PUB-A should resolve to issue 5 without position, got %+v (ok=%v)", first, ok)
	}
	if _, ok := Latest(12, issues, pubs, "PUB-C"); ok {
		t.Fatalf("PUB-C is only annexed to issue 12 itself")
	}
}

func TestResolveKeepsRecordedOrderWithinIssue(t *testing.T) {
	first := issue.Issue{ID: 1}
	first.SetAnnex("PUB-C", nil)
	first.SetAnnex("PUB-A", nil)
	second := issue.Issue{ID: 2}
	second.SetAnnex("PUB-B", nil)
	second.SetAnnex("PUB-A", &issue.AnnexEntry{PositionOn: datePtr("2021-01-01")})

	_, pubs := fixture()
	issues := store.Index[int, issue.Issue]{1: first, 2: second}
	got := summarize(Resolve(issue.Issue{ID: 3}, issues, pubs))
	want := []summary{
		{pub: "PUB-C", annexed: 1},
		{pub: "PUB-A", annexed: 1},
		{pub: "PUB-B", annexed: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}
