// Package annex computes the publications running alongside an issue.
package annex

import (
	"fmt"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
)

// Resolve runs through the issues preceding target, oldest first, and lists
// every publication annexed to them. The first issue that annexed a
// publication wins; later annexations of the same publication are ignored.
// Publication ids missing from pubs are skipped.
//
// When a filter is given, only the entry for that publication id is
// returned (at most one element). Only the first filter value is used.
//
// Resolve does not modify its inputs and retains no references to them
// beyond the values copied into the result.
func Resolve(
	target issue.Issue,
	issues store.Index[int, issue.Issue],
	pubs store.Index[string, issue.Publication],
	filter ...string,
) []issue.RunningAnnex {
	only := ""
	if len(filter) > 0 {
		only = filter[0]
	}

	past := store.NewQuerySet(issues).
		OrderBy(store.IntKeyAscending[issue.Issue]).
		Filter(func(it store.Item[int, issue.Issue]) bool { return it.Value.ID < target.ID }).
		All()

	var running []issue.RunningAnnex
	seen := make(map[string]struct{})
	for _, pastIssue := range past {
		for _, pubID := range pastIssue.AnnexedPublicationIDs() {
			if only != "" && pubID != only {
				continue
			}
			if _, dup := seen[pubID]; dup {
				continue
			}
			pub, ok := store.Lookup(pubs, pubID)
			if !ok {
				continue
			}
			seen[pubID] = struct{}{}

			var position *issue.Date
			if entry := pastIssue.Annexes[pubID]; entry != nil && entry.PositionOn != nil {
				pos := *entry.PositionOn
				position = &pos
			}
			running = append(running, issue.RunningAnnex{
				Publication: clonePublication(pub),
				AnnexedTo:   pastIssue.Clone(),
				PositionOn:  position,
			})
			if only != "" {
				return running
			}
		}
	}
	if running == nil {
		running = []issue.RunningAnnex{}
	}
	return running
}

// ForIssueID resolves the issue by id and returns its running annexes.
func ForIssueID(
	id int,
	issues store.Index[int, issue.Issue],
	pubs store.Index[string, issue.Publication],
	filter ...string,
) ([]issue.RunningAnnex, error) {
	target, ok := store.Lookup(issues, id)
	if !ok {
		return nil, fmt.Errorf("annex: issue %d: %w", id, store.ErrNotFound)
	}
	return Resolve(target, issues, pubs, filter...), nil
}

// Latest returns the running annex of pubID for the given issue. Despite
// the name it reports the earliest earlier issue that annexed pubID, as
// Resolve does.
func Latest(
	id int,
	issues store.Index[int, issue.Issue],
	pubs store.Index[string, issue.Publication],
	pubID string,
) (issue.RunningAnnex, bool) {
	running, err := ForIssueID(id, issues, pubs, pubID)
	if err != nil || len(running) == 0 {
		return issue.RunningAnnex{}, false
	}
	return running[0], true
}

func clonePublication(p issue.Publication) issue.Publication {
	out := issue.Publication{ID: p.ID}
	if p.Title != nil {
		out.Title = make(issue.LocalizedText, len(p.Title))
		for k, v := range p.Title {
			out.Title[k] = v
		}
	}
	return out
}
