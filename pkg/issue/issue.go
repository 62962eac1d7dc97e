// Package issue defines the bulletin records: editions, the publications
// annexed to them, and the schedule of upcoming editions.
package issue

import (
	"slices"
	"sort"
)

// AnnexEntry records a publication annexed to an issue. A nil PositionOn
// means the publication is annexed without a position date.
type AnnexEntry struct {
	PositionOn *Date `json:"position_on" yaml:"position_on"`
}

// Issue is one numbered edition of the bulletin.
//
// Annexes distinguishes three states per publication id: the key is absent
// (not annexed), present with a nil entry, or present with an entry that may
// carry a position date.
type Issue struct {
	ID      int                    `json:"id" yaml:"id"`
	Annexes map[string]*AnnexEntry `json:"annexes,omitempty" yaml:"annexes,omitempty"`
	// AnnexOrder lists Annexes keys in the order they were recorded. It is
	// filled when decoding and written back when encoding.
	AnnexOrder []string `json:"-" yaml:"-"`
}

// AnnexedPublicationIDs returns the ids annexed to the issue in the order
// they were recorded. Keys missing from AnnexOrder follow in ascending
// order.
func (i Issue) AnnexedPublicationIDs() []string {
	ids := make([]string, 0, len(i.Annexes))
	seen := make(map[string]struct{}, len(i.Annexes))
	for _, id := range i.AnnexOrder {
		if _, ok := i.Annexes[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	var rest []string
	for id := range i.Annexes {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// SetAnnex records entry for publicationID, appending new ids to
// AnnexOrder.
func (i *Issue) SetAnnex(publicationID string, entry *AnnexEntry) {
	if i.Annexes == nil {
		i.Annexes = make(map[string]*AnnexEntry)
	}
	if _, ok := i.Annexes[publicationID]; !ok {
		i.AnnexOrder = append(i.AnnexOrder, publicationID)
	}
	i.Annexes[publicationID] = entry
}

// Annex reports the entry recorded for a publication and whether the key is
// present at all.
func (i Issue) Annex(publicationID string) (*AnnexEntry, bool) {
	entry, ok := i.Annexes[publicationID]
	return entry, ok
}

// Clone returns a deep copy of the issue.
func (i Issue) Clone() Issue {
	out := Issue{ID: i.ID, AnnexOrder: slices.Clone(i.AnnexOrder)}
	if i.Annexes == nil {
		return out
	}
	out.Annexes = make(map[string]*AnnexEntry, len(i.Annexes))
	for id, entry := range i.Annexes {
		if entry == nil {
			out.Annexes[id] = nil
			continue
		}
		cp := &AnnexEntry{}
		if entry.PositionOn != nil {
			pos := *entry.PositionOn
			cp.PositionOn = &pos
		}
		out.Annexes[id] = cp
	}
	return out
}

// RunningAnnex describes a publication carried alongside an issue, together
// with the earlier issue it was first annexed to.
type RunningAnnex struct {
	Publication Publication `json:"publication"`
	AnnexedTo   Issue       `json:"annexed_to"`
	PositionOn  *Date       `json:"position_on"`
}
