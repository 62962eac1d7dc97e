package schedule

import (
	"sort"

	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/store"
)

// Token tags a month fetch. Only the response carrying the current token is
// applied; anything older is stale and dropped.
type Token uint64

// MonthCache holds the scheduled issues fetched for the selected month.
//
// The entries slice is replaced wholesale on every applied fetch and never
// modified in place, so copies of a MonthCache may share it safely.
type MonthCache struct {
	month    issue.Date
	token    Token
	fetching bool
	settled  bool
	entries  []issue.ScheduledIssue
	err      error
}

// SetMonth starts a fetch for month, superseding any outstanding one.
func (c *MonthCache) SetMonth(month issue.Date) Token {
	c.month = month.MonthStart()
	return c.Refetch()
}

// Refetch starts a new fetch for the current month.
func (c *MonthCache) Refetch() Token {
	c.token++
	c.fetching = true
	c.settled = false
	return c.token
}

// Apply replaces the snapshot with entries when token is current. Entries
// are ordered by id.
func (c *MonthCache) Apply(token Token, entries store.Index[int, issue.ScheduledIssue]) bool {
	if token != c.token {
		return false
	}
	ids := make([]int, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	snapshot := make([]issue.ScheduledIssue, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, entries[id])
	}
	c.entries = snapshot
	c.fetching = false
	c.err = nil
	return true
}

// Fail records a fetch error when token is current. The previous snapshot is
// kept.
func (c *MonthCache) Fail(token Token, err error) bool {
	if token != c.token {
		return false
	}
	c.fetching = false
	c.err = err
	return true
}

// MarkReady ends the settling period that follows a completed fetch.
func (c *MonthCache) MarkReady(token Token) bool {
	if token != c.token || c.fetching {
		return false
	}
	c.settled = true
	return true
}

// Ready reports whether the schedule is settled and open for editing.
func (c MonthCache) Ready() bool {
	return !c.fetching && c.settled
}

// Fetching reports whether a fetch is outstanding.
func (c MonthCache) Fetching() bool { return c.fetching }

// Month returns the first day of the selected month.
func (c MonthCache) Month() issue.Date { return c.month }

// Token returns the token of the latest fetch.
func (c MonthCache) Token() Token { return c.token }

// Err returns the error of the last fetch, if it failed.
func (c MonthCache) Err() error { return c.err }

// Entries returns a copy of the snapshot.
func (c MonthCache) Entries() []issue.ScheduledIssue {
	return append([]issue.ScheduledIssue(nil), c.entries...)
}

// FindByPublicationDate returns the first entry published on day.
func (c MonthCache) FindByPublicationDate(day issue.Date) (issue.ScheduledIssue, bool) {
	for _, s := range c.entries {
		if s.PublicationDate.SameDay(day) {
			return s, true
		}
	}
	return issue.ScheduledIssue{}, false
}

// FindByCutoffDate returns the first entry whose cutoff falls on day.
func (c MonthCache) FindByCutoffDate(day issue.Date) (issue.ScheduledIssue, bool) {
	for _, s := range c.entries {
		if s.CutoffDate.SameDay(day) {
			return s, true
		}
	}
	return issue.ScheduledIssue{}, false
}

// FindByDate checks publication dates before cutoff dates.
func (c MonthCache) FindByDate(day issue.Date) (issue.ScheduledIssue, bool) {
	if s, ok := c.FindByPublicationDate(day); ok {
		return s, true
	}
	return c.FindByCutoffDate(day)
}
