// Package workspace keeps an in-memory snapshot of issues and publications
// and keeps it current as the store changes underneath it.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/bulletin/pkg/annex"
	"tableflip.dev/bulletin/pkg/issue"
	"tableflip.dev/bulletin/pkg/notify"
	"tableflip.dev/bulletin/pkg/store"
)

// Source is the part of store.Persistence a workspace reads from.
type Source interface {
	Issues(ctx context.Context) (store.Index[int, issue.Issue], error)
	Publications(ctx context.Context) (store.Index[string, issue.Publication], error)
	CurrentIssueID(ctx context.Context, now time.Time) (*int, error)
	Modified(ctx context.Context) store.ModifiedStatus
}

// Workspace is safe for concurrent use. Readers get copies or values the
// workspace will never mutate: every refresh swaps in fresh indexes.
type Workspace struct {
	src Source
	log zerolog.Logger
	now func() time.Time

	mu       sync.RWMutex
	issues   store.Index[int, issue.Issue]
	pubs     store.Index[string, issue.Publication]
	current  *int
	modified store.ModifiedStatus
}

// New returns an empty workspace. Call Refresh to load it.
func New(src Source, log zerolog.Logger) *Workspace {
	return &Workspace{
		src:    src,
		log:    log,
		now:    time.Now,
		issues: store.Index[int, issue.Issue]{},
		pubs:   store.Index[string, issue.Publication]{},
	}
}

// Refresh reloads everything from the source.
func (w *Workspace) Refresh(ctx context.Context) error {
	if err := w.refreshIssues(ctx); err != nil {
		return err
	}
	if err := w.refreshPublications(ctx); err != nil {
		return err
	}
	if _, err := w.refreshCurrent(ctx); err != nil {
		return err
	}
	w.refreshModified(ctx)
	return nil
}

func (w *Workspace) refreshIssues(ctx context.Context) error {
	issues, err := w.src.Issues(ctx)
	if err != nil {
		return fmt.Errorf("workspace: load issues: %w", err)
	}
	w.mu.Lock()
	w.issues = issues
	w.mu.Unlock()
	w.log.Debug().Int("issues", len(issues)).Msg("refreshed issues")
	return nil
}

func (w *Workspace) refreshPublications(ctx context.Context) error {
	pubs, err := w.src.Publications(ctx)
	if err != nil {
		return fmt.Errorf("workspace: load publications: %w", err)
	}
	w.mu.Lock()
	w.pubs = pubs
	w.mu.Unlock()
	w.log.Debug().Int("publications", len(pubs)).Msg("refreshed publications")
	return nil
}

// refreshCurrent reports whether the current issue changed.
func (w *Workspace) refreshCurrent(ctx context.Context) (bool, error) {
	id, err := w.src.CurrentIssueID(ctx, w.now())
	if err != nil {
		return false, fmt.Errorf("workspace: current issue: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := !sameID(w.current, id)
	w.current = id
	return changed, nil
}

func (w *Workspace) refreshModified(ctx context.Context) bool {
	status := w.src.Modified(ctx)
	w.mu.Lock()
	w.modified = status
	w.mu.Unlock()
	return status.HasChanges()
}

func sameID(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Listen refreshes the workspace as notifications arrive until ctx is done
// or the channel closes.
func (w *Workspace) Listen(ctx context.Context, ch <-chan notify.Notification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			w.handle(ctx, n)
		}
	}
}

func (w *Workspace) handle(ctx context.Context, n notify.Notification) {
	log := w.log.With().Str("notification", n.Describe()).Logger()
	var err error
	switch n.Kind {
	case notify.IssuesChanged:
		err = w.refreshIssues(ctx)
	case notify.PublicationsChanged:
		err = w.refreshPublications(ctx)
	case notify.NewIssueScheduled, notify.CurrentIssueChanged:
		_, err = w.refreshCurrent(ctx)
	case notify.RemoteStorageStatus:
		w.refreshModified(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("refresh")
		return
	}
	log.Debug().Msg("handled")
}

// Bridge turns store watch events into notifications on pub until ctx is
// done or events closes. Every event is followed by a remote storage status
// carrying the local change flag.
func (w *Workspace) Bridge(ctx context.Context, events <-chan store.Event, pub notify.Publisher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case store.EventIssuesChanged:
				pub.Publish(notify.Notification{Kind: notify.IssuesChanged})
			case store.EventPublicationsChanged:
				pub.Publish(notify.Notification{Kind: notify.PublicationsChanged})
			case store.EventScheduleChanged:
				changed, err := w.refreshCurrent(ctx)
				if err != nil {
					w.log.Error().Err(err).Msg("refresh current issue")
				} else if changed {
					pub.Publish(notify.Notification{Kind: notify.CurrentIssueChanged})
				}
			case store.EventInvalidated:
				if err := w.Refresh(ctx); err != nil {
					w.log.Error().Err(err).Msg("refresh")
				}
				pub.Publish(notify.Notification{Kind: notify.IssuesChanged})
				pub.Publish(notify.Notification{Kind: notify.PublicationsChanged})
			}
			pub.Publish(notify.Notification{
				Kind:            notify.RemoteStorageStatus,
				HasLocalChanges: w.src.Modified(ctx).HasChanges(),
			})
		}
	}
}

// Issues returns the issue index. Callers must not modify it.
func (w *Workspace) Issues() store.Index[int, issue.Issue] {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.issues
}

// Publications returns the publication index. Callers must not modify it.
func (w *Workspace) Publications() store.Index[string, issue.Publication] {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pubs
}

// Publication looks up a publication by id.
func (w *Workspace) Publication(id string) (issue.Publication, bool) {
	return store.Lookup(w.Publications(), id)
}

// CurrentIssueID is the id of the next issue to be published, if any.
func (w *Workspace) CurrentIssueID() (int, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.current == nil {
		return 0, false
	}
	return *w.current, true
}

// RunningAnnexes returns the publications running into issue id. An optional
// publication id narrows the result to that publication.
func (w *Workspace) RunningAnnexes(id int, publicationID ...string) ([]issue.RunningAnnex, error) {
	w.mu.RLock()
	issues, pubs := w.issues, w.pubs
	w.mu.RUnlock()
	return annex.ForIssueID(id, issues, pubs, publicationID...)
}

// LatestAnnex returns the running annex of pubID for issue id: the earliest
// issue before id that annexed it, with that issue's position date.
func (w *Workspace) LatestAnnex(id int, pubID string) (issue.RunningAnnex, bool) {
	w.mu.RLock()
	issues, pubs := w.issues, w.pubs
	w.mu.RUnlock()
	return annex.Latest(id, issues, pubs, pubID)
}

// Modified returns the objects changed locally since the last sync.
func (w *Workspace) Modified() store.ModifiedStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(store.ModifiedStatus, len(w.modified))
	for k, v := range w.modified {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// HasLocalChanges reports whether anything is waiting to be synced.
func (w *Workspace) HasLocalChanges() bool {
	return w.Modified().HasChanges()
}
