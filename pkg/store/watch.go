package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventIssuesChanged indicates issue records were added, edited, or removed.
	EventIssuesChanged EventType = iota
	// EventPublicationsChanged indicates publication records changed.
	EventPublicationsChanged
	// EventScheduleChanged indicates scheduled issues changed.
	EventScheduleChanged
	// EventInvalidated signals a change that could not be classified;
	// callers should refresh everything.
	EventInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventIssuesChanged:
		return "issues-changed"
	case EventPublicationsChanged:
		return "publications-changed"
	case EventScheduleChanged:
		return "schedule-changed"
	default:
		return "invalidated"
	}
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel; events are dropped when the consumer falls behind. The
// channel is closed once ctx is done or the watcher fails.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn().Err(err).Msg("watcher close")
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		throttle := newEventThrottle(watchDebounce)
		defer throttle.Stop()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-throttle.Ready():
				for _, ev := range throttle.Drain() {
					select {
					case events <- ev:
					default:
						// Consumer is behind; the next refresh picks the change up.
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Debug().Err(err).Msg("watcher error")
				throttle.Enqueue(EventInvalidated)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if kind := p.handleFSEvent(watcher, watched, evt); kind != eventIgnored {
					throttle.Enqueue(kind)
				}
			}
		}
	}()

	return events, nil
}

// eventIgnored marks bookkeeping files that should not produce events.
const eventIgnored EventType = -1

const watchDebounce = 100 * time.Millisecond

// handleFSEvent classifies evt and starts watching directories diskv
// creates for new key prefixes.
func (p *persistence) handleFSEvent(w *fsnotify.Watcher, watched map[string]struct{}, evt fsnotify.Event) EventType {
	if evt.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			dir := filepath.Clean(evt.Name)
			if _, found := watched[dir]; !found {
				if err := w.Add(dir); err != nil {
					p.log.Warn().Err(err).Str("dir", dir).Msg("watch directory")
				} else {
					watched[dir] = struct{}{}
				}
			}
		}
	}
	return p.kindEvent(evt.Name)
}

// kindEvent maps a diskv path to the change event for its record kind.
func (p *persistence) kindEvent(path string) EventType {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return EventInvalidated
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	switch Kind(parts[0]) {
	case KindIssues:
		return EventIssuesChanged
	case KindPublications:
		return EventPublicationsChanged
	case KindSchedule:
		return EventScheduleChanged
	}
	if strings.HasPrefix(parts[0], modifiedIndexFile) {
		return eventIgnored
	}
	return EventInvalidated
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventThrottle coalesces bursts of filesystem activity so listeners refresh
// once per burst. Ready fires once the debounce delay after the first
// enqueue of a burst has passed; Drain then hands back one event per type.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]struct{}
	delay   time.Duration
	ready   chan struct{}
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]struct{}),
		ready:   make(chan struct{}, 1),
	}
}

func (t *eventThrottle) Enqueue(typ EventType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[typ] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			select {
			case t.ready <- struct{}{}:
			default:
			}
		})
	}
}

func (t *eventThrottle) Ready() <-chan struct{} { return t.ready }

func (t *eventThrottle) Drain() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Event
	for _, typ := range []EventType{EventIssuesChanged, EventPublicationsChanged, EventScheduleChanged, EventInvalidated} {
		if _, ok := t.pending[typ]; ok {
			out = append(out, Event{Type: typ})
		}
	}
	t.pending = make(map[EventType]struct{})
	t.timer = nil
	return out
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
