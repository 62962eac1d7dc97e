// Package notify delivers fire-and-forget notifications between components.
package notify

import (
	"fmt"
	"sync"
)

// Kind identifies a notification.
type Kind string

const (
	NewIssueScheduled   Kind = "scheduled-new-issue"
	CurrentIssueChanged Kind = "update-current-issue"
	IssuesChanged       Kind = "issues-changed"
	PublicationsChanged Kind = "publications-changed"
	RemoteStorageStatus Kind = "remote-storage-status"
)

// Notification is a single message on the bus.
type Notification struct {
	Kind Kind
	// HasLocalChanges is only meaningful for RemoteStorageStatus.
	HasLocalChanges bool
}

// Describe renders the notification for logs.
func (n Notification) Describe() string {
	if n.Kind == RemoteStorageStatus {
		return fmt.Sprintf(`kind:%q local_changes:%t`, n.Kind, n.HasLocalChanges)
	}
	return fmt.Sprintf(`kind:%q`, n.Kind)
}

// Publisher is implemented by anything that accepts notifications.
type Publisher interface {
	Publish(n Notification)
}

// Bus fans notifications out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the notification.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Notification
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Notification)}
}

// Subscribe registers a listener with the given buffer size. The returned
// cancel func unregisters it and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Notification, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish implements Publisher.
func (b *Bus) Publish(n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Discard drops every notification.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Notification) {}
