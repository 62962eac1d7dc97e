package store

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/bulletin/pkg/issue"
)

func TestPersistenceWatchEmitsKindChanges(t *testing.T) {
	p := loadTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := p.StorePublication(ctx, issue.Publication{ID: "PUB-A"}); err != nil {
		t.Fatalf("store publication: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			switch evt.Type {
			case EventPublicationsChanged, EventInvalidated:
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for publications change event")
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	throttle := newEventThrottle(20 * time.Millisecond)
	defer throttle.Stop()

	for i := 0; i < 5; i++ {
		throttle.Enqueue(EventIssuesChanged)
	}
	throttle.Enqueue(EventScheduleChanged)

	select {
	case <-throttle.Ready():
	case <-time.After(time.Second):
		t.Fatalf("throttle never fired")
	}
	seen := throttle.Drain()
	if len(seen) != 2 || seen[0].Type != EventIssuesChanged || seen[1].Type != EventScheduleChanged {
		t.Fatalf("unexpected events %v", seen)
	}
	if rest := throttle.Drain(); len(rest) != 0 {
		t.Fatalf("drain should reset pending, got %v", rest)
	}

	select {
	case <-throttle.Ready():
		t.Fatalf("unexpected second fire")
	case <-time.After(60 * time.Millisecond):
	}
}
