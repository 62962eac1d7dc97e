package notify

import "testing"

func TestBusFansOutWithoutBlocking(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(1)
	b, cancelB := bus.Subscribe(4)
	defer cancelB()

	bus.Publish(Notification{Kind: IssuesChanged})
	bus.Publish(Notification{Kind: PublicationsChanged})

	if got := <-a; got.Kind != IssuesChanged {
		t.Fatalf("subscriber a: unexpected %v", got.Describe())
	}
	select {
	case n := <-a:
		t.Fatalf("subscriber a should have dropped the second notification, got %v", n.Describe())
	default:
	}
	if got := <-b; got.Kind != IssuesChanged {
		t.Fatalf("subscriber b: unexpected %v", got.Describe())
	}
	if got := <-b; got.Kind != PublicationsChanged {
		t.Fatalf("subscriber b: unexpected %v", got.Describe())
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	bus.Publish(Notification{Kind: RemoteStorageStatus, HasLocalChanges: true})
	if got := <-b; !got.HasLocalChanges {
		t.Fatalf("expected local changes flag")
	}
}
