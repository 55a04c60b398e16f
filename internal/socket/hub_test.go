// server/internal/socket/hub_test.go
package socket

import "testing"

func newTestClient(id string) *Client {
	return &Client{ID: id, UserID: "user-" + id, Role: "driver", Send: make(chan Event, sendBuffer)}
}

func TestRegisterAndJoin(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1")
	hub.Register(client)

	if _, ok := hub.Client("c1"); !ok {
		t.Fatal("registered client not found")
	}
	if !hub.Join("c1", "SHIP-1") {
		t.Fatal("join failed for a registered connection")
	}
	if hub.Join("ghost", "SHIP-1") {
		t.Error("join should fail for an unknown connection")
	}
	if !hub.Authorize("c1", "SHIP-1") {
		t.Error("joined connection should be authorized for the room")
	}
	if hub.Authorize("c1", "SHIP-2") {
		t.Error("connection should not be authorized for a room it never joined")
	}
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub()
	subscriber := newTestClient("sub")
	bystander := newTestClient("other")
	hub.Register(subscriber)
	hub.Register(bystander)
	hub.Join("sub", "SHIP-1")

	hub.Broadcast("SHIP-1", Event{Event: "locationUpdated"})

	select {
	case event := <-subscriber.Send:
		if event.Event != "locationUpdated" {
			t.Errorf("got event %q, want locationUpdated", event.Event)
		}
	default:
		t.Fatal("subscriber did not receive the broadcast")
	}

	select {
	case event := <-bystander.Send:
		t.Errorf("bystander received %q without subscribing", event.Event)
	default:
	}
}

func TestBroadcastDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()
	slow := &Client{ID: "slow", Send: make(chan Event, 1)}
	hub.Register(slow)
	hub.Join("slow", "SHIP-1")

	hub.Broadcast("SHIP-1", Event{Event: "first"})
	hub.Broadcast("SHIP-1", Event{Event: "second"})

	if got := <-slow.Send; got.Event != "first" {
		t.Errorf("got %q, want first", got.Event)
	}
	select {
	case got := <-slow.Send:
		t.Errorf("full queue should have dropped the second event, got %q", got.Event)
	default:
	}
}

func TestLeave(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1")
	hub.Register(client)
	hub.Join("c1", "SHIP-1")
	hub.Leave("c1", "SHIP-1")

	if hub.Authorize("c1", "SHIP-1") {
		t.Error("connection should lose authorization after leaving")
	}
	hub.Broadcast("SHIP-1", Event{Event: "statusChanged"})
	select {
	case <-client.Send:
		t.Error("left connection should not receive room broadcasts")
	default:
	}
}

func TestUnregisterPurgesRooms(t *testing.T) {
	hub := NewHub()
	client := newTestClient("c1")
	hub.Register(client)
	hub.Join("c1", "SHIP-1")
	hub.Join("c1", "SHIP-2")

	hub.Unregister("c1")

	if _, ok := hub.Client("c1"); ok {
		t.Error("unregistered client still findable")
	}
	// Send must be closed so the writer goroutine exits.
	if _, open := <-client.Send; open {
		t.Error("send channel should be closed on unregister")
	}
	// Broadcasting to its old rooms must not panic or deliver.
	hub.Broadcast("SHIP-1", Event{Event: "statusChanged"})
	hub.Broadcast("SHIP-2", Event{Event: "statusChanged"})

	// Unregistering twice is harmless.
	hub.Unregister("c1")
}

func TestBroadcastAll(t *testing.T) {
	hub := NewHub()
	a := newTestClient("a")
	b := newTestClient("b")
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastAll(Event{Event: "truckLocationUpdated"})

	for _, client := range []*Client{a, b} {
		select {
		case event := <-client.Send:
			if event.Event != "truckLocationUpdated" {
				t.Errorf("client %s got %q", client.ID, event.Event)
			}
		default:
			t.Errorf("client %s did not receive the global broadcast", client.ID)
		}
	}
}
