// server/internal/socket/hub.go
package socket

import (
	"log"
	"sync"
)

// Event is the wire envelope for every server-to-client message.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// sendBuffer bounds the per-connection outbound queue. A subscriber that
// cannot drain it loses messages, not the whole hub (at-most-once delivery).
const sendBuffer = 32

// Client is one authenticated realtime connection.
type Client struct {
	ID        string
	UserID    string
	Role      string
	ProfileID string
	Send      chan Event
}

// Hub is the connection manager for the tracking domain: it tracks every
// authenticated connection and its per-shipment subscription rooms, and
// exposes broadcast and authorization to the rest of the core. It never
// mutates domain state.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	// rooms maps shipmentID -> connectionID -> client.
	rooms map[string]map[string]*Client
	// subscriptions maps connectionID -> shipmentID set, for cheap purge.
	subscriptions map[string]map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[string]*Client),
		rooms:         make(map[string]map[string]*Client),
		subscriptions: make(map[string]map[string]bool),
	}
}

// Register adds an authenticated connection to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.subscriptions[client.ID] = make(map[string]bool)
	log.Printf("Tracking client registered: %s (user %s, role %s)", client.ID, client.UserID, client.Role)
}

// Unregister removes a connection and purges all its room memberships.
// Dropping a connection releases subscriptions only; domain state is
// untouched.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	for shipmentID := range h.subscriptions[connID] {
		delete(h.rooms[shipmentID], connID)
		if len(h.rooms[shipmentID]) == 0 {
			delete(h.rooms, shipmentID)
		}
	}
	delete(h.subscriptions, connID)
	delete(h.clients, connID)
	close(client.Send)
	log.Printf("Tracking client unregistered: %s", connID)
}

// Client returns the registered client for a connection, if any.
func (h *Hub) Client(connID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[connID]
	return client, ok
}

// Join subscribes a connection to a shipment's broadcast room.
func (h *Hub) Join(connID, shipmentID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	if h.rooms[shipmentID] == nil {
		h.rooms[shipmentID] = make(map[string]*Client)
	}
	h.rooms[shipmentID][connID] = client
	h.subscriptions[connID][shipmentID] = true
	return true
}

// Leave removes a connection from a shipment's room.
func (h *Hub) Leave(connID, shipmentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[shipmentID], connID)
	if len(h.rooms[shipmentID]) == 0 {
		delete(h.rooms, shipmentID)
	}
	if subs, ok := h.subscriptions[connID]; ok {
		delete(subs, shipmentID)
	}
}

// Authorize reports whether the connection is currently subscribed to the
// shipment's room.
func (h *Hub) Authorize(connID, shipmentID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs, ok := h.subscriptions[connID]
	return ok && subs[shipmentID]
}

// Broadcast fans an event out to every subscriber of the shipment. Delivery
// is at-most-once: a subscriber with a full queue is skipped.
func (h *Hub) Broadcast(shipmentID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, client := range h.rooms[shipmentID] {
		select {
		case client.Send <- event:
		default:
			log.Printf("Tracking client %s too slow, dropping %s event", connID, event.Event)
		}
	}
}

// BroadcastAll sends an event to every connected client, subscribed or not.
// Used for the legacy all-truck-locations stream.
func (h *Hub) BroadcastAll(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID, client := range h.clients {
		select {
		case client.Send <- event:
		default:
			log.Printf("Tracking client %s too slow, dropping %s event", connID, event.Event)
		}
	}
}

// SendTo delivers an event to one connection.
func (h *Hub) SendTo(connID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case client.Send <- event:
	default:
		log.Printf("Tracking client %s too slow, dropping %s event", connID, event.Event)
	}
}
