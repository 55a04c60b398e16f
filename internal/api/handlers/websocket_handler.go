// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"freight-match-api-server/internal/auth"
	"freight-match-api-server/internal/cache"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/socket"
	"freight-match-api-server/internal/tracking"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	wsOpTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	DB        *mongo.Database
	Cache     *cache.Locations
	Hub       *socket.Hub
	JWTSecret []byte
}

// inboundEvent is the client-to-server envelope.
type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type subscribePayload struct {
	ShipmentID string `json:"shipmentId"`
}

type wsLocationPayload struct {
	ShipmentID string   `json:"shipmentId"`
	TruckID    string   `json:"truckId"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Accuracy   *float64 `json:"accuracy"`
	Heading    *float64 `json:"heading"`
	Speed      *float64 `json:"speed"`
	Notes      string   `json:"notes"`
}

// HandleTracking upgrades the connection and runs the realtime tracking
// session. The token travels in the query string because browser websocket
// clients cannot set headers; a bad token gets one error frame and a close.
func (h *WebSocketHandler) HandleTracking(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("Failed to upgrade websocket connection:", err)
		return
	}

	claims, err := auth.ParseJWT(h.JWTSecret, c.Query("token"))
	if err != nil {
		conn.WriteJSON(socket.Event{Event: "error", Data: gin.H{"message": "invalid or expired token"}})
		conn.Close()
		return
	}

	client := &socket.Client{
		ID:        uuid.New().String(),
		UserID:    claims.UserID,
		Role:      claims.Role,
		ProfileID: claims.ProfileID,
		Send:      make(chan socket.Event, 32),
	}
	h.Hub.Register(client)
	defer h.Hub.Unregister(client.ID)

	go writePump(conn, client)

	h.Hub.SendTo(client.ID, socket.Event{Event: "connected", Data: gin.H{"connectionId": client.ID}})

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Println("Tracking websocket read error:", err)
			}
			return
		}

		var event inboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": "malformed event"}})
			continue
		}

		h.dispatch(client, event)
	}
}

// writePump drains the client's queue onto the wire and keeps the
// connection alive with pings. It owns all writes on the connection.
func writePump(conn *websocket.Conn, client *socket.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case event, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound event. Handler errors become error frames on
// this connection, never a disconnect.
func (h *WebSocketHandler) dispatch(client *socket.Client, event inboundEvent) {
	switch event.Event {
	case "subscribeToShipment":
		h.handleSubscribe(client, event.Data)
	case "unsubscribeFromShipment":
		h.handleUnsubscribe(client, event.Data)
	case "updateLocation":
		h.handleUpdateLocation(client, event.Data)
	default:
		h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": "unknown event: " + event.Event}})
	}
}

func (h *WebSocketHandler) handleSubscribe(client *socket.Client, data json.RawMessage) {
	var payload subscribePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ShipmentID == "" {
		h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": "shipmentId is required"}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()

	if _, err := tracking.AuthorizeShipmentRead(ctx, h.DB, payload.ShipmentID, client.Role, client.ProfileID); err != nil {
		h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": "not authorized for shipment " + payload.ShipmentID}})
		return
	}

	h.Hub.Join(client.ID, payload.ShipmentID)
	h.Hub.SendTo(client.ID, socket.Event{Event: "subscribed", Data: gin.H{"shipmentId": payload.ShipmentID}})
}

func (h *WebSocketHandler) handleUnsubscribe(client *socket.Client, data json.RawMessage) {
	var payload subscribePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ShipmentID == "" {
		h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": "shipmentId is required"}})
		return
	}

	h.Hub.Leave(client.ID, payload.ShipmentID)
	h.Hub.SendTo(client.ID, socket.Event{Event: "unsubscribed", Data: gin.H{"shipmentId": payload.ShipmentID}})
}

func (h *WebSocketHandler) handleUpdateLocation(client *socket.Client, data json.RawMessage) {
	if client.Role != models.RoleDriver {
		h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": "only drivers can report locations"}})
		return
	}

	var payload wsLocationPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ShipmentID == "" {
		h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": "shipmentId, lat and lng are required"}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsOpTimeout)
	defer cancel()

	entry, err := RecordLocation(ctx, h.DB, h.Cache, h.Hub, payload.ShipmentID, client.ProfileID, UpdateLocationPayload{
		TruckID:  payload.TruckID,
		Lat:      payload.Lat,
		Lng:      payload.Lng,
		Accuracy: payload.Accuracy,
		Heading:  payload.Heading,
		Speed:    payload.Speed,
		Notes:    payload.Notes,
	})
	if err != nil {
		h.Hub.SendTo(client.ID, socket.Event{Event: "error", Data: gin.H{"message": err.Error()}})
		return
	}

	h.Hub.SendTo(client.ID, socket.Event{Event: "locationUpdateSuccess", Data: gin.H{
		"shipmentId": entry.ShipmentID,
		"recordedAt": entry.RecordedAt,
	}})
}
