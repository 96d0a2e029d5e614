package http

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/kdramahub/kdramahub/internal/domain"
	"github.com/kdramahub/kdramahub/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Buffered room snapshots per connection before updates are dropped.
	snapshotBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is an inbound control message from a connected viewer.
type clientMessage struct {
	Type string `json:"type"`
}

// RoomStream handles GET /ws/rooms/{roomID}. It upgrades the connection,
// subscribes to the room and streams every room snapshot to the peer as
// JSON. A null snapshot means the room was deleted and closes the stream.
//
// Browsers cannot set headers on websocket dials, so the bearer token
// arrives as a ?token= query parameter instead.
func (h *Handler) RoomStream(w http.ResponseWriter, r *http.Request) {
	roomID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/ws/rooms/"), "/")
	if roomID == "" || strings.Contains(roomID, "/") {
		http.NotFound(w, r)
		return
	}

	identity, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		log.Printf("[ERROR] Websocket token verification failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] Websocket upgrade failed: %v", err)
		return
	}

	snapshots := make(chan *domain.Room, snapshotBuffer)

	unsubscribe, err := h.rooms.SubscribeToRoom(roomID, func(room *domain.Room) {
		// Store notifications must never block; a slow consumer just
		// misses intermediate snapshots and catches up on the next one.
		select {
		case snapshots <- room:
		default:
		}
	})
	if err != nil {
		log.Printf("[ERROR] Failed to subscribe to room '%s': %v", roomID, err)
		conn.Close()
		return
	}

	metrics.WebsocketConnections.Inc()
	defer func() {
		unsubscribe()
		conn.Close()
		metrics.WebsocketConnections.Dec()
	}()

	go h.readPump(conn, roomID, identity.UserID)
	h.writePump(conn, snapshots)
}

// readPump consumes inbound messages until the peer goes away. Heartbeat
// messages refresh the viewer's lastSeen timestamp.
func (h *Handler) readPump(conn *websocket.Conn, roomID, userID string) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ERROR] Websocket read error for room '%s': %v", roomID, err)
			}
			conn.Close()
			return
		}

		var msg clientMessage
		if err := gojson.Unmarshal(payload, &msg); err != nil {
			continue
		}

		if msg.Type == "heartbeat" {
			if err := h.rooms.UpdateLastSeen(context.Background(), roomID, userID); err != nil {
				log.Printf("[ERROR] Heartbeat failed for room '%s' user '%s': %v", roomID, userID, err)
			}
		}
	}
}

// writePump streams room snapshots and pings until the room is deleted,
// the subscription is gone, or a write fails.
func (h *Handler) writePump(conn *websocket.Conn, snapshots <-chan *domain.Room) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case room := <-snapshots:
			conn.SetWriteDeadline(time.Now().Add(writeWait))

			payload, err := gojson.Marshal(room)
			if err != nil {
				log.Printf("[ERROR] Failed to encode room snapshot: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

			// A nil snapshot means the room no longer exists.
			if room == nil {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room closed"),
					time.Now().Add(writeWait))
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
