// Package api - WebSocket feed of received callbacks
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // operators authenticate with a token
	},
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSClient represents a WebSocket client connection
type WSClient struct {
	conn     *websocket.Conn
	send     chan []byte
	operator string
}

// Hub fans callbacks out to connected operators
type Hub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	logger  *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*WSClient]struct{}),
		logger:  logger,
	}
}

// ClientCount returns the number of connected clients
func (hub *Hub) ClientCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// Broadcast sends a message to every connected client.
// Slow clients whose buffer is full miss the message.
func (hub *Hub) Broadcast(msgType string, payload interface{}) {
	msgBytes, err := encodeMessage(msgType, payload)
	if err != nil {
		hub.logger.Error("failed to encode websocket message", "type", msgType, "error", err)
		return
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for c := range hub.clients {
		select {
		case c.send <- msgBytes:
		default:
			hub.logger.Warn("websocket client buffer full, dropping message", "operator", c.operator)
		}
	}
}

func (hub *Hub) register(c *WSClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.clients[c] = struct{}{}
}

// unregister removes c and closes its send channel
func (hub *Hub) unregister(c *WSClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if _, ok := hub.clients[c]; ok {
		delete(hub.clients, c)
		close(c.send)
	}
}

func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{
		Type:    msgType,
		Payload: payloadBytes,
	})
}

// HandleWebSocket handles GET /api/v1/ws/callbacks
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	operator := operatorName(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		conn:     conn,
		send:     make(chan []byte, 256),
		operator: operator,
	}

	if msg, err := encodeMessage("connected", map[string]string{"operator": operator}); err == nil {
		client.send <- msg
	}
	h.hub.register(client)

	go client.writePump()
	go h.readPump(client)
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive and answers client pings
func (h *Handler) readPump(c *WSClient) {
	defer func() {
		h.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket error", "error", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Type != "ping" {
			continue
		}

		pong, _ := encodeMessage("pong", map[string]int64{"timestamp": time.Now().Unix()})
		select {
		case c.send <- pong:
		default:
		}
	}
}
