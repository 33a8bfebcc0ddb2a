// Package api - WebSocket handler for real-time play
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
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
	playerID string
	mu       sync.Mutex
}

// HandleWebSocket handles WebSocket connections for play sessions
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &WSClient{
		conn:     conn,
		send:     make(chan []byte, 256),
		playerID: player.ID,
	}

	go client.writePump()
	go h.readPump(client, r)
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

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			w.Close()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the handler
func (h *Handler) readPump(c *WSClient, r *http.Request) {
	defer func() {
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	h.sendMessage(c, "connected", map[string]interface{}{
		"player_id": c.playerID,
		"message":   "Connected",
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("player_id", c.playerID).Msg("websocket closed unexpectedly")
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.sendError(c, "INVALID_MESSAGE", "Invalid message format")
			continue
		}

		h.handleWSMessage(c, r, &msg)
	}
}

// handleWSMessage processes incoming WebSocket messages
func (h *Handler) handleWSMessage(c *WSClient, r *http.Request, msg *WSMessage) {
	ctx := r.Context()

	switch msg.Type {
	case "spin", "play":
		var req PlayRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.sendError(c, "INVALID_PAYLOAD", "Invalid play payload")
			return
		}

		result, balance, perr := h.playRound(r, &req)
		if perr != nil {
			h.sendError(c, perr.code, perr.message)
			return
		}

		h.sendMessage(c, "outcome", map[string]interface{}{
			"result":  result,
			"balance": balance.Amount,
		})

	case "balance":
		balance, err := h.wallet.GetBalance(ctx, c.playerID)
		if err != nil {
			h.sendError(c, "BALANCE_ERROR", "Failed to get balance")
			return
		}
		h.sendMessage(c, "balance", balance)

	case "history":
		history, err := h.rounds.History(ctx, c.playerID, 10)
		if err != nil {
			h.sendError(c, "HISTORY_ERROR", "Failed to get history")
			return
		}
		h.sendMessage(c, "history", history)

	case "ping":
		h.sendMessage(c, "pong", map[string]interface{}{
			"timestamp": time.Now().Unix(),
		})

	default:
		h.sendError(c, "UNKNOWN_MESSAGE", "Unknown message type: "+msg.Type)
	}
}

// sendMessage sends a message to the client
func (h *Handler) sendMessage(c *WSClient, msgType string, payload interface{}) {
	payloadBytes, _ := json.Marshal(payload)
	msg := WSMessage{
		Type:    msgType,
		Payload: payloadBytes,
	}
	msgBytes, _ := json.Marshal(msg)

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- msgBytes:
	default:
		// Channel full, drop message
	}
}

// sendError sends an error message to the client
func (h *Handler) sendError(c *WSClient, code, message string) {
	h.sendMessage(c, "error", map[string]string{
		"code":    code,
		"message": message,
	})
}
