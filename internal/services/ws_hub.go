package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"skillshare-backend/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsWriteTimeout = 5 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WSHub manages WebSocket connections and pushes notifications to users
// that are online. It is a notify.Channel.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsConn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsConn),
	}
}

// Register registers a new WebSocket connection for a user
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}
	h.connections[userID] = &wsConn{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a user. A connection that
// has since been replaced by a newer one is left alone.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.connections[userID]; exists && (conn == nil || c.conn == conn) {
		c.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.mu.Unlock()
	if err != nil {
		h.Unregister(userID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// Name implements notify.Channel
func (h *WSHub) Name() string {
	return "websocket"
}

// Deliver implements notify.Channel. Offline users are skipped; they still
// get the notification through the inbox.
func (h *WSHub) Deliver(_ context.Context, n notify.Notification) error {
	if !h.IsOnline(n.RecipientID) {
		return nil
	}
	return h.SendToUser(n.RecipientID, WSMessage{
		Type: "notification",
		Data: n,
	})
}

// CloseAll drops every connection; used on shutdown
func (h *WSHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, c := range h.connections {
		c.conn.Close()
		delete(h.connections, userID)
	}
}
