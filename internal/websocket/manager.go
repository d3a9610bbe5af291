package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"gatepass-backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	staleAfter   = 90 * time.Second
)

var ErrManagerStopped = errors.New("websocket manager stopped")

// Manager fans pass events out to connected websocket clients
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.PassEvent
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	done       chan struct{}
	stopOnce   sync.Once
	logger     *zap.Logger
}

// NewManager creates a new WebSocket manager. An empty origin list or "*"
// accepts any origin.
func NewManager(logger *zap.Logger, allowedOrigins []string) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.PassEvent, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done:   make(chan struct{}),
		logger: logger.Named("websocket"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Start begins the WebSocket manager's main loop
func (m *Manager) Start() error {
	go m.run()
	m.logger.Info("WebSocket manager started")
	return nil
}

// Stop closes every client connection. It is safe to call more than once.
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() {
		close(m.done)

		m.mutex.Lock()
		for id, client := range m.clients {
			m.dropLocked(id, client)
		}
		m.mutex.Unlock()

		m.logger.Info("WebSocket manager stopped")
	})
	return nil
}

func (m *Manager) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			if old, ok := m.clients[client.ID]; ok {
				m.dropLocked(client.ID, old)
			}
			m.clients[client.ID] = client
			m.mutex.Unlock()
			m.logger.Debug("Client registered", zap.String("client_id", client.ID))
			if client.Conn != nil {
				go m.handleClient(client)
			}

		case client := <-m.unregister:
			m.mutex.Lock()
			if current, ok := m.clients[client.ID]; ok && current == client {
				m.dropLocked(client.ID, client)
			}
			m.mutex.Unlock()
			m.logger.Debug("Client unregistered", zap.String("client_id", client.ID))

		case event := <-m.broadcast:
			m.broadcastToClients(event)

		case <-ticker.C:
			m.healthCheck()

		case <-m.done:
			return
		}
	}
}

// dropLocked removes a client; callers hold m.mutex.
func (m *Manager) dropLocked(id string, client *Client) {
	delete(m.clients, id)
	close(client.Send)
	if client.Conn != nil {
		client.Conn.Close()
	}
}

// RegisterClient registers a connection. visitorID pins the client to the
// passes that user owns; pass "" for staff.
func (m *Manager) RegisterClient(clientID string, conn *websocket.Conn, visitorID string, filters PassFilters) error {
	client := &Client{
		ID:        clientID,
		Conn:      conn,
		VisitorID: visitorID,
		Send:      make(chan models.PassEvent, 64),
		IsActive:  true,
		filters:   filters,
		lastPing:  time.Now(),
	}

	select {
	case m.register <- client:
		return nil
	case <-m.done:
		return ErrManagerStopped
	}
}

// UnregisterClient removes a WebSocket client
func (m *Manager) UnregisterClient(clientID string) error {
	m.mutex.RLock()
	client, exists := m.clients[clientID]
	m.mutex.RUnlock()

	if !exists {
		return nil
	}

	select {
	case m.unregister <- client:
		return nil
	case <-m.done:
		return ErrManagerStopped
	}
}

// NotifyPass queues an event for delivery. It never blocks; a full queue drops the event.
func (m *Manager) NotifyPass(_ context.Context, event models.PassEvent) error {
	select {
	case <-m.done:
		return ErrManagerStopped
	default:
	}

	select {
	case m.broadcast <- event:
		return nil
	default:
		return fmt.Errorf("broadcast channel full, dropping %s for pass %s", event.Type, event.PassID)
	}
}

// GetConnectedClients returns the number of connected clients
func (m *Manager) GetConnectedClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// GetClientStats returns detailed client statistics
func (m *Manager) GetClientStats() ClientStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := ClientStats{
		TotalClients: len(m.clients),
	}

	for _, client := range m.clients {
		if client.IsActive {
			stats.ActiveClients++
		} else {
			stats.InactiveClients++
		}
	}

	return stats
}

// GetUpgrader returns the WebSocket upgrader for external use
func (m *Manager) GetUpgrader() *websocket.Upgrader {
	return &m.upgrader
}

func (m *Manager) broadcastToClients(event models.PassEvent) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, client := range m.clients {
		if !shouldSendToClient(client, event) {
			continue
		}
		select {
		case client.Send <- event:
			client.IsActive = true
		default:
			client.IsActive = false
			m.logger.Warn("Client send channel full, marking as inactive", zap.String("client_id", client.ID))
		}
	}
}

func shouldSendToClient(client *Client, event models.PassEvent) bool {
	if client.VisitorID != "" && client.VisitorID != event.VisitorID {
		return false
	}

	filters := client.Filters()
	if len(filters.PassIDs) > 0 && !contains(filters.PassIDs, event.PassID) {
		return false
	}
	if len(filters.Statuses) > 0 && !contains(filters.Statuses, string(event.Status)) {
		return false
	}
	if len(filters.PassTypes) > 0 && !contains(filters.PassTypes, string(event.PassType)) {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// handleClient reads filter updates until the connection fails
func (m *Manager) handleClient(client *Client) {
	defer func() {
		select {
		case m.unregister <- client:
		case <-m.done:
		}
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.touch(time.Now())
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go m.writeMessages(client)

	for {
		var message struct {
			Type    string      `json:"type"`
			Filters PassFilters `json:"filters"`
		}
		if err := client.Conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("WebSocket read error", zap.String("client_id", client.ID), zap.Error(err))
			}
			return
		}

		if message.Type == MessageTypeUpdateFilters {
			client.SetFilters(message.Filters)
			m.logger.Debug("Updated filters", zap.String("client_id", client.ID))
		}
	}
}

func (m *Manager) writeMessages(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(map[string]interface{}{
				"type": MessageTypePassEvent,
				"data": event,
			})
			if err != nil {
				m.logger.Error("Failed to encode pass event", zap.Error(err))
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				m.logger.Debug("Error writing message", zap.String("client_id", client.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// healthCheck removes clients that stopped answering pings
func (m *Manager) healthCheck() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	for id, client := range m.clients {
		if now.Sub(client.lastSeen()) > staleAfter {
			m.logger.Info("Client timed out, removing", zap.String("client_id", id))
			m.dropLocked(id, client)
		}
	}
}
