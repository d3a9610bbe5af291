package websocket

import (
	"sync"
	"time"

	"gatepass-backend/internal/models"

	"github.com/gorilla/websocket"
)

// PassFilters defines filtering criteria for pass events
type PassFilters struct {
	PassIDs   []string `json:"passIds,omitempty"`
	Statuses  []string `json:"statuses,omitempty"`
	PassTypes []string `json:"passTypes,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID   string
	Conn *websocket.Conn
	// VisitorID restricts the client to passes owned by that user. Empty for staff.
	VisitorID string
	Send      chan models.PassEvent
	// IsActive is only written by the manager while holding its lock.
	IsActive bool

	mu       sync.RWMutex
	filters  PassFilters
	lastPing time.Time
}

func (c *Client) Filters() PassFilters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters
}

func (c *Client) SetFilters(f PassFilters) {
	c.mu.Lock()
	c.filters = f
	c.mu.Unlock()
}

func (c *Client) touch(t time.Time) {
	c.mu.Lock()
	c.lastPing = t
	c.mu.Unlock()
}

func (c *Client) lastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPing
}

// ClientStats provides statistics about connected clients
type ClientStats struct {
	TotalClients    int `json:"totalClients"`
	ActiveClients   int `json:"activeClients"`
	InactiveClients int `json:"inactiveClients"`
}

// Message types for WebSocket communication
const (
	MessageTypePassEvent     = "pass_event"
	MessageTypeUpdateFilters = "update_filters"
	MessageTypeError         = "error"
)
