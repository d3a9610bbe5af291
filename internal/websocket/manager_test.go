package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gatepass-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	manager := NewManager(zap.NewNop(), nil)
	require.NoError(t, manager.Start())
	t.Cleanup(func() { manager.Stop() })
	return manager
}

func passEvent(id, visitorID string, status models.PassStatus, pt models.PassType) models.PassEvent {
	return models.PassEvent{
		Type:      models.EventPassStatusChanged,
		PassID:    id,
		Status:    status,
		VisitorID: visitorID,
		PassType:  pt,
		Timestamp: time.Now(),
	}
}

func TestNewManager(t *testing.T) {
	manager := NewManager(zap.NewNop(), nil)

	assert.NotNil(t, manager.clients)
	assert.NotNil(t, manager.register)
	assert.NotNil(t, manager.unregister)
	assert.NotNil(t, manager.broadcast)
}

func TestManagerStartStop(t *testing.T) {
	manager := NewManager(zap.NewNop(), nil)
	require.NoError(t, manager.Start())

	assert.NoError(t, manager.Stop())
	// second stop is a no-op
	assert.NoError(t, manager.Stop())

	err := manager.NotifyPass(context.Background(), passEvent("GP-1", "u-alice", models.StatusPending, models.PassTypeVisitor))
	assert.ErrorIs(t, err, ErrManagerStopped)
	assert.ErrorIs(t, manager.RegisterClient("late", nil, "", PassFilters{}), ErrManagerStopped)
}

func TestRegisterAndReceive(t *testing.T) {
	manager := newTestManager(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := manager.GetUpgrader().Upgrade(w, r, nil)
		if err != nil {
			return
		}
		manager.RegisterClient("visitor-client", conn, "u-alice", PassFilters{})
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, time.Second, 10*time.Millisecond)

	// another visitor's event is filtered out, alice's arrives
	require.NoError(t, manager.NotifyPass(context.Background(), passEvent("GP-bob", "u-bob", models.StatusApproved, models.PassTypeVisitor)))
	require.NoError(t, manager.NotifyPass(context.Background(), passEvent("GP-alice", "u-alice", models.StatusApproved, models.PassTypeVisitor)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string           `json:"type"`
		Data models.PassEvent `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypePassEvent, msg.Type)
	assert.Equal(t, "GP-alice", msg.Data.PassID)
	assert.Equal(t, models.StatusApproved, msg.Data.Status)
}

func TestUnregisterClient(t *testing.T) {
	manager := newTestManager(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := manager.GetUpgrader().Upgrade(w, r, nil)
		if err != nil {
			return
		}
		manager.RegisterClient("test-client", conn, "", PassFilters{})
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, manager.UnregisterClient("test-client"))

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 0
	}, time.Second, 10*time.Millisecond)

	// unknown ids are ignored
	assert.NoError(t, manager.UnregisterClient("missing"))
}

func TestNotifyPass_QueueFull(t *testing.T) {
	// not started: nothing drains the queue
	manager := NewManager(zap.NewNop(), nil)

	for i := 0; i < cap(manager.broadcast); i++ {
		require.NoError(t, manager.NotifyPass(context.Background(), passEvent("GP", "", models.StatusPending, models.PassTypeVisitor)))
	}
	assert.Error(t, manager.NotifyPass(context.Background(), passEvent("GP", "", models.StatusPending, models.PassTypeVisitor)))
}

func TestShouldSendToClient(t *testing.T) {
	tests := []struct {
		name     string
		visitor  string
		filters  PassFilters
		event    models.PassEvent
		expected bool
	}{
		{
			name:     "no filters - should send all",
			event:    passEvent("GP-1", "u-alice", models.StatusPending, models.PassTypeVisitor),
			expected: true,
		},
		{
			name:     "visitor scope - own pass",
			visitor:  "u-alice",
			event:    passEvent("GP-1", "u-alice", models.StatusPending, models.PassTypeVisitor),
			expected: true,
		},
		{
			name:     "visitor scope - other visitor",
			visitor:  "u-alice",
			event:    passEvent("GP-1", "u-bob", models.StatusPending, models.PassTypeVisitor),
			expected: false,
		},
		{
			name:     "visitor scope - guest pass",
			visitor:  "u-alice",
			event:    passEvent("GP-1", models.GuestVisitorID, models.StatusPending, models.PassTypeVisitor),
			expected: false,
		},
		{
			name:     "pass id filter - not matching",
			filters:  PassFilters{PassIDs: []string{"GP-2"}},
			event:    passEvent("GP-1", "u-alice", models.StatusPending, models.PassTypeVisitor),
			expected: false,
		},
		{
			name:     "status filter - matching",
			filters:  PassFilters{Statuses: []string{"APPROVED", "CHECKED_IN"}},
			event:    passEvent("GP-1", "u-alice", models.StatusCheckedIn, models.PassTypeVisitor),
			expected: true,
		},
		{
			name:     "status filter - not matching",
			filters:  PassFilters{Statuses: []string{"APPROVED"}},
			event:    passEvent("GP-1", "u-alice", models.StatusRejected, models.PassTypeVisitor),
			expected: false,
		},
		{
			name:     "type filter - matching",
			filters:  PassFilters{PassTypes: []string{"VEHICLE"}},
			event:    passEvent("GP-1", "u-alice", models.StatusPending, models.PassTypeVehicle),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{ID: "test-client", VisitorID: tt.visitor, filters: tt.filters}
			assert.Equal(t, tt.expected, shouldSendToClient(client, tt.event))
		})
	}
}

func TestGetClientStats(t *testing.T) {
	manager := NewManager(zap.NewNop(), nil)

	stats := manager.GetClientStats()
	assert.Equal(t, 0, stats.TotalClients)

	client := &Client{
		ID:       "test-client",
		Send:     make(chan models.PassEvent, 1),
		IsActive: true,
		lastPing: time.Now(),
	}

	manager.mutex.Lock()
	manager.clients["test-client"] = client
	manager.mutex.Unlock()

	stats = manager.GetClientStats()
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 1, stats.ActiveClients)

	// one slot: second event overflows and marks the client inactive
	manager.broadcastToClients(passEvent("GP-1", "", models.StatusPending, models.PassTypeVisitor))
	manager.broadcastToClients(passEvent("GP-2", "", models.StatusPending, models.PassTypeVisitor))

	stats = manager.GetClientStats()
	assert.Equal(t, 0, stats.ActiveClients)
	assert.Equal(t, 1, stats.InactiveClients)
}

func TestHealthCheck(t *testing.T) {
	manager := NewManager(zap.NewNop(), nil)

	oldClient := &Client{
		ID:       "old-client",
		Send:     make(chan models.PassEvent, 1),
		lastPing: time.Now().Add(-2 * time.Minute),
	}
	freshClient := &Client{
		ID:       "fresh-client",
		Send:     make(chan models.PassEvent, 1),
		lastPing: time.Now(),
	}

	manager.mutex.Lock()
	manager.clients["old-client"] = oldClient
	manager.clients["fresh-client"] = freshClient
	manager.mutex.Unlock()

	manager.healthCheck()

	assert.Equal(t, 1, len(manager.clients))
	_, exists := manager.clients["fresh-client"]
	assert.True(t, exists)

	// removed client's channel is closed
	_, open := <-oldClient.Send
	assert.False(t, open)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
