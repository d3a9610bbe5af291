// Package store mirrors application state into a persistent key-value backend.
// Values are JSON encoded; keys are namespaced with a configurable prefix.
package store

import (
	"context"
	"errors"
)

// Logical keys mirrored by the pass manager.
const (
	KeyRegisteredUsers = "registeredUsers"
	KeyGatePasses      = "gatepasses"
	KeyCurrentUser     = "currentUser"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// Store defines the operations the pass manager needs from persistence.
type Store interface {
	// Get decodes the value stored under key into dest.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	HealthCheck(ctx context.Context) error
	Stats() Stats
}

// Stats counts reads that hit or missed.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Writes int64 `json:"writes"`
}
