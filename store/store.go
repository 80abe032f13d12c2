// Package store defines the aggregate persistence interface. Each entity
// package (user, role, permission) defines its own store interface; the
// composite Store composes them all. Backends: MongoDB and Memory.
package store

import (
	"context"
	"errors"

	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/user"
)

// ErrNotFound is the sentinel all backends wrap when a lookup misses.
// The engine translates it into the typed per-entity errors; it never
// reaches API callers directly.
var ErrNotFound = errors.New("steward/store: not found")

// Store is the aggregate persistence interface.
// A single backend (mongo, memory) implements all of it.
type Store interface {
	user.Store
	role.Store
	permission.Store

	// Migrate creates indexes / schema for the backend.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
