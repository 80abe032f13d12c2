// Package steward provides an RBAC administration engine for Go.
//
// Steward manages Users, Roles, and Permissions and keeps the references
// among them consistent on top of a document store that enforces no foreign
// keys. Every operation validates existence and uniqueness against the
// store before performing its single write, and returns the entity with its
// weak references resolved.
//
//	eng, err := steward.NewEngine(
//	    steward.WithStore(memStore),
//	)
//	p, err := eng.CreatePermission(ctx, "document:read")
//	r, err := eng.CreateRole(ctx, "Editor", []string{"document:read"})
//
// Steward administers RBAC data; it does not evaluate authorization checks
// at request time.
package steward

import "github.com/xraph/steward/id"

// ID is the primary identifier type for all Steward entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
