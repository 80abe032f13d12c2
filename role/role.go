// Package role defines the Role entity and its store interface.
package role

import (
	"strings"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
)

// Role groups a set of permission references under a unique name.
// Names are normalized to uppercase and trimmed before storage and lookup.
//
// PermissionIDs is what the store persists; Permissions carries the
// resolved documents and is populated by the engine on reads. A referenced
// permission that has since been deleted is simply absent from Permissions.
type Role struct {
	ID            id.RoleID                `json:"id"`
	Name          string                   `json:"name"`
	PermissionIDs []id.PermissionID        `json:"-"`
	Permissions   []*permission.Permission `json:"permissions"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// NormalizeName canonicalizes a role name for storage and lookup.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// HasPermission reports whether the role references the given permission.
func (r *Role) HasPermission(permID id.PermissionID) bool {
	for _, pid := range r.PermissionIDs {
		if pid == permID {
			return true
		}
	}
	return false
}

// ListFilter contains filters for listing roles.
type ListFilter struct {
	// Search matches names by case-insensitive substring.
	Search string `json:"search,omitempty"`
}
