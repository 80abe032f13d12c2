// Package permission defines the Permission entity and its store interface.
package permission

import (
	"time"

	"github.com/xraph/steward/id"
)

// Permission is a named capability that roles reference. Names are globally
// unique and stored exactly as given.
type Permission struct {
	ID        id.PermissionID `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ListFilter contains filters for listing permissions.
type ListFilter struct {
	// Search matches names by case-insensitive substring.
	Search string `json:"search,omitempty"`
}
