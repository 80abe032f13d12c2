// Package user defines the User entity, listing types, and store interface.
package user

import (
	"strings"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// User is a managed account. Email is globally unique (lowercased and
// trimmed). UserCode is a monotonically increasing integer assigned once at
// creation from a dedicated sequence and never reused.
//
// RoleID is the persisted weak reference; Role carries the resolved document
// and is populated by the engine on reads. Users are never hard-deleted:
// Deleted marks the account inactive.
type User struct {
	ID        id.UserID  `json:"id"`
	UserCode  int64      `json:"userCode"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	BirthDate time.Time  `json:"birthDate"`
	RoleID    *id.RoleID `json:"-"`
	Role      *role.Role `json:"role,omitempty"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Input carries the caller-supplied fields for creating or replacing a user.
// RoleName, when non-empty, is resolved against the role store; on update an
// empty RoleName clears the user's role (replace semantics).
type Input struct {
	Name      string
	Email     string
	BirthDate time.Time
	RoleName  string
}

// Sort directions accepted by ListQuery.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Sortable field names accepted by ListQuery.
const (
	SortByName      = "name"
	SortByEmail     = "email"
	SortByUserCode  = "userCode"
	SortByBirthDate = "birthDate"
	SortByCreatedAt = "createdAt"
)

// ListQuery describes a page request. Page and Size are 1-based and must be
// positive; the boundary layer validates them before the engine is invoked.
// When SortBy and SortDir are not both set, listing defaults to createdAt
// descending. Deleted filters by deletion state when non-nil.
type ListQuery struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
	Deleted *bool
}

// ListFilter is the store-level projection of a ListQuery.
type ListFilter struct {
	Deleted *bool
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

// Page is one page of a user listing.
type Page struct {
	Data       []*User `json:"data"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"totalPages"`
}
