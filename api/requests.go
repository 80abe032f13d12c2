package api

import (
	"fmt"
	"strconv"

	"github.com/xraph/steward/user"
)

// Each request shape carries its own Validate so the boundary rejects
// malformed input before the engine is invoked. Validation errors are
// distinct from the engine's business-rule conflicts: they map to 400,
// never 409.

// ──────────────────────────────────────────────────
// Permission requests
// ──────────────────────────────────────────────────

// CreatePermissionRequest is the body for creating a permission.
type CreatePermissionRequest struct {
	Name string `json:"name" description:"Permission name"`
}

func (r *CreatePermissionRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// RenamePermissionRequest is the body for renaming a permission.
type RenamePermissionRequest struct {
	OriginalName string `json:"originalName" description:"Current permission name"`
	NewName      string `json:"newName" description:"New permission name"`
}

func (r *RenamePermissionRequest) Validate() error {
	if r.OriginalName == "" {
		return fmt.Errorf("originalName is required")
	}
	if r.NewName == "" {
		return fmt.Errorf("newName is required")
	}
	return nil
}

// ListPermissionsRequest holds query parameters for listing permissions.
type ListPermissionsRequest struct {
	Name string `query:"name" description:"Case-insensitive substring filter"`
}

// PermissionNameRequest is the path parameter for permission routes.
type PermissionNameRequest struct {
	Name string `path:"name" description:"Permission name"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// PermissionRef names a permission inside a role payload.
type PermissionRef struct {
	Name string `json:"name" description:"Permission name"`
}

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name        string          `json:"name" description:"Role name (stored uppercased)"`
	Permissions []PermissionRef `json:"permissions" description:"Permissions the role grants"`
}

func (r *CreateRoleRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, p := range r.Permissions {
		if p.Name == "" {
			return fmt.Errorf("permissions[%d].name is required", i)
		}
	}
	return nil
}

// UpdateRoleRequest is the body for replacing a role's name and permissions.
type UpdateRoleRequest struct {
	Name        string          `json:"name" description:"New role name"`
	Permissions []PermissionRef `json:"permissions" description:"Replacement permission list"`
}

func (r *UpdateRoleRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, p := range r.Permissions {
		if p.Name == "" {
			return fmt.Errorf("permissions[%d].name is required", i)
		}
	}
	return nil
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct {
	Name string `query:"name" description:"Case-insensitive substring filter"`
}

// RoleNameRequest is the path parameter for role routes.
type RoleNameRequest struct {
	Name string `path:"name" description:"Role name"`
}

// RolePermissionRequest is the body for attaching or detaching a permission.
type RolePermissionRequest struct {
	Name string `json:"name" description:"Permission name"`
}

func (r *RolePermissionRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ──────────────────────────────────────────────────
// User requests
// ──────────────────────────────────────────────────

// RoleRef names a role inside a user payload.
type RoleRef struct {
	Name string `json:"name" description:"Role name"`
}

// UserRequest is the body for creating or updating a user.
type UserRequest struct {
	Name      string   `json:"name" description:"Display name"`
	Email     string   `json:"email" description:"Email address (stored lowercased)"`
	BirthDate string   `json:"birthDate" description:"Birth date (YYYY-MM-DD or RFC 3339)"`
	Role      *RoleRef `json:"role,omitempty" description:"Optional role reference"`
}

func (r *UserRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.BirthDate != "" {
		if _, err := parseBirthDate(r.BirthDate); err != nil {
			return fmt.Errorf("birthDate: %w", err)
		}
	}
	if r.Role != nil && r.Role.Name == "" {
		return fmt.Errorf("role.name is required when role is set")
	}
	return nil
}

// Input converts the request into the engine's input shape.
// Validate must have succeeded first.
func (r *UserRequest) Input() *user.Input {
	in := &user.Input{
		Name:  r.Name,
		Email: r.Email,
	}
	if r.BirthDate != "" {
		in.BirthDate, _ = parseBirthDate(r.BirthDate) //nolint:errcheck // validated
	}
	if r.Role != nil {
		in.RoleName = r.Role.Name
	}
	return in
}

// UpdateUserRequest is the body for updating a user. Same shape as
// creation, but every field is optional; an absent role clears the
// user's role reference.
type UpdateUserRequest struct {
	Name      string   `json:"name,omitempty" description:"Display name"`
	Email     string   `json:"email,omitempty" description:"Email address"`
	BirthDate string   `json:"birthDate,omitempty" description:"Birth date"`
	Role      *RoleRef `json:"role,omitempty" description:"Replacement role reference"`
}

func (r *UpdateUserRequest) Validate() error {
	if r.BirthDate != "" {
		if _, err := parseBirthDate(r.BirthDate); err != nil {
			return fmt.Errorf("birthDate: %w", err)
		}
	}
	if r.Role != nil && r.Role.Name == "" {
		return fmt.Errorf("role.name is required when role is set")
	}
	return nil
}

// Input converts the request into the engine's input shape.
func (r *UpdateUserRequest) Input() *user.Input {
	in := &user.Input{
		Name:  r.Name,
		Email: r.Email,
	}
	if r.BirthDate != "" {
		in.BirthDate, _ = parseBirthDate(r.BirthDate) //nolint:errcheck // validated
	}
	if r.Role != nil {
		in.RoleName = r.Role.Name
	}
	return in
}

// ListUsersRequest holds query parameters for the paged user listing.
type ListUsersRequest struct {
	Page    int    `query:"page" description:"Page number, starting at 1"`
	Size    int    `query:"size" description:"Page size"`
	SortBy  string `query:"sortBy" description:"Sort field (name, email, userCode, birthDate, createdAt)"`
	Sort    string `query:"sort" description:"Sort direction (asc, desc)"`
	Deleted string `query:"deleted" description:"Filter by deletion state (true, false)"`
}

func (r *ListUsersRequest) Validate() error {
	if r.Page <= 0 {
		return fmt.Errorf("page must be a positive integer")
	}
	if r.Size <= 0 {
		return fmt.Errorf("size must be a positive integer")
	}
	switch r.SortBy {
	case "", user.SortByName, user.SortByEmail, user.SortByUserCode, user.SortByBirthDate, user.SortByCreatedAt:
	default:
		return fmt.Errorf("sortBy must be one of name, email, userCode, birthDate, createdAt")
	}
	switch r.Sort {
	case "", user.SortAsc, user.SortDesc:
	default:
		return fmt.Errorf("sort must be asc or desc")
	}
	if r.Deleted != "" {
		if _, err := strconv.ParseBool(r.Deleted); err != nil {
			return fmt.Errorf("deleted must be true or false")
		}
	}
	return nil
}

// Query converts the request into the engine's listing query.
// Validate must have succeeded first.
func (r *ListUsersRequest) Query() user.ListQuery {
	q := user.ListQuery{
		Page:    r.Page,
		Size:    r.Size,
		SortBy:  r.SortBy,
		SortDir: r.Sort,
	}
	if r.Deleted != "" {
		deleted, _ := strconv.ParseBool(r.Deleted) //nolint:errcheck // validated
		q.Deleted = &deleted
	}
	return q
}

// UserCodeRequest is the path parameter for user routes.
type UserCodeRequest struct {
	UserCode string `path:"usercode" description:"User code"`
}

// UserRoleRequest is the body for attaching or detaching a user's role.
type UserRoleRequest struct {
	RoleName string `json:"roleName" description:"Role name"`
}

func (r *UserRoleRequest) Validate() error {
	if r.RoleName == "" {
		return fmt.Errorf("roleName is required")
	}
	return nil
}

// RoleCountRequest is the path parameter for the role-count route.
type RoleCountRequest struct {
	RoleName string `path:"rolename" description:"Role name"`
}
