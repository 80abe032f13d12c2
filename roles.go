package steward

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// CreateRole creates a role with an initial permission list. The name is
// uppercased and trimmed before the uniqueness check and storage. Every
// permission name must resolve to an existing permission; a single miss
// aborts the whole operation before anything is written.
func (e *Engine) CreateRole(ctx context.Context, name string, permissionNames []string) (*role.Role, error) {
	normalized := role.NormalizeName(name)

	existing, err := e.lookupRole(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("role %q: %w", normalized, ErrRoleExists)
	}

	perms, err := e.resolvePermissionNames(ctx, permissionNames)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &role.Role{
		ID:            id.NewRoleID(),
		Name:          normalized,
		PermissionIDs: permissionIDs(perms),
		Permissions:   perms,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.CreateRole(ctx, r); err != nil {
		return nil, err
	}
	e.logger.Debug("role created", "name", normalized, "permissions", len(perms))

	if e.plugins != nil {
		e.plugins.EmitRoleCreated(ctx, r)
	}
	return r, nil
}

// ListRoles returns all roles whose name contains nameFilter
// (case-insensitive), with permission references resolved.
func (e *Engine) ListRoles(ctx context.Context, nameFilter string) ([]*role.Role, error) {
	roles, err := e.store.ListRoles(ctx, &role.ListFilter{Search: nameFilter})
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if err := e.resolveRole(ctx, r); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

// UpdateRole renames a role and replaces its whole permission list. The new
// name is checked for collision only when it differs from the current one.
// The permission list is re-resolved the same way CreateRole resolves it.
func (e *Engine) UpdateRole(ctx context.Context, name, newName string, permissionNames []string) (*role.Role, error) {
	r, err := e.roleByName(ctx, role.NormalizeName(name))
	if err != nil {
		return nil, err
	}

	normalized := role.NormalizeName(newName)
	if normalized != r.Name {
		taken, err := e.lookupRole(ctx, normalized)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, fmt.Errorf("role %q: %w", normalized, ErrRoleExists)
		}
	}

	perms, err := e.resolvePermissionNames(ctx, permissionNames)
	if err != nil {
		return nil, err
	}

	r.Name = normalized
	r.PermissionIDs = permissionIDs(perms)
	r.Permissions = perms
	r.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, err
	}
	e.logger.Debug("role updated", "name", normalized, "permissions", len(perms))

	if e.plugins != nil {
		e.plugins.EmitRoleUpdated(ctx, r)
	}
	return r, nil
}

// AddPermissionToRole appends one permission reference to a role.
// Fails with ErrRoleHasPermission when the role already references it.
func (e *Engine) AddPermissionToRole(ctx context.Context, roleName, permissionName string) (*role.Role, error) {
	r, err := e.roleByName(ctx, role.NormalizeName(roleName))
	if err != nil {
		return nil, err
	}
	p, err := e.permissionByName(ctx, permissionName)
	if err != nil {
		return nil, err
	}
	if r.HasPermission(p.ID) {
		return nil, fmt.Errorf("role %q, permission %q: %w", r.Name, p.Name, ErrRoleHasPermission)
	}

	r.PermissionIDs = append(r.PermissionIDs, p.ID)
	r.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, err
	}
	if err := e.resolveRole(ctx, r); err != nil {
		return nil, err
	}

	if e.plugins != nil {
		e.plugins.EmitPermissionAttached(ctx, r.ID, p.ID)
	}
	return r, nil
}

// RemovePermissionFromRole removes one permission reference from a role.
// Fails with ErrRoleMissingPermission when the role does not reference it.
func (e *Engine) RemovePermissionFromRole(ctx context.Context, roleName, permissionName string) (*role.Role, error) {
	r, err := e.roleByName(ctx, role.NormalizeName(roleName))
	if err != nil {
		return nil, err
	}
	p, err := e.permissionByName(ctx, permissionName)
	if err != nil {
		return nil, err
	}
	if !r.HasPermission(p.ID) {
		return nil, fmt.Errorf("role %q, permission %q: %w", r.Name, p.Name, ErrRoleMissingPermission)
	}

	kept := r.PermissionIDs[:0]
	for _, pid := range r.PermissionIDs {
		if pid != p.ID {
			kept = append(kept, pid)
		}
	}
	r.PermissionIDs = kept
	r.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, err
	}
	if err := e.resolveRole(ctx, r); err != nil {
		return nil, err
	}

	if e.plugins != nil {
		e.plugins.EmitPermissionDetached(ctx, r.ID, p.ID)
	}
	return r, nil
}

// DeleteRole removes the role with the given name. Users that reference the
// role are not rewritten; their references dangle and resolve to no role.
func (e *Engine) DeleteRole(ctx context.Context, name string) error {
	r, err := e.roleByName(ctx, role.NormalizeName(name))
	if err != nil {
		return err
	}
	if err := e.store.DeleteRole(ctx, r.ID); err != nil {
		return err
	}
	e.logger.Debug("role deleted", "name", r.Name)

	if e.plugins != nil {
		e.plugins.EmitRoleDeleted(ctx, r.ID)
	}
	return nil
}
