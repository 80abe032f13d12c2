package steward

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
)

// CreatePermission creates a new permission with the given name.
// Fails with ErrPermissionExists when the name is already taken.
func (e *Engine) CreatePermission(ctx context.Context, name string) (*permission.Permission, error) {
	existing, err := e.lookupPermission(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("permission %q: %w", name, ErrPermissionExists)
	}

	now := time.Now().UTC()
	p := &permission.Permission{
		ID:        id.NewPermissionID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreatePermission(ctx, p); err != nil {
		return nil, err
	}
	e.logger.Debug("permission created", "name", name)

	if e.plugins != nil {
		e.plugins.EmitPermissionCreated(ctx, p)
	}
	return p, nil
}

// ListPermissions returns all permissions whose name contains nameFilter
// (case-insensitive). An empty filter returns everything; no match is an
// empty slice, not an error.
func (e *Engine) ListPermissions(ctx context.Context, nameFilter string) ([]*permission.Permission, error) {
	return e.store.ListPermissions(ctx, &permission.ListFilter{Search: nameFilter})
}

// RenamePermission renames the permission called originalName to newName.
// Fails with ErrPermissionNotFound when originalName is absent and with
// ErrPermissionExists when newName is already taken. Roles reference
// permissions by ID, so their references survive the rename.
func (e *Engine) RenamePermission(ctx context.Context, originalName, newName string) (*permission.Permission, error) {
	p, err := e.permissionByName(ctx, originalName)
	if err != nil {
		return nil, err
	}

	taken, err := e.lookupPermission(ctx, newName)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, fmt.Errorf("permission %q: %w", newName, ErrPermissionExists)
	}

	p.Name = newName
	p.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdatePermission(ctx, p); err != nil {
		return nil, err
	}
	e.logger.Debug("permission renamed", "from", originalName, "to", newName)

	if e.plugins != nil {
		e.plugins.EmitPermissionUpdated(ctx, p)
	}
	return p, nil
}

// DeletePermission removes the permission with the given name.
// Fails with ErrPermissionNotFound when absent. Roles that reference the
// permission are not rewritten; their references dangle and resolve to
// nothing from then on.
func (e *Engine) DeletePermission(ctx context.Context, name string) error {
	p, err := e.permissionByName(ctx, name)
	if err != nil {
		return err
	}
	if err := e.store.DeletePermission(ctx, p.ID); err != nil {
		return err
	}
	e.logger.Debug("permission deleted", "name", name)

	if e.plugins != nil {
		e.plugins.EmitPermissionDeleted(ctx, p.ID)
	}
	return nil
}
