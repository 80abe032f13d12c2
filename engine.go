package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/plugin"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
	"github.com/xraph/steward/user"
)

// Engine is the RBAC consistency engine. It coordinates the existence and
// uniqueness checks across the user, role, and permission stores, performs
// the single write per operation only after all checks pass, and resolves
// weak references on the entities it returns.
//
// The engine does no in-process locking: between a uniqueness check and the
// subsequent write a concurrent request can interleave, so duplicate-name
// or duplicate-email races are possible under concurrent load. The mongo
// backend's unique indexes surface such races as store errors.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
}

// NewEngine creates a new Steward engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("steward: store is required")
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Internal lookups
//
// The *ByName / *ByCode forms translate a store miss into the typed
// per-entity error. The lookup* forms return (nil, nil) on a miss, for
// uniqueness checks where absence is the desired outcome. Store failures
// other than a miss propagate unmodified.
// ──────────────────────────────────────────────────

func (e *Engine) permissionByName(ctx context.Context, name string) (*permission.Permission, error) {
	p, err := e.store.GetPermissionByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("permission %q: %w", name, ErrPermissionNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (e *Engine) lookupPermission(ctx context.Context, name string) (*permission.Permission, error) {
	p, err := e.store.GetPermissionByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// roleByName expects an already-normalized name.
func (e *Engine) roleByName(ctx context.Context, name string) (*role.Role, error) {
	r, err := e.store.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("role %q: %w", name, ErrRoleNotFound)
		}
		return nil, err
	}
	return r, nil
}

func (e *Engine) lookupRole(ctx context.Context, name string) (*role.Role, error) {
	r, err := e.store.GetRoleByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (e *Engine) userByCode(ctx context.Context, userCode int64) (*user.User, error) {
	u, err := e.store.GetUserByCode(ctx, userCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", userCode, ErrUserNotFound)
		}
		return nil, err
	}
	return u, nil
}

// lookupUserByEmail expects an already-normalized email.
func (e *Engine) lookupUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := e.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// ──────────────────────────────────────────────────
// Reference resolution
// ──────────────────────────────────────────────────

// resolveRole populates r.Permissions from its stored permission IDs.
// References to permissions that have since been deleted are omitted;
// deleting a permission does not rewrite the roles that point at it.
func (e *Engine) resolveRole(ctx context.Context, r *role.Role) error {
	if len(r.PermissionIDs) == 0 {
		r.Permissions = []*permission.Permission{}
		return nil
	}
	perms, err := e.store.ListPermissionsByIDs(ctx, r.PermissionIDs)
	if err != nil {
		return err
	}
	r.Permissions = perms
	return nil
}

// resolveUser populates u.Role (and its permissions) from the stored role
// reference. A reference to a role that has since been deleted resolves to
// no role at all.
func (e *Engine) resolveUser(ctx context.Context, u *user.User) error {
	if u.RoleID == nil {
		u.Role = nil
		return nil
	}
	r, err := e.store.GetRole(ctx, *u.RoleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			u.Role = nil
			return nil
		}
		return err
	}
	if err := e.resolveRole(ctx, r); err != nil {
		return err
	}
	u.Role = r
	return nil
}

// resolvePermissionNames maps permission names to their stored documents,
// failing on the first name with no backing permission. Nothing is written
// until every name resolves.
func (e *Engine) resolvePermissionNames(ctx context.Context, names []string) ([]*permission.Permission, error) {
	perms := make([]*permission.Permission, 0, len(names))
	for _, name := range names {
		p, err := e.permissionByName(ctx, name)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}

func permissionIDs(perms []*permission.Permission) []ID {
	ids := make([]ID, len(perms))
	for i, p := range perms {
		ids[i] = p.ID
	}
	return ids
}
