// Package memory provides an in-memory implementation of the Steward
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
	"github.com/xraph/steward/user"
)

// Compile-time interface checks.
var (
	_ user.Store       = (*Store)(nil)
	_ role.Store       = (*Store)(nil)
	_ permission.Store = (*Store)(nil)
	_ store.Store      = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Steward entities.
type Store struct {
	mu sync.RWMutex

	users       map[string]*user.User
	roles       map[string]*role.Role
	permissions map[string]*permission.Permission
	userCodeSeq int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:       make(map[string]*user.User),
		roles:       make(map[string]*role.Role),
		permissions: make(map[string]*permission.Permission),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Permission store
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) GetPermission(_ context.Context, permID id.PermissionID) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permID.String()]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", permID, store.ErrNotFound)
	}
	return copyPermission(p), nil
}

func (s *Store) GetPermissionByName(_ context.Context, name string) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.Name == name {
			return copyPermission(p), nil
		}
	}
	return nil, fmt.Errorf("permission %q: %w", name, store.ErrNotFound)
}

func (s *Store) UpdatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[p.ID.String()]; !ok {
		return fmt.Errorf("permission %s: %w", p.ID, store.ErrNotFound)
	}
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) DeletePermission(_ context.Context, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.permissions, permID.String())
	return nil
}

func (s *Store) ListPermissions(_ context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		if filter != nil && filter.Search != "" &&
			!strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, copyPermission(p))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) ListPermissionsByIDs(_ context.Context, ids []id.PermissionID) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(ids))
	for _, pid := range ids {
		if p, ok := s.permissions[pid.String()]; ok {
			result = append(result, copyPermission(p))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Role store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.RoleID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Name == name {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", name, store.ErrNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, store.ErrNotFound)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, roleID.String())
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil && filter.Search != "" &&
			!strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, copyRole(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ──────────────────────────────────────────────────
// User store
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID.String()] = copyUser(u)
	return nil
}

func (s *Store) GetUser(_ context.Context, userID id.UserID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID.String()]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByCode(_ context.Context, userCode int64) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.UserCode == userCode {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", userCode, store.ErrNotFound)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
}

func (s *Store) UpdateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID.String()]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
	}
	s.users[u.ID.String()] = copyUser(u)
	return nil
}

func (s *Store) ListUsers(_ context.Context, filter *user.ListFilter) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchUsersLocked(filter)
	sortUsers(matched, filter.SortBy, filter.SortDir)

	if filter.Offset >= len(matched) {
		return []*user.User{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) CountUsers(_ context.Context, filter *user.ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchUsersLocked(filter))), nil
}

func (s *Store) CountUsersByRole(_ context.Context, roleID id.RoleID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.RoleID != nil && *u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (s *Store) NextUserCode(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCodeSeq++
	return s.userCodeSeq, nil
}

// matchUsersLocked returns copies of the users matching the filter's
// deletion state, ignoring pagination. Callers must hold at least mu.RLock.
func (s *Store) matchUsersLocked(filter *user.ListFilter) []*user.User {
	result := make([]*user.User, 0, len(s.users))
	for _, u := range s.users {
		if filter != nil && filter.Deleted != nil && u.Deleted != *filter.Deleted {
			continue
		}
		result = append(result, copyUser(u))
	}
	return result
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func sortUsers(users []*user.User, sortBy, sortDir string) {
	desc := sortDir == user.SortDesc
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		var less bool
		switch sortBy {
		case user.SortByName:
			less = a.Name < b.Name
		case user.SortByEmail:
			less = a.Email < b.Email
		case user.SortByUserCode:
			less = a.UserCode < b.UserCode
		case user.SortByBirthDate:
			less = a.BirthDate.Before(b.BirthDate)
		default: // createdAt
			if a.CreatedAt.Equal(b.CreatedAt) {
				// Creation timestamps can collide; fall back to the
				// monotonic user code so ordering stays deterministic.
				less = a.UserCode < b.UserCode
			} else {
				less = a.CreatedAt.Before(b.CreatedAt)
			}
		}
		if desc {
			return !less && !usersEqual(a, b, sortBy)
		}
		return less
	})
}

func usersEqual(a, b *user.User, sortBy string) bool {
	switch sortBy {
	case user.SortByName:
		return a.Name == b.Name
	case user.SortByEmail:
		return a.Email == b.Email
	case user.SortByUserCode:
		return a.UserCode == b.UserCode
	case user.SortByBirthDate:
		return a.BirthDate.Equal(b.BirthDate)
	default:
		return a.CreatedAt.Equal(b.CreatedAt) && a.UserCode == b.UserCode
	}
}

// Copies strip the resolved fields: the store persists references only,
// so resolution always reflects the store's current contents.

func copyPermission(p *permission.Permission) *permission.Permission {
	cp := *p
	return &cp
}

func copyRole(r *role.Role) *role.Role {
	cp := *r
	cp.PermissionIDs = append([]id.PermissionID(nil), r.PermissionIDs...)
	cp.Permissions = nil
	return &cp
}

func copyUser(u *user.User) *user.User {
	cp := *u
	if u.RoleID != nil {
		rid := *u.RoleID
		cp.RoleID = &rid
	}
	cp.Role = nil
	return &cp
}
