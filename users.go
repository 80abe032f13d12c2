package steward

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/user"
)

// CreateUser creates a user, optionally attached to a role resolved by
// name. The email is lowercased and trimmed before the uniqueness check.
// The user code comes from the store's atomic sequence; codes are assigned
// once and never reused, so deletions leave gaps.
func (e *Engine) CreateUser(ctx context.Context, in *user.Input) (*user.User, error) {
	email := user.NormalizeEmail(in.Email)

	existing, err := e.lookupUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %q: %w", email, ErrEmailExists)
	}

	var roleRef *role.Role
	if in.RoleName != "" {
		roleRef, err = e.roleByName(ctx, role.NormalizeName(in.RoleName))
		if err != nil {
			return nil, err
		}
	}

	code, err := e.store.NextUserCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &user.User{
		ID:        id.NewUserID(),
		UserCode:  code,
		Name:      in.Name,
		Email:     email,
		BirthDate: in.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if roleRef != nil {
		u.RoleID = &roleRef.ID
	}
	if err := e.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	e.logger.Debug("user created", "userCode", code, "email", email)

	if err := e.resolveUser(ctx, u); err != nil {
		return nil, err
	}
	if e.plugins != nil {
		e.plugins.EmitUserCreated(ctx, u)
	}
	return u, nil
}

// ListUsers returns one page of users with their role references resolved.
// Page and Size must already be validated positive by the caller. Without
// both SortBy and SortDir the listing is ordered by creation time,
// newest first. A nil Deleted returns active and deleted users alike.
func (e *Engine) ListUsers(ctx context.Context, q user.ListQuery) (*user.Page, error) {
	filter := &user.ListFilter{
		Deleted: q.Deleted,
		SortBy:  user.SortByCreatedAt,
		SortDir: user.SortDesc,
		Limit:   q.Size,
		Offset:  (q.Page - 1) * q.Size,
	}
	if q.SortBy != "" && q.SortDir != "" {
		filter.SortBy = q.SortBy
		filter.SortDir = q.SortDir
	}

	total, err := e.store.CountUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	users, err := e.store.ListUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := e.resolveUser(ctx, u); err != nil {
			return nil, err
		}
	}

	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	return &user.Page{
		Data:       users,
		Page:       q.Page,
		Size:       q.Size,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// UpdateUser replaces a user's mutable fields. A changed email is checked
// for collision against other users. The role reference follows replace
// semantics: a non-empty RoleName is resolved and set, an empty RoleName
// clears the reference.
func (e *Engine) UpdateUser(ctx context.Context, userCode int64, in *user.Input) (*user.User, error) {
	u, err := e.userByCode(ctx, userCode)
	if err != nil {
		return nil, err
	}

	if in.Email != "" {
		email := user.NormalizeEmail(in.Email)
		if email != u.Email {
			taken, err := e.lookupUserByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken != nil {
				return nil, fmt.Errorf("email %q: %w", email, ErrEmailExists)
			}
		}
		u.Email = email
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if !in.BirthDate.IsZero() {
		u.BirthDate = in.BirthDate
	}

	u.RoleID = nil
	if in.RoleName != "" {
		r, err := e.roleByName(ctx, role.NormalizeName(in.RoleName))
		if err != nil {
			return nil, err
		}
		u.RoleID = &r.ID
	}

	u.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := e.resolveUser(ctx, u); err != nil {
		return nil, err
	}

	if e.plugins != nil {
		e.plugins.EmitUserUpdated(ctx, u)
	}
	return u, nil
}

// AddRoleToUser attaches a role to a user that has none.
// Fails with ErrUserHasRole when a role reference is already set.
func (e *Engine) AddRoleToUser(ctx context.Context, userCode int64, roleName string) (*user.User, error) {
	u, err := e.userByCode(ctx, userCode)
	if err != nil {
		return nil, err
	}
	if u.RoleID != nil {
		return nil, fmt.Errorf("user %d: %w", userCode, ErrUserHasRole)
	}

	r, err := e.roleByName(ctx, role.NormalizeName(roleName))
	if err != nil {
		return nil, err
	}

	u.RoleID = &r.ID
	u.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := e.resolveUser(ctx, u); err != nil {
		return nil, err
	}

	if e.plugins != nil {
		e.plugins.EmitUserRoleAdded(ctx, u.ID, r.ID)
	}
	return u, nil
}

// RemoveRoleFromUser clears a user's role reference. The named role must
// exist; this is an existence check on the argument, not a match against
// the role the user actually holds. Fails with ErrUserHasNoRole when no
// reference is set.
func (e *Engine) RemoveRoleFromUser(ctx context.Context, userCode int64, roleName string) (*user.User, error) {
	u, err := e.userByCode(ctx, userCode)
	if err != nil {
		return nil, err
	}
	if u.RoleID == nil {
		return nil, fmt.Errorf("user %d: %w", userCode, ErrUserHasNoRole)
	}

	if _, err := e.roleByName(ctx, role.NormalizeName(roleName)); err != nil {
		return nil, err
	}

	removed := *u.RoleID
	u.RoleID = nil
	u.Role = nil
	u.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	if e.plugins != nil {
		e.plugins.EmitUserRoleRemoved(ctx, u.ID, removed)
	}
	return u, nil
}

// SoftDeleteUser marks a user deleted. The record is never removed.
// Fails with ErrUserDeleted when the user is already deleted.
func (e *Engine) SoftDeleteUser(ctx context.Context, userCode int64) (*user.User, error) {
	u, err := e.userByCode(ctx, userCode)
	if err != nil {
		return nil, err
	}
	if u.Deleted {
		return nil, fmt.Errorf("user %d: %w", userCode, ErrUserDeleted)
	}

	u.Deleted = true
	u.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := e.resolveUser(ctx, u); err != nil {
		return nil, err
	}
	e.logger.Debug("user soft-deleted", "userCode", userCode)

	if e.plugins != nil {
		e.plugins.EmitUserDeleted(ctx, u.ID)
	}
	return u, nil
}

// RestoreUser clears a user's deleted flag.
// Fails with ErrUserNotDeleted when the user is not deleted.
func (e *Engine) RestoreUser(ctx context.Context, userCode int64) (*user.User, error) {
	u, err := e.userByCode(ctx, userCode)
	if err != nil {
		return nil, err
	}
	if !u.Deleted {
		return nil, fmt.Errorf("user %d: %w", userCode, ErrUserNotDeleted)
	}

	u.Deleted = false
	u.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := e.resolveUser(ctx, u); err != nil {
		return nil, err
	}
	e.logger.Debug("user restored", "userCode", userCode)

	if e.plugins != nil {
		e.plugins.EmitUserRestored(ctx, u.ID)
	}
	return u, nil
}

// CountUsersByRole counts the users whose resolved role matches roleName
// (uppercased and trimmed). A name with no backing role counts zero users;
// this is not an error.
func (e *Engine) CountUsersByRole(ctx context.Context, roleName string) (int64, error) {
	r, err := e.lookupRole(ctx, role.NormalizeName(roleName))
	if err != nil {
		return 0, err
	}
	if r == nil {
		return 0, nil
	}
	return e.store.CountUsersByRole(ctx, r.ID)
}
