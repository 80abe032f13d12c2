package mongo

import (
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/user"
)

// ──────────────────────────────────────────────────
// Permission model
// ──────────────────────────────────────────────────

type permissionModel struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func permissionToModel(p *permission.Permission) *permissionModel {
	return &permissionModel{
		ID:        p.ID.String(),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func permissionFromModel(m *permissionModel) *permission.Permission {
	pid, _ := id.ParsePermissionID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &permission.Permission{
		ID:        pid,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	PermissionIDs []string  `bson:"permission_ids"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func roleToModel(r *role.Role) *roleModel {
	m := &roleModel{
		ID:            r.ID.String(),
		Name:          r.Name,
		PermissionIDs: make([]string, 0, len(r.PermissionIDs)),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, pid := range r.PermissionIDs {
		m.PermissionIDs = append(m.PermissionIDs, pid.String())
	}
	return m
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	r := &role.Role{
		ID:            rid,
		Name:          m.Name,
		PermissionIDs: make([]id.PermissionID, 0, len(m.PermissionIDs)),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	for _, raw := range m.PermissionIDs {
		pid, err := id.ParsePermissionID(raw)
		if err == nil {
			r.PermissionIDs = append(r.PermissionIDs, pid)
		}
	}
	return r
}

// ──────────────────────────────────────────────────
// User model
// ──────────────────────────────────────────────────

type userModel struct {
	ID        string    `bson:"_id"`
	UserCode  int64     `bson:"user_code"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	BirthDate time.Time `bson:"birth_date"`
	RoleID    *string   `bson:"role_id,omitempty"`
	Deleted   bool      `bson:"deleted"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func userToModel(u *user.User) *userModel {
	m := &userModel{
		ID:        u.ID.String(),
		UserCode:  u.UserCode,
		Name:      u.Name,
		Email:     u.Email,
		BirthDate: u.BirthDate,
		Deleted:   u.Deleted,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.RoleID != nil {
		s := u.RoleID.String()
		m.RoleID = &s
	}
	return m
}

func userFromModel(m *userModel) *user.User {
	uid, _ := id.ParseUserID(m.ID) //nolint:errcheck // stored IDs are always valid
	u := &user.User{
		ID:        uid,
		UserCode:  m.UserCode,
		Name:      m.Name,
		Email:     m.Email,
		BirthDate: m.BirthDate,
		Deleted:   m.Deleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.RoleID != nil {
		rid, err := id.ParseRoleID(*m.RoleID)
		if err == nil {
			u.RoleID = &rid
		}
	}
	return u
}

// ──────────────────────────────────────────────────
// Counter model
// ──────────────────────────────────────────────────

// counterModel backs named monotonic sequences. One document per
// sequence, incremented atomically with $inc.
type counterModel struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}
