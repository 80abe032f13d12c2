package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
	"github.com/xraph/steward/user"
)

func TestPermissionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &permission.Permission{
		ID:        id.NewPermissionID(),
		Name:      "user.read",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}

	got, err := s.GetPermission(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPermission: %v", err)
	}
	if got.Name != "user.read" {
		t.Errorf("name = %q, want user.read", got.Name)
	}

	byName, err := s.GetPermissionByName(ctx, "user.read")
	if err != nil {
		t.Fatalf("GetPermissionByName: %v", err)
	}
	if byName.ID != p.ID {
		t.Errorf("id mismatch: %s != %s", byName.ID, p.ID)
	}

	got.Name = "user.write"
	if err := s.UpdatePermission(ctx, got); err != nil {
		t.Fatalf("UpdatePermission: %v", err)
	}
	updated, _ := s.GetPermission(ctx, p.ID)
	if updated.Name != "user.write" {
		t.Errorf("name after update = %q, want user.write", updated.Name)
	}

	if err := s.DeletePermission(ctx, p.ID); err != nil {
		t.Fatalf("DeletePermission: %v", err)
	}
	if _, err := s.GetPermission(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetPermission after delete = %v, want ErrNotFound", err)
	}
}

func TestListPermissionsSearch(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"user.read", "user.write", "role.read"} {
		p := &permission.Permission{ID: id.NewPermissionID(), Name: name}
		if err := s.CreatePermission(ctx, p); err != nil {
			t.Fatalf("CreatePermission(%s): %v", name, err)
		}
	}

	all, err := s.ListPermissions(ctx, &permission.ListFilter{})
	if err != nil {
		t.Fatalf("ListPermissions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 permissions, got %d", len(all))
	}

	// Search is a case-insensitive substring match.
	matched, err := s.ListPermissions(ctx, &permission.ListFilter{Search: "USER"})
	if err != nil {
		t.Fatalf("ListPermissions(search): %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("expected 2 matches for USER, got %d", len(matched))
	}
}

func TestListPermissionsByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &permission.Permission{ID: id.NewPermissionID(), Name: "user.read"}
	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListPermissionsByIDs(ctx, []id.PermissionID{p.ID, id.NewPermissionID()})
	if err != nil {
		t.Fatalf("ListPermissionsByIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != p.ID {
		t.Errorf("expected only the stored permission, got %d results", len(got))
	}
}

func TestRoleCRUDAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()

	permID := id.NewPermissionID()
	r := &role.Role{
		ID:            id.NewRoleID(),
		Name:          "ADMIN",
		PermissionIDs: []id.PermissionID{permID},
	}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	// Mutating the caller's slice must not affect the stored role.
	r.PermissionIDs[0] = id.NewPermissionID()

	got, err := s.GetRoleByName(ctx, "ADMIN")
	if err != nil {
		t.Fatalf("GetRoleByName: %v", err)
	}
	if got.PermissionIDs[0] != permID {
		t.Error("stored role shares its permission slice with the caller")
	}

	if _, err := s.GetRoleByName(ctx, "MISSING"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetRoleByName(MISSING) = %v, want ErrNotFound", err)
	}

	if err := s.DeleteRole(ctx, got.ID); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	if _, err := s.GetRole(ctx, got.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetRole after delete = %v, want ErrNotFound", err)
	}
}

func TestNextUserCodeMonotonic(t *testing.T) {
	ctx := context.Background()
	s := New()

	for want := int64(1); want <= 5; want++ {
		code, err := s.NextUserCode(ctx)
		if err != nil {
			t.Fatalf("NextUserCode: %v", err)
		}
		if code != want {
			t.Fatalf("code = %d, want %d", code, want)
		}
	}
}

func seedUsers(t *testing.T, s *Store, n int) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		code, err := s.NextUserCode(ctx)
		if err != nil {
			t.Fatal(err)
		}
		u := &user.User{
			ID:        id.NewUserID(),
			UserCode:  code,
			Name:      fmt.Sprintf("user-%02d", i),
			Email:     fmt.Sprintf("user%02d@example.com", i),
			BirthDate: base.AddDate(-20, 0, i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListUsersPaginationAndSort(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, 25)

	// Newest-first ordering, page of ten.
	page, err := s.ListUsers(ctx, &user.ListFilter{
		SortBy:  user.SortByCreatedAt,
		SortDir: user.SortDesc,
		Limit:   10,
		Offset:  0,
	})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(page) != 10 {
		t.Fatalf("expected 10 users, got %d", len(page))
	}
	if page[0].UserCode != 25 {
		t.Errorf("first user code = %d, want 25", page[0].UserCode)
	}

	// Third page holds the remainder.
	last, err := s.ListUsers(ctx, &user.ListFilter{
		SortBy:  user.SortByCreatedAt,
		SortDir: user.SortDesc,
		Limit:   10,
		Offset:  20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 5 {
		t.Errorf("expected 5 users on last page, got %d", len(last))
	}

	// Offset past the end yields an empty page, not an error.
	empty, err := s.ListUsers(ctx, &user.ListFilter{Limit: 10, Offset: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %d users", len(empty))
	}

	// Ascending sort by name.
	byName, err := s.ListUsers(ctx, &user.ListFilter{
		SortBy:  user.SortByName,
		SortDir: user.SortAsc,
		Limit:   3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if byName[0].Name != "user-00" || byName[2].Name != "user-02" {
		t.Errorf("ascending name sort wrong: %s .. %s", byName[0].Name, byName[2].Name)
	}

	// Descending sort by user code.
	byCode, err := s.ListUsers(ctx, &user.ListFilter{
		SortBy:  user.SortByUserCode,
		SortDir: user.SortDesc,
		Limit:   1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if byCode[0].UserCode != 25 {
		t.Errorf("descending code sort wrong: %d", byCode[0].UserCode)
	}
}

func TestListUsersDeletedFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, 4)

	u, err := s.GetUserByCode(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	u.Deleted = true
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	active := false
	got, err := s.ListUsers(ctx, &user.ListFilter{Deleted: &active, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 active users, got %d", len(got))
	}

	deleted := true
	gone, err := s.ListUsers(ctx, &user.ListFilter{Deleted: &deleted, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(gone) != 1 || gone[0].UserCode != 2 {
		t.Errorf("expected only user 2 deleted, got %d users", len(gone))
	}

	total, err := s.CountUsers(ctx, &user.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 {
		t.Errorf("CountUsers = %d, want 4", total)
	}
	activeTotal, err := s.CountUsers(ctx, &user.ListFilter{Deleted: &active})
	if err != nil {
		t.Fatal(err)
	}
	if activeTotal != 3 {
		t.Errorf("CountUsers(active) = %d, want 3", activeTotal)
	}
}

func TestCountUsersByRole(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, 3)

	roleID := id.NewRoleID()
	for _, code := range []int64{1, 3} {
		u, err := s.GetUserByCode(ctx, code)
		if err != nil {
			t.Fatal(err)
		}
		rid := roleID
		u.RoleID = &rid
		if err := s.UpdateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.CountUsersByRole(ctx, roleID)
	if err != nil {
		t.Fatalf("CountUsersByRole: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	zero, err := s.CountUsersByRole(ctx, id.NewRoleID())
	if err != nil {
		t.Fatal(err)
	}
	if zero != 0 {
		t.Errorf("count for unknown role = %d, want 0", zero)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByEmail = %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByCode(ctx, 99); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByCode = %v, want ErrNotFound", err)
	}
}
