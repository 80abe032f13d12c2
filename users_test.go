package steward

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/steward/user"
)

func testUserInput(name, email, roleName string) *user.Input {
	return &user.Input{
		Name:      name,
		Email:     email,
		BirthDate: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		RoleName:  roleName,
	}
}

func testListQuery(page, size int) user.ListQuery {
	return user.ListQuery{Page: page, Size: size}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreateUser(ctx, testUserInput("alice", "alice@example.com", "")); err != nil {
		t.Fatal(err)
	}

	// Email collision is detected after normalization.
	_, err := eng.CreateUser(ctx, testUserInput("other", "  ALICE@Example.Com ", ""))
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email = %v, want ErrEmailExists", err)
	}
}

func TestCreateUser_UnknownRole(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	_, err := eng.CreateUser(ctx, testUserInput("alice", "alice@example.com", "ghost"))
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("unknown role = %v, want ErrRoleNotFound", err)
	}
}

func TestUserCodes_SequentialAcrossDeletes(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	for i := 1; i <= 3; i++ {
		u, err := eng.CreateUser(ctx, testUserInput(
			fmt.Sprintf("user-%d", i),
			fmt.Sprintf("user%d@example.com", i),
			"",
		))
		if err != nil {
			t.Fatal(err)
		}
		if u.UserCode != int64(i) {
			t.Fatalf("user code = %d, want %d", u.UserCode, i)
		}
	}

	// A soft delete never frees a code.
	if _, err := eng.SoftDeleteUser(ctx, 2); err != nil {
		t.Fatal(err)
	}
	u, err := eng.CreateUser(ctx, testUserInput("user-4", "user4@example.com", ""))
	if err != nil {
		t.Fatal(err)
	}
	if u.UserCode != 4 {
		t.Fatalf("code after delete = %d, want 4", u.UserCode)
	}
}

func TestListUsers_Pagination(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	for i := 0; i < 25; i++ {
		if _, err := eng.CreateUser(ctx, testUserInput(
			fmt.Sprintf("user-%02d", i),
			fmt.Sprintf("user%02d@example.com", i),
			"",
		)); err != nil {
			t.Fatal(err)
		}
	}

	page, err := eng.ListUsers(ctx, testListQuery(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 10 {
		t.Errorf("page 1 size = %d, want 10", len(page.Data))
	}
	if page.Total != 25 {
		t.Errorf("total = %d, want 25", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", page.TotalPages)
	}

	last, err := eng.ListUsers(ctx, testListQuery(3, 10))
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Data) != 5 {
		t.Errorf("page 3 size = %d, want 5", len(last.Data))
	}

	// Default ordering is newest first.
	if page.Data[0].UserCode != 25 {
		t.Errorf("first item code = %d, want 25", page.Data[0].UserCode)
	}

	// Explicit ascending sort by user code.
	asc, err := eng.ListUsers(ctx, user.ListQuery{
		Page: 1, Size: 10,
		SortBy:  user.SortByUserCode,
		SortDir: user.SortAsc,
	})
	if err != nil {
		t.Fatal(err)
	}
	if asc.Data[0].UserCode != 1 {
		t.Errorf("ascending first code = %d, want 1", asc.Data[0].UserCode)
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, "admin", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateUser(ctx, testUserInput("alice", "alice@example.com", "admin")); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateUser(ctx, testUserInput("bob", "bob@example.com", "")); err != nil {
		t.Fatal(err)
	}

	// Changing to another user's email conflicts.
	_, err := eng.UpdateUser(ctx, 1, &user.Input{Email: "bob@example.com"})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("email collision = %v, want ErrEmailExists", err)
	}

	// Keeping the same email is not a collision.
	u, err := eng.UpdateUser(ctx, 1, &user.Input{Name: "alice2", Email: "alice@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "alice2" {
		t.Errorf("name = %q, want alice2", u.Name)
	}
	// No role in the input clears the reference.
	if u.Role != nil {
		t.Errorf("expected role cleared, got %+v", u.Role)
	}

	// Unknown user conflicts.
	if _, err := eng.UpdateUser(ctx, 99, &user.Input{Name: "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("update missing user = %v, want ErrUserNotFound", err)
	}
}

func TestAddAndRemoveRole(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, "admin", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateUser(ctx, testUserInput("alice", "alice@example.com", "")); err != nil {
		t.Fatal(err)
	}

	// Removing before any role is attached conflicts.
	if _, err := eng.RemoveRoleFromUser(ctx, 1, "admin"); !errors.Is(err, ErrUserHasNoRole) {
		t.Fatalf("remove with no role = %v, want ErrUserHasNoRole", err)
	}

	u, err := eng.AddRoleToUser(ctx, 1, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role == nil || u.Role.Name != "ADMIN" {
		t.Fatalf("role not attached: %+v", u.Role)
	}

	// A second attach conflicts even with a different role.
	if _, err := eng.CreateRole(ctx, "viewer", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddRoleToUser(ctx, 1, "viewer"); !errors.Is(err, ErrUserHasRole) {
		t.Fatalf("second add = %v, want ErrUserHasRole", err)
	}

	// Removal validates the named role's existence, not a match.
	if _, err := eng.RemoveRoleFromUser(ctx, 1, "ghost"); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("remove unknown role = %v, want ErrRoleNotFound", err)
	}
	u, err = eng.RemoveRoleFromUser(ctx, 1, "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != nil || u.RoleID != nil {
		t.Errorf("role not cleared: %+v", u.Role)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreateUser(ctx, testUserInput("alice", "alice@example.com", "")); err != nil {
		t.Fatal(err)
	}

	// Restoring an active user conflicts.
	if _, err := eng.RestoreUser(ctx, 1); !errors.Is(err, ErrUserNotDeleted) {
		t.Fatalf("restore active = %v, want ErrUserNotDeleted", err)
	}

	u, err := eng.SoftDeleteUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !u.Deleted {
		t.Fatal("deleted flag not set")
	}

	if _, err := eng.SoftDeleteUser(ctx, 1); !errors.Is(err, ErrUserDeleted) {
		t.Fatalf("second delete = %v, want ErrUserDeleted", err)
	}

	// The deleted filter partitions the listing.
	active := false
	page, err := eng.ListUsers(ctx, user.ListQuery{Page: 1, Size: 10, Deleted: &active})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 {
		t.Errorf("active total = %d, want 0", page.Total)
	}
	deleted := true
	page, err = eng.ListUsers(ctx, user.ListQuery{Page: 1, Size: 10, Deleted: &deleted})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 {
		t.Errorf("deleted total = %d, want 1", page.Total)
	}

	u, err = eng.RestoreUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if u.Deleted {
		t.Fatal("deleted flag not cleared")
	}
}

func TestCountUsersByRole(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, "admin", nil); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		if _, err := eng.CreateUser(ctx, testUserInput(
			fmt.Sprintf("user-%d", i),
			fmt.Sprintf("user%d@example.com", i),
			"ADMIN",
		)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := eng.CreateUser(ctx, testUserInput("norole", "norole@example.com", "")); err != nil {
		t.Fatal(err)
	}

	// Lookup is case-normalized.
	n, err := eng.CountUsersByRole(ctx, "Admin")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	// An unknown role counts zero, it is not an error.
	n, err = eng.CountUsersByRole(ctx, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("unknown role count = %d, want 0", n)
	}
}
