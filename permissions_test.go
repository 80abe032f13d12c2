package steward

import (
	"context"
	"errors"
	"testing"
)

func TestCreatePermission_Duplicate(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	first, err := eng.CreatePermission(ctx, "user.read")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.CreatePermission(ctx, "user.read"); !errors.Is(err, ErrPermissionExists) {
		t.Fatalf("duplicate create = %v, want ErrPermissionExists", err)
	}

	// The first permission is untouched.
	perms, err := eng.ListPermissions(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 1 || perms[0].ID != first.ID {
		t.Fatalf("expected the original permission to survive, got %d", len(perms))
	}
}

func TestRenamePermission(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p, err := eng.CreatePermission(ctx, "user.read")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreatePermission(ctx, "user.write"); err != nil {
		t.Fatal(err)
	}

	// Renaming to a taken name conflicts.
	if _, err := eng.RenamePermission(ctx, "user.read", "user.write"); !errors.Is(err, ErrPermissionExists) {
		t.Fatalf("rename to taken name = %v, want ErrPermissionExists", err)
	}

	// Renaming a missing permission conflicts.
	if _, err := eng.RenamePermission(ctx, "nope", "other"); !errors.Is(err, ErrPermissionNotFound) {
		t.Fatalf("rename missing = %v, want ErrPermissionNotFound", err)
	}

	// A successful rename preserves identity.
	renamed, err := eng.RenamePermission(ctx, "user.read", "user.admin")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.ID != p.ID {
		t.Errorf("rename changed identity: %s != %s", renamed.ID, p.ID)
	}
}

func TestRenamePermission_RoleReferencesSurvive(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreatePermission(ctx, "user.read"); err != nil {
		t.Fatal(err)
	}
	r, err := eng.CreateRole(ctx, "admin", []string{"user.read"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.RenamePermission(ctx, "user.read", "user.view"); err != nil {
		t.Fatal(err)
	}

	// Roles reference permissions by ID, so the rename shows through.
	roles, err := eng.ListRoles(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 || roles[0].ID != r.ID {
		t.Fatal("expected the role to survive")
	}
	if len(roles[0].Permissions) != 1 || roles[0].Permissions[0].Name != "user.view" {
		t.Fatalf("role permission not renamed: %+v", roles[0].Permissions)
	}
}

func TestListPermissions_Filter(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	for _, name := range []string{"user.read", "user.write", "role.read"} {
		if _, err := eng.CreatePermission(ctx, name); err != nil {
			t.Fatal(err)
		}
	}

	perms, err := eng.ListPermissions(ctx, "USER")
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(perms))
	}
}

func TestDeletePermission_DanglingRoleReference(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreatePermission(ctx, "user.read"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateRole(ctx, "admin", []string{"user.read"}); err != nil {
		t.Fatal(err)
	}

	if err := eng.DeletePermission(ctx, "user.read"); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeletePermission(ctx, "user.read"); !errors.Is(err, ErrPermissionNotFound) {
		t.Fatalf("second delete = %v, want ErrPermissionNotFound", err)
	}

	// The role survives; resolution omits the vanished permission.
	roles, err := eng.ListRoles(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 {
		t.Fatal("expected the role to survive the permission delete")
	}
	if len(roles[0].Permissions) != 0 {
		t.Errorf("expected vanished permission to be omitted, got %d", len(roles[0].Permissions))
	}
}
