package steward

import "errors"

var (
	// ErrPermissionNotFound is returned when a permission cannot be found.
	ErrPermissionNotFound = errors.New("steward: permission not found")

	// ErrPermissionExists is returned when a permission name is already taken.
	ErrPermissionExists = errors.New("steward: permission already exists")

	// ErrRoleNotFound is returned when a role cannot be found.
	ErrRoleNotFound = errors.New("steward: role not found")

	// ErrRoleExists is returned when a role name is already taken.
	ErrRoleExists = errors.New("steward: role already exists")

	// ErrRoleHasPermission is returned when attaching a permission a role
	// already holds.
	ErrRoleHasPermission = errors.New("steward: role already has permission")

	// ErrRoleMissingPermission is returned when detaching a permission a role
	// does not hold.
	ErrRoleMissingPermission = errors.New("steward: role does not have permission")

	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("steward: user not found")

	// ErrEmailExists is returned when a user email is already taken.
	ErrEmailExists = errors.New("steward: email already in use")

	// ErrUserHasRole is returned when assigning a role to a user that
	// already has one.
	ErrUserHasRole = errors.New("steward: user already has a role")

	// ErrUserHasNoRole is returned when removing a role from a user that
	// has none.
	ErrUserHasNoRole = errors.New("steward: user has no role")

	// ErrUserDeleted is returned when soft-deleting an already deleted user.
	ErrUserDeleted = errors.New("steward: user already deleted")

	// ErrUserNotDeleted is returned when restoring a user that is not deleted.
	ErrUserNotDeleted = errors.New("steward: user is not deleted")
)

// IsConflict reports whether err is one of the semantic rejection errors.
// These map to HTTP 409 at the API boundary and must never be retried.
func IsConflict(err error) bool {
	for _, target := range []error{
		ErrPermissionNotFound, ErrPermissionExists,
		ErrRoleNotFound, ErrRoleExists,
		ErrRoleHasPermission, ErrRoleMissingPermission,
		ErrUserNotFound, ErrEmailExists,
		ErrUserHasRole, ErrUserHasNoRole,
		ErrUserDeleted, ErrUserNotDeleted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
