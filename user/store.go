package user

import (
	"context"

	"github.com/xraph/steward/id"
)

// Store defines persistence operations for users.
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, u *User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID id.UserID) (*User, error)

	// GetUserByCode retrieves a user by its user code.
	GetUserByCode(ctx context.Context, userCode int64) (*User, error)

	// GetUserByEmail retrieves a user by its normalized email.
	// Callers pass the already-normalized email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUser persists changes to a user.
	UpdateUser(ctx context.Context, u *User) error

	// ListUsers returns one page of users matching the filter.
	ListUsers(ctx context.Context, filter *ListFilter) ([]*User, error)

	// CountUsers returns the number of users matching the filter,
	// ignoring its pagination fields.
	CountUsers(ctx context.Context, filter *ListFilter) (int64, error)

	// CountUsersByRole returns the number of users referencing the role.
	CountUsersByRole(ctx context.Context, roleID id.RoleID) (int64, error)

	// NextUserCode atomically increments and returns the user code sequence.
	NextUserCode(ctx context.Context) (int64, error)
}
