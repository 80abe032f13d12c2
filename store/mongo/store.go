// Package mongo provides a MongoDB implementation of the Steward
// composite store using the official driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
	"github.com/xraph/steward/user"
)

// Collection name constants.
const (
	colPermissions = "steward_permissions"
	colRoles       = "steward_roles"
	colUsers       = "steward_users"
	colCounters    = "steward_counters"
)

// userCodeCounter is the _id of the user code sequence document.
const userCodeCounter = "user_code"

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Steward store.
type Store struct {
	client *mongod.Client
	db     *mongod.Database
}

// New creates a new MongoDB store on the given database.
func New(client *mongod.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// Migrate creates indexes for all steward collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.db.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("steward/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all steward collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colPermissions: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colRoles: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colUsers: {
			{
				Keys:    bson.D{{Key: "user_code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
			{Keys: bson.D{{Key: "deleted", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	if _, err := s.db.Collection(colPermissions).InsertOne(ctx, permissionToModel(p)); err != nil {
		return fmt.Errorf("steward: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	var m permissionModel
	err := s.db.Collection(colPermissions).
		FindOne(ctx, bson.M{"_id": permID.String()}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %s: %w", permID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get permission: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*permission.Permission, error) {
	var m permissionModel
	err := s.db.Collection(colPermissions).
		FindOne(ctx, bson.M{"name": name}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get permission by name: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) UpdatePermission(ctx context.Context, p *permission.Permission) error {
	m := permissionToModel(p)
	res, err := s.db.Collection(colPermissions).
		ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("steward: update permission: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("permission %s: %w", p.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeletePermission(ctx context.Context, permID id.PermissionID) error {
	_, err := s.db.Collection(colPermissions).
		DeleteOne(ctx, bson.M{"_id": permID.String()})
	if err != nil {
		return fmt.Errorf("steward: delete permission: %w", err)
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	f := bson.M{}
	if filter != nil && filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	cur, err := s.db.Collection(colPermissions).
		Find(ctx, f, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("steward: list permissions: %w", err)
	}
	var models []permissionModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("steward: list permissions: %w", err)
	}
	result := make([]*permission.Permission, len(models))
	for i := range models {
		result[i] = permissionFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListPermissionsByIDs(ctx context.Context, ids []id.PermissionID) ([]*permission.Permission, error) {
	if len(ids) == 0 {
		return []*permission.Permission{}, nil
	}
	raw := make([]string, len(ids))
	for i, pid := range ids {
		raw[i] = pid.String()
	}
	cur, err := s.db.Collection(colPermissions).
		Find(ctx, bson.M{"_id": bson.M{"$in": raw}})
	if err != nil {
		return nil, fmt.Errorf("steward: list permissions by ids: %w", err)
	}
	var models []permissionModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("steward: list permissions by ids: %w", err)
	}

	// Preserve the input order; vanished ids are skipped.
	byID := make(map[string]*permissionModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}
	result := make([]*permission.Permission, 0, len(ids))
	for _, r := range raw {
		if m, ok := byID[r]; ok {
			result = append(result, permissionFromModel(m))
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	if _, err := s.db.Collection(colRoles).InsertOne(ctx, roleToModel(r)); err != nil {
		return fmt.Errorf("steward: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	var m roleModel
	err := s.db.Collection(colRoles).
		FindOne(ctx, bson.M{"_id": roleID.String()}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*role.Role, error) {
	var m roleModel
	err := s.db.Collection(colRoles).
		FindOne(ctx, bson.M{"name": name}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get role by name: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	m := roleToModel(r)
	res, err := s.db.Collection(colRoles).
		ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("steward: update role: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("role %s: %w", r.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	_, err := s.db.Collection(colRoles).
		DeleteOne(ctx, bson.M{"_id": roleID.String()})
	if err != nil {
		return fmt.Errorf("steward: delete role: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	f := bson.M{}
	if filter != nil && filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	cur, err := s.db.Collection(colRoles).
		Find(ctx, f, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("steward: list roles: %w", err)
	}
	var models []roleModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("steward: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	if _, err := s.db.Collection(colUsers).InsertOne(ctx, userToModel(u)); err != nil {
		return fmt.Errorf("steward: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*user.User, error) {
	var m userModel
	err := s.db.Collection(colUsers).
		FindOne(ctx, bson.M{"_id": userID.String()}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get user: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) GetUserByCode(ctx context.Context, userCode int64) (*user.User, error) {
	var m userModel
	err := s.db.Collection(colUsers).
		FindOne(ctx, bson.M{"user_code": userCode}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %d: %w", userCode, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get user by code: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var m userModel
	err := s.db.Collection(colUsers).
		FindOne(ctx, bson.M{"email": email}).
		Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get user by email: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	m := userToModel(u)
	res, err := s.db.Collection(colUsers).
		ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("steward: update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", u.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter *user.ListFilter) ([]*user.User, error) {
	opts := options.Find().
		SetSort(userSort(filter))
	if filter != nil {
		if filter.Limit > 0 {
			opts = opts.SetLimit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			opts = opts.SetSkip(int64(filter.Offset))
		}
	}
	cur, err := s.db.Collection(colUsers).Find(ctx, userFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("steward: list users: %w", err)
	}
	var models []userModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("steward: list users: %w", err)
	}
	result := make([]*user.User, len(models))
	for i := range models {
		result[i] = userFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountUsers(ctx context.Context, filter *user.ListFilter) (int64, error) {
	count, err := s.db.Collection(colUsers).CountDocuments(ctx, userFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("steward: count users: %w", err)
	}
	return count, nil
}

func (s *Store) CountUsersByRole(ctx context.Context, roleID id.RoleID) (int64, error) {
	count, err := s.db.Collection(colUsers).
		CountDocuments(ctx, bson.M{"role_id": roleID.String()})
	if err != nil {
		return 0, fmt.Errorf("steward: count users by role: %w", err)
	}
	return count, nil
}

// NextUserCode atomically increments and returns the user code sequence.
// The counter document is created on first use.
func (s *Store) NextUserCode(ctx context.Context) (int64, error) {
	var c counterModel
	err := s.db.Collection(colCounters).
		FindOneAndUpdate(ctx,
			bson.M{"_id": userCodeCounter},
			bson.M{"$inc": bson.M{"value": 1}},
			options.FindOneAndUpdate().
				SetUpsert(true).
				SetReturnDocument(options.After),
		).
		Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("steward: next user code: %w", err)
	}
	return c.Value, nil
}

// userFilter builds the deletion-state filter; pagination and sorting
// are handled by find options.
func userFilter(filter *user.ListFilter) bson.M {
	f := bson.M{}
	if filter != nil && filter.Deleted != nil {
		f["deleted"] = *filter.Deleted
	}
	return f
}

// userSort maps the exported sort fields onto document keys. Creation
// order is the fallback so listings stay deterministic.
func userSort(filter *user.ListFilter) bson.D {
	field := "created_at"
	dir := -1
	if filter != nil {
		switch filter.SortBy {
		case user.SortByName:
			field = "name"
		case user.SortByEmail:
			field = "email"
		case user.SortByUserCode:
			field = "user_code"
		case user.SortByBirthDate:
			field = "birth_date"
		}
		if filter.SortDir == user.SortAsc {
			dir = 1
		}
	}
	return bson.D{{Key: field, Value: dir}}
}
