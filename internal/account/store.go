package account

import "context"

// Store describes the persistence operations the account service needs.
// Implementations return ErrNotFound for missing rows and ErrConflict for
// uniqueness violations.
type Store interface {
	CreateAccount(ctx context.Context, acct *Account) error
	FindAccount(ctx context.Context, id string) (*Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)

	CreateProfile(ctx context.Context, profile *Profile) error
	FindProfile(ctx context.Context, id string) (*Profile, error)

	CreateRole(ctx context.Context, role *Role) error
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	AssignRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	RoleAssignments(ctx context.Context, userID string) ([]RoleAssignment, error)

	CreateSession(ctx context.Context, sess *SessionRecord) error
	FindSessionByRefreshHash(ctx context.Context, hash string) (*SessionRecord, error)
	RevokeSession(ctx context.Context, id string) error
	RevokeSessionsForUser(ctx context.Context, userID string) error
}
