package authority

import (
	"context"
	"errors"
)

var (
	// ErrNotFound marks a row that does not exist (missing profile,
	// unknown user). It is tolerated by omission, never fatal.
	ErrNotFound = errors.New("authority: not found")
	// ErrUnauthorized marks credentials or tokens the auth service
	// rejected.
	ErrUnauthorized = errors.New("authority: unauthorized")
)

// Gateway is the remote auth/database boundary. Every method is a plain
// request/response call; any error other than ErrNotFound and
// ErrUnauthorized is treated as transient and fails closed.
type Gateway interface {
	// GetCurrentSession restores the persisted session, if any. A nil
	// session with nil error means "signed out".
	GetCurrentSession(ctx context.Context) (*Session, error)

	// SubscribeSessionEvents delivers every subsequent session
	// transition. The channel closes when ctx ends.
	SubscribeSessionEvents(ctx context.Context) <-chan SessionEvent

	// QueryProfile loads the profile row for an identity id.
	QueryProfile(ctx context.Context, id string) (Profile, error)

	// QueryRoleAssignments loads the user_roles rows joined to role
	// names for an identity id.
	QueryRoleAssignments(ctx context.Context, id string) ([]RoleAssignment, error)

	// InvalidateSession revokes the current session remotely.
	InvalidateSession(ctx context.Context) error
}
