package authority

import "time"

// Identity is the authenticated principal as issued by the auth service.
// The authority holds a read-only copy for the lifetime of the session.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the live authentication grant backing an Identity. When it is
// nil, identity, profile and roles are nil/empty as well.
type Session struct {
	Identity     Identity  `json:"identity"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Profile carries user-facing attributes keyed by identity id. It is
// best-effort: its absence never blocks navigation.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
}

// RoleAssignment is one row of the user_roles join, already resolved to a
// role name. Rows whose role could not be resolved carry an empty RoleName
// and are dropped during resolution.
type RoleAssignment struct {
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
}

// EventKind enumerates session transitions pushed by the auth service.
type EventKind string

const (
	EventSignedIn       EventKind = "signed-in"
	EventSignedOut      EventKind = "signed-out"
	EventTokenRefreshed EventKind = "token-refreshed"
)

// SessionEvent is one session transition. Session is nil for signed-out.
type SessionEvent struct {
	Kind    EventKind `json:"kind"`
	Session *Session  `json:"session,omitempty"`
}
