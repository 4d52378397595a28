package account

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Account is an authentication principal: the row behind a sign-in.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile carries the user-facing attributes keyed by account id,
// one-to-one with Account.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Department  string    `json:"department,omitempty"`
	Designation string    `json:"designation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role is a named permission group. The name vocabulary is open-ended;
// clients must treat unknown names as simply "not granted".
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleAssignment is a user_roles row joined to its role name. RoleName is
// empty when the joined role row is gone; clients drop such rows.
type RoleAssignment struct {
	UserID   string `json:"user_id"`
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
}

// SessionRecord is the persisted server-side session backing a refresh
// token. The refresh token itself is never stored, only its hash.
type SessionRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	RefreshHash string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	Revoked     bool      `json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is the credential-exchange result handed to clients.
type Session struct {
	Identity     Identity  `json:"identity"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Identity is the public view of an account.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
