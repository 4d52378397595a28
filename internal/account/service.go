// Package account implements the hosted-auth half of the platform:
// accounts, profiles, roles, role assignments and server-side sessions.
// Clients reach it over HTTP; the session authority treats it as the
// remote store.
package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"worklane.org/internal/ids"
	"worklane.org/internal/token"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour * 14
)

// Service provides credential exchange, session lifecycle and role
// management on top of a Store.
type Service struct {
	store      Store
	now        func() time.Time
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the account service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("account store is required")
	}
	s := &Service{
		store:      store,
		now:        time.Now,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignIn exchanges credentials for a session. Every failure mode reads as
// ErrUnauthorized so callers cannot probe which part was wrong.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Session{}, ErrUnauthorized
	}
	acct, err := s.store.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if acct.Status != StatusActive {
		return Session{}, ErrUnauthorized
	}
	if err := VerifyPassword(acct.PasswordHash, password); err != nil {
		return Session{}, ErrUnauthorized
	}
	return s.issueSession(ctx, acct)
}

// Refresh rotates a refresh token into a fresh session. The presented
// token is revoked regardless of rotation success.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return Session{}, ErrUnauthorized
	}
	rec, err := s.store.FindSessionByRefreshHash(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if rec.Revoked || s.now().After(rec.ExpiresAt) {
		return Session{}, ErrUnauthorized
	}
	if err := s.store.RevokeSession(ctx, rec.ID); err != nil {
		return Session{}, err
	}
	acct, err := s.store.FindAccount(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if acct.Status != StatusActive {
		return Session{}, ErrUnauthorized
	}
	return s.issueSession(ctx, acct)
}

// SignOut revokes every session of the token's subject.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	claims, err := token.ParseAndValidate(accessToken)
	if err != nil {
		return ErrUnauthorized
	}
	return s.store.RevokeSessionsForUser(ctx, claims.Subject)
}

// SessionInfo validates an access token and returns its identity and the
// roles frozen into it at issuance.
func (s *Service) SessionInfo(ctx context.Context, accessToken string) (Identity, []string, error) {
	claims, err := token.ParseAndValidate(accessToken)
	if err != nil {
		return Identity{}, nil, ErrUnauthorized
	}
	acct, err := s.store.FindAccount(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, nil, ErrUnauthorized
		}
		return Identity{}, nil, err
	}
	return Identity{ID: acct.ID, Email: acct.Email}, claims.Roles, nil
}

// ProfileByID loads one profile row.
func (s *Service) ProfileByID(ctx context.Context, id string) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, fmt.Errorf("%w: profile id is required", ErrInvalidInput)
	}
	p, err := s.store.FindProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return *p, nil
}

// RoleAssignments lists the user_roles rows for a user, role names
// included. Rows whose role no longer resolves keep an empty name; the
// client side drops them.
func (s *Service) RoleAssignments(ctx context.Context, userID string) ([]RoleAssignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.RoleAssignments(ctx, userID)
}

// CreateAccount registers a new account and its one-to-one profile row.
func (s *Service) CreateAccount(ctx context.Context, email, password, department, designation string) (Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return Account{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return Account{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Account{}, err
	}

	now := s.now().UTC()
	acct := &Account{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return Account{}, err
	}
	profile := &Profile{
		ID:          acct.ID,
		Email:       email,
		Department:  strings.TrimSpace(department),
		Designation: strings.TrimSpace(designation),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return Account{}, err
	}
	return *acct, nil
}

// CreateRole adds a named role to the open vocabulary.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	role := &Role{
		ID:          ids.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateRole(ctx, role); err != nil {
		return Role{}, err
	}
	return *role, nil
}

// AssignRole grants the named role to a user.
func (s *Service) AssignRole(ctx context.Context, userID, roleName string) (RoleAssignment, error) {
	userID = strings.TrimSpace(userID)
	roleName = strings.TrimSpace(roleName)
	if userID == "" || roleName == "" {
		return RoleAssignment{}, fmt.Errorf("%w: user id and role name are required", ErrInvalidInput)
	}
	if _, err := s.store.FindAccount(ctx, userID); err != nil {
		return RoleAssignment{}, err
	}
	role, err := s.store.FindRoleByName(ctx, roleName)
	if err != nil {
		return RoleAssignment{}, err
	}
	if err := s.store.AssignRole(ctx, userID, role.ID); err != nil {
		return RoleAssignment{}, err
	}
	return RoleAssignment{UserID: userID, RoleID: role.ID, RoleName: role.Name}, nil
}

// RemoveRole withdraws the named role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleName string) error {
	userID = strings.TrimSpace(userID)
	roleName = strings.TrimSpace(roleName)
	if userID == "" || roleName == "" {
		return fmt.Errorf("%w: user id and role name are required", ErrInvalidInput)
	}
	role, err := s.store.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.store.RemoveRole(ctx, userID, role.ID)
}

// ListRoles returns the role vocabulary.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *Service) issueSession(ctx context.Context, acct *Account) (Session, error) {
	assignments, err := s.store.RoleAssignments(ctx, acct.ID)
	if err != nil {
		return Session{}, err
	}
	var roles []string
	for _, ra := range assignments {
		if strings.TrimSpace(ra.RoleName) == "" {
			continue
		}
		roles = append(roles, ra.RoleName)
	}

	access, err := token.Generate(acct.ID, roles, s.accessTTL)
	if err != nil {
		return Session{}, err
	}
	refresh := uuid.NewString()
	now := s.now().UTC()
	rec := &SessionRecord{
		ID:          ids.New(),
		UserID:      acct.ID,
		RefreshHash: hashRefreshToken(refresh),
		ExpiresAt:   now.Add(s.refreshTTL),
		CreatedAt:   now,
	}
	if err := s.store.CreateSession(ctx, rec); err != nil {
		return Session{}, err
	}

	return Session{
		Identity:     Identity{ID: acct.ID, Email: acct.Email},
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.accessTTL),
	}, nil
}

func hashRefreshToken(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
