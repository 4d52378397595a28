package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"worklane.org/internal/token"
)

type stubStore struct {
	findAccountFn        func(ctx context.Context, id string) (*Account, error)
	findAccountByEmailFn func(ctx context.Context, email string) (*Account, error)
	createAccountFn      func(ctx context.Context, acct *Account) error
	createProfileFn      func(ctx context.Context, p *Profile) error
	findProfileFn        func(ctx context.Context, id string) (*Profile, error)
	createRoleFn         func(ctx context.Context, r *Role) error
	findRoleByNameFn     func(ctx context.Context, name string) (*Role, error)
	listRolesFn          func(ctx context.Context) ([]Role, error)
	assignRoleFn         func(ctx context.Context, userID, roleID string) error
	removeRoleFn         func(ctx context.Context, userID, roleID string) error
	roleAssignmentsFn    func(ctx context.Context, userID string) ([]RoleAssignment, error)
	createSessionFn      func(ctx context.Context, sess *SessionRecord) error
	findSessionFn        func(ctx context.Context, hash string) (*SessionRecord, error)
	revokeSessionFn      func(ctx context.Context, id string) error
	revokeUserFn         func(ctx context.Context, userID string) error
}

func (s *stubStore) CreateAccount(ctx context.Context, acct *Account) error {
	if s.createAccountFn != nil {
		return s.createAccountFn(ctx, acct)
	}
	return nil
}

func (s *stubStore) FindAccount(ctx context.Context, id string) (*Account, error) {
	if s.findAccountFn != nil {
		return s.findAccountFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubStore) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	if s.findAccountByEmailFn != nil {
		return s.findAccountByEmailFn(ctx, email)
	}
	return nil, ErrNotFound
}

func (s *stubStore) CreateProfile(ctx context.Context, p *Profile) error {
	if s.createProfileFn != nil {
		return s.createProfileFn(ctx, p)
	}
	return nil
}

func (s *stubStore) FindProfile(ctx context.Context, id string) (*Profile, error) {
	if s.findProfileFn != nil {
		return s.findProfileFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubStore) CreateRole(ctx context.Context, r *Role) error {
	if s.createRoleFn != nil {
		return s.createRoleFn(ctx, r)
	}
	return nil
}

func (s *stubStore) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	if s.findRoleByNameFn != nil {
		return s.findRoleByNameFn(ctx, name)
	}
	return nil, ErrNotFound
}

func (s *stubStore) ListRoles(ctx context.Context) ([]Role, error) {
	if s.listRolesFn != nil {
		return s.listRolesFn(ctx)
	}
	return nil, nil
}

func (s *stubStore) AssignRole(ctx context.Context, userID, roleID string) error {
	if s.assignRoleFn != nil {
		return s.assignRoleFn(ctx, userID, roleID)
	}
	return nil
}

func (s *stubStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	if s.removeRoleFn != nil {
		return s.removeRoleFn(ctx, userID, roleID)
	}
	return nil
}

func (s *stubStore) RoleAssignments(ctx context.Context, userID string) ([]RoleAssignment, error) {
	if s.roleAssignmentsFn != nil {
		return s.roleAssignmentsFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubStore) CreateSession(ctx context.Context, sess *SessionRecord) error {
	if s.createSessionFn != nil {
		return s.createSessionFn(ctx, sess)
	}
	return nil
}

func (s *stubStore) FindSessionByRefreshHash(ctx context.Context, hash string) (*SessionRecord, error) {
	if s.findSessionFn != nil {
		return s.findSessionFn(ctx, hash)
	}
	return nil, ErrNotFound
}

func (s *stubStore) RevokeSession(ctx context.Context, id string) error {
	if s.revokeSessionFn != nil {
		return s.revokeSessionFn(ctx, id)
	}
	return nil
}

func (s *stubStore) RevokeSessionsForUser(ctx context.Context, userID string) error {
	if s.revokeUserFn != nil {
		return s.revokeUserFn(ctx, userID)
	}
	return nil
}

func activeAccount(t *testing.T, id, email, password string) *Account {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &Account{ID: id, Email: email, PasswordHash: hash, Status: StatusActive}
}

func newService(t *testing.T, store Store, opts ...ServiceOption) *Service {
	t.Helper()
	t.Setenv("WORKLANE_AUTH_SECRET", "test-secret")
	token.ResetSecretForTests()
	svc, err := NewService(store, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSignInIssuesSession(t *testing.T) {
	acct := activeAccount(t, "u1", "ada@example.com", "hunter2")
	store := &stubStore{
		findAccountByEmailFn: func(_ context.Context, email string) (*Account, error) {
			if email != "ada@example.com" {
				return nil, ErrNotFound
			}
			return acct, nil
		},
		roleAssignmentsFn: func(_ context.Context, _ string) ([]RoleAssignment, error) {
			return []RoleAssignment{
				{UserID: "u1", RoleID: "r1", RoleName: "ADMIN"},
				{UserID: "u1", RoleID: "r2", RoleName: ""},
			}, nil
		},
	}
	svc := newService(t, store)

	sess, err := svc.SignIn(context.Background(), "Ada@Example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.Identity.ID != "u1" || sess.Identity.Email != "ada@example.com" {
		t.Fatalf("unexpected identity: %+v", sess.Identity)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	claims, err := token.ParseAndValidate(sess.AccessToken)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "ADMIN" {
		t.Fatalf("unresolvable role rows must be dropped, got %v", claims.Roles)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	acct := activeAccount(t, "u1", "ada@example.com", "hunter2")
	store := &stubStore{
		findAccountByEmailFn: func(_ context.Context, email string) (*Account, error) {
			if email == "ada@example.com" {
				return acct, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newService(t, store)

	cases := []struct{ email, password string }{
		{"ada@example.com", "wrong"},
		{"nobody@example.com", "hunter2"},
		{"", "hunter2"},
		{"ada@example.com", ""},
	}
	for _, tc := range cases {
		if _, err := svc.SignIn(context.Background(), tc.email, tc.password); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("SignIn(%q): expected ErrUnauthorized, got %v", tc.email, err)
		}
	}
}

func TestSignInRejectsInactiveAccount(t *testing.T) {
	acct := activeAccount(t, "u1", "ada@example.com", "hunter2")
	acct.Status = StatusInactive
	store := &stubStore{
		findAccountByEmailFn: func(_ context.Context, _ string) (*Account, error) {
			return acct, nil
		},
	}
	svc := newService(t, store)
	if _, err := svc.SignIn(context.Background(), "ada@example.com", "hunter2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	acct := activeAccount(t, "u1", "ada@example.com", "hunter2")
	var storedHash string
	var revoked []string
	store := &stubStore{
		findAccountFn: func(_ context.Context, id string) (*Account, error) {
			return acct, nil
		},
		createSessionFn: func(_ context.Context, sess *SessionRecord) error {
			storedHash = sess.RefreshHash
			return nil
		},
		revokeSessionFn: func(_ context.Context, id string) error {
			revoked = append(revoked, id)
			return nil
		},
	}
	store.findSessionFn = func(_ context.Context, hash string) (*SessionRecord, error) {
		if hash != storedHash {
			return nil, ErrNotFound
		}
		return &SessionRecord{ID: "s1", UserID: "u1", RefreshHash: hash, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	store.findAccountByEmailFn = func(_ context.Context, _ string) (*Account, error) { return acct, nil }
	svc := newService(t, store)

	first, err := svc.SignIn(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh must rotate the refresh token")
	}
	if len(revoked) != 1 || revoked[0] != "s1" {
		t.Fatalf("presented session must be revoked, got %v", revoked)
	}
}

func TestRefreshRejectsRevokedAndExpired(t *testing.T) {
	cases := map[string]*SessionRecord{
		"revoked": {ID: "s1", UserID: "u1", Revoked: true, ExpiresAt: time.Now().Add(time.Hour)},
		"expired": {ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)},
	}
	for name, rec := range cases {
		store := &stubStore{
			findSessionFn: func(_ context.Context, _ string) (*SessionRecord, error) {
				return rec, nil
			},
		}
		svc := newService(t, store)
		if _, err := svc.Refresh(context.Background(), "some-token"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestSignOutRevokesAllUserSessions(t *testing.T) {
	var revokedUser string
	store := &stubStore{
		revokeUserFn: func(_ context.Context, userID string) error {
			revokedUser = userID
			return nil
		},
	}
	svc := newService(t, store)

	access, err := token.Generate("u1", []string{"EMPLOYEE"}, time.Minute)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := svc.SignOut(context.Background(), access); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if revokedUser != "u1" {
		t.Fatalf("expected sessions of u1 revoked, got %q", revokedUser)
	}
	if err := svc.SignOut(context.Background(), "garbage"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad token, got %v", err)
	}
}

func TestCreateAccountCreatesProfile(t *testing.T) {
	var profile *Profile
	store := &stubStore{
		createProfileFn: func(_ context.Context, p *Profile) error {
			profile = p
			return nil
		},
	}
	svc := newService(t, store)

	acct, err := svc.CreateAccount(context.Background(), "Grace@Example.com", "pw", "Engineering", "SRE")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if acct.Email != "grace@example.com" {
		t.Fatalf("email must be normalized, got %q", acct.Email)
	}
	if profile == nil || profile.ID != acct.ID || profile.Department != "Engineering" {
		t.Fatalf("expected one-to-one profile, got %+v", profile)
	}

	if _, err := svc.CreateAccount(context.Background(), "not-an-email", "pw", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAssignRoleUnknownRole(t *testing.T) {
	store := &stubStore{
		findAccountFn: func(_ context.Context, id string) (*Account, error) {
			return &Account{ID: id, Status: StatusActive}, nil
		},
	}
	svc := newService(t, store)
	if _, err := svc.AssignRole(context.Background(), "u1", "GHOST"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
