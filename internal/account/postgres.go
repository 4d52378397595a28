package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps a pooled database handle.
func NewPGStore(db *sql.DB) (*PGStore, error) {
	if db == nil {
		return nil, errors.New("account store requires a database handle")
	}
	return &PGStore{db: db}, nil
}

func (s *PGStore) CreateAccount(ctx context.Context, acct *Account) error {
	_, err := s.db.ExecContext(ctx, `
		insert into accounts(id, email, password_hash, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, acct.ID, acct.Email, acct.PasswordHash, acct.Status, acct.CreatedAt, acct.UpdatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return ErrConflict
	}
	return err
}

func (s *PGStore) FindAccount(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, email, password_hash, status, created_at, updated_at
		from accounts where id = $1
	`, id)
	return scanAccount(row)
}

func (s *PGStore) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, email, password_hash, status, created_at, updated_at
		from accounts where email = $1
	`, email)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*Account, error) {
	var acct Account
	err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.Status, &acct.CreatedAt, &acct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *PGStore) CreateProfile(ctx context.Context, profile *Profile) error {
	_, err := s.db.ExecContext(ctx, `
		insert into profiles(id, email, department, designation, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6)
	`, profile.ID, profile.Email, profile.Department, profile.Designation, profile.CreatedAt, profile.UpdatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return ErrConflict
	}
	return err
}

func (s *PGStore) FindProfile(ctx context.Context, id string) (*Profile, error) {
	var (
		p           Profile
		department  sql.NullString
		designation sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select id, email, department, designation, created_at, updated_at
		from profiles where id = $1
	`, id).Scan(&p.ID, &p.Email, &department, &designation, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Department = department.String
	p.Designation = designation.String
	return &p, nil
}

func (s *PGStore) CreateRole(ctx context.Context, role *Role) error {
	_, err := s.db.ExecContext(ctx, `
		insert into roles(id, name, description, created_at)
		values ($1,$2,$3,$4)
	`, role.ID, role.Name, role.Description, role.CreatedAt)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return ErrConflict
	}
	return err
}

func (s *PGStore) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := s.db.QueryRowContext(ctx, `
		select id, name, description, created_at
		from roles where name = $1
	`, name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *PGStore) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, description, created_at
		from roles order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (s *PGStore) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into user_roles(user_id, role_id, created_at)
		values ($1,$2,now())
		on conflict (user_id, role_id) do nothing
	`, userID, roleID)
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return ErrNotFound
	}
	return err
}

func (s *PGStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		delete from user_roles where user_id = $1 and role_id = $2
	`, userID, roleID)
	return err
}

// RoleAssignments left-joins user_roles to roles so that assignments whose
// role row is gone still surface, with an empty name, instead of erroring.
func (s *PGStore) RoleAssignments(ctx context.Context, userID string) ([]RoleAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		select ur.user_id, ur.role_id, coalesce(r.name, '')
		from user_roles ur
		left join roles r on r.id = ur.role_id
		where ur.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RoleAssignment
	for rows.Next() {
		var ra RoleAssignment
		if err := rows.Scan(&ra.UserID, &ra.RoleID, &ra.RoleName); err != nil {
			return nil, err
		}
		result = append(result, ra)
	}
	return result, rows.Err()
}

func (s *PGStore) CreateSession(ctx context.Context, sess *SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		insert into sessions(id, user_id, refresh_hash, expires_at, revoked, created_at)
		values ($1,$2,$3,$4,false,$5)
	`, sess.ID, sess.UserID, sess.RefreshHash, sess.ExpiresAt, sess.CreatedAt)
	return err
}

func (s *PGStore) FindSessionByRefreshHash(ctx context.Context, hash string) (*SessionRecord, error) {
	var rec SessionRecord
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, refresh_hash, expires_at, revoked, created_at
		from sessions where refresh_hash = $1
	`, hash).Scan(&rec.ID, &rec.UserID, &rec.RefreshHash, &rec.ExpiresAt, &rec.Revoked, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PGStore) RevokeSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		update sessions set revoked = true where id = $1
	`, id)
	return err
}

func (s *PGStore) RevokeSessionsForUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		update sessions set revoked = true where user_id = $1
	`, userID)
	return err
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	if err == nil {
		return nil, false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
