package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrUniqueViolation = "23505"
	pgErrForeignKey      = "23503"
)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) (*PGStore, error) {
	if db == nil {
		return nil, errors.New("directory store requires a database handle")
	}
	return &PGStore{db: db}, nil
}

func (s *PGStore) AccountExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `select 1 from accounts where id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return true, nil
}

func (s *PGStore) ProfileExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `select 1 from profiles where id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check profile: %w", err)
	}
	return true, nil
}

func (s *PGStore) Create(ctx context.Context, e *Employee) error {
	managerID := sql.NullString{String: e.ManagerID, Valid: e.ManagerID != ""}
	_, err := s.db.ExecContext(ctx, `
		insert into employees (id, account_id, profile_id, department, designation, manager_id, status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.AccountID, e.ProfileID, e.Department, e.Designation, managerID, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return fmt.Errorf("%w: employee for account %s", ErrConflict, e.AccountID)
			case pgErrForeignKey:
				return fmt.Errorf("%w: referenced account or profile", ErrNotFound)
			}
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

const employeeColumns = `id, account_id, profile_id, department, designation, coalesce(manager_id, ''), status, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.AccountID, &e.ProfileID, &e.Department, &e.Designation, &e.ManagerID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	return &e, nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, `select `+employeeColumns+` from employees where id = $1`, id)
	return scanEmployee(row)
}

func (s *PGStore) FindByAccount(ctx context.Context, accountID string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, `select `+employeeColumns+` from employees where account_id = $1`, accountID)
	return scanEmployee(row)
}

func (s *PGStore) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx, `select `+employeeColumns+` from employees order by created_at`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, id string, upd Update) (*Employee, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Department != nil {
		add("department", *upd.Department)
	}
	if upd.Designation != nil {
		add("designation", *upd.Designation)
	}
	if upd.ManagerID != nil {
		add("manager_id", sql.NullString{String: *upd.ManagerID, Valid: *upd.ManagerID != ""})
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}

	query := `update employees set ` + strings.Join(sets, ", ") + ` where id = $1 returning ` + employeeColumns
	return scanEmployee(s.db.QueryRowContext(ctx, query, args...))
}

func (s *PGStore) BackfillProfileJob(ctx context.Context, profileID, department, designation string) error {
	_, err := s.db.ExecContext(ctx, `
		update profiles
		set department = coalesce(department, nullif($2, '')),
		    designation = coalesce(designation, nullif($3, '')),
		    updated_at = now()
		where id = $1`,
		profileID, department, designation,
	)
	if err != nil {
		return fmt.Errorf("backfill profile: %w", err)
	}
	return nil
}
