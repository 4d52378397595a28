// Package directory manages employee records: the link between an auth
// account, its profile and its place in the org (department, designation,
// manager). Employees are never hard-deleted, only deactivated.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"worklane.org/internal/ids"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrNotFound     = errors.New("directory: not found")
	ErrInvalidInput = errors.New("directory: invalid input")
	ErrConflict     = errors.New("directory: already exists")
)

// Employee is one directory row.
type Employee struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	ProfileID   string    `json:"profile_id"`
	Department  string    `json:"department"`
	Designation string    `json:"designation"`
	ManagerID   string    `json:"manager_id,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput carries the fields for a new employee record.
type CreateInput struct {
	AccountID   string `json:"account_id"`
	ProfileID   string `json:"profile_id"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	ManagerID   string `json:"manager_id"`
}

// Update patches the non-nil fields.
type Update struct {
	Department  *string `json:"department,omitempty"`
	Designation *string `json:"designation,omitempty"`
	ManagerID   *string `json:"manager_id,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Store describes the persistence operations the directory needs.
type Store interface {
	AccountExists(ctx context.Context, id string) (bool, error)
	ProfileExists(ctx context.Context, id string) (bool, error)

	Create(ctx context.Context, e *Employee) error
	Find(ctx context.Context, id string) (*Employee, error)
	FindByAccount(ctx context.Context, accountID string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, id string, upd Update) (*Employee, error)

	// BackfillProfileJob fills the profile's department/designation
	// only where they are still null.
	BackfillProfileJob(ctx context.Context, profileID, department, designation string) error
}

// Service validates directory operations against the store.
type Service struct {
	store Store
	logf  func(format string, args ...any)
	now   func() time.Time
}

// NewService constructs the directory service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("directory store is required")
	}
	return &Service{store: store, logf: log.Printf, now: time.Now}, nil
}

// Create validates and inserts a new employee record:
// the account must exist, the profile must exist, the account must not
// already have a record, and the manager (if given) must exist and be
// active. The profile's department/designation are backfilled
// best-effort; a backfill failure is logged, never surfaced.
func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	in.AccountID = strings.TrimSpace(in.AccountID)
	in.ProfileID = strings.TrimSpace(in.ProfileID)
	in.ManagerID = strings.TrimSpace(in.ManagerID)
	if in.AccountID == "" || in.ProfileID == "" {
		return Employee{}, fmt.Errorf("%w: account_id and profile_id are required", ErrInvalidInput)
	}

	ok, err := s.store.AccountExists(ctx, in.AccountID)
	if err != nil {
		return Employee{}, err
	}
	if !ok {
		return Employee{}, fmt.Errorf("%w: account %s does not exist", ErrInvalidInput, in.AccountID)
	}
	ok, err = s.store.ProfileExists(ctx, in.ProfileID)
	if err != nil {
		return Employee{}, err
	}
	if !ok {
		return Employee{}, fmt.Errorf("%w: profile %s does not exist", ErrInvalidInput, in.ProfileID)
	}
	if existing, err := s.store.FindByAccount(ctx, in.AccountID); err == nil && existing != nil {
		return Employee{}, fmt.Errorf("%w: account %s already has an employee record", ErrConflict, in.AccountID)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return Employee{}, err
	}
	if in.ManagerID != "" {
		manager, err := s.store.Find(ctx, in.ManagerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Employee{}, fmt.Errorf("%w: manager %s does not exist", ErrInvalidInput, in.ManagerID)
			}
			return Employee{}, err
		}
		if manager.Status != StatusActive {
			return Employee{}, fmt.Errorf("%w: manager %s is inactive", ErrInvalidInput, in.ManagerID)
		}
	}

	now := s.now().UTC()
	emp := &Employee{
		ID:          ids.New(),
		AccountID:   in.AccountID,
		ProfileID:   in.ProfileID,
		Department:  strings.TrimSpace(in.Department),
		Designation: strings.TrimSpace(in.Designation),
		ManagerID:   in.ManagerID,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, emp); err != nil {
		return Employee{}, err
	}

	if err := s.store.BackfillProfileJob(ctx, emp.ProfileID, emp.Department, emp.Designation); err != nil {
		s.logf("directory: backfill profile %s: %v", emp.ProfileID, err)
	}
	return *emp, nil
}

// Get loads one employee.
func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Employee{}, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	e, err := s.store.Find(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	return *e, nil
}

// List returns all employee records.
func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.store.List(ctx)
}

// Patch applies an update to an employee. A status change must be one of
// the two known states; a manager change re-runs the manager checks.
func (s *Service) Patch(ctx context.Context, id string, upd Update) (Employee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Employee{}, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	if upd.Status != nil {
		status := strings.TrimSpace(strings.ToLower(*upd.Status))
		if status != StatusActive && status != StatusInactive {
			return Employee{}, fmt.Errorf("%w: unsupported status %s", ErrInvalidInput, status)
		}
		upd.Status = &status
	}
	if upd.ManagerID != nil && strings.TrimSpace(*upd.ManagerID) != "" {
		managerID := strings.TrimSpace(*upd.ManagerID)
		if managerID == id {
			return Employee{}, fmt.Errorf("%w: employee cannot manage themselves", ErrInvalidInput)
		}
		manager, err := s.store.Find(ctx, managerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Employee{}, fmt.Errorf("%w: manager %s does not exist", ErrInvalidInput, managerID)
			}
			return Employee{}, err
		}
		if manager.Status != StatusActive {
			return Employee{}, fmt.Errorf("%w: manager %s is inactive", ErrInvalidInput, managerID)
		}
		upd.ManagerID = &managerID
	}
	e, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return Employee{}, err
	}
	return *e, nil
}

// Deactivate soft-deletes an employee record.
func (s *Service) Deactivate(ctx context.Context, id string) (Employee, error) {
	status := StatusInactive
	return s.Patch(ctx, id, Update{Status: &status})
}
