package directory

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubStore struct {
	accountExists      func(ctx context.Context, id string) (bool, error)
	profileExists      func(ctx context.Context, id string) (bool, error)
	create             func(ctx context.Context, e *Employee) error
	find               func(ctx context.Context, id string) (*Employee, error)
	findByAccount      func(ctx context.Context, accountID string) (*Employee, error)
	list               func(ctx context.Context) ([]Employee, error)
	update             func(ctx context.Context, id string, upd Update) (*Employee, error)
	backfillProfileJob func(ctx context.Context, profileID, department, designation string) error
}

func (s *stubStore) AccountExists(ctx context.Context, id string) (bool, error) {
	if s.accountExists == nil {
		return true, nil
	}
	return s.accountExists(ctx, id)
}

func (s *stubStore) ProfileExists(ctx context.Context, id string) (bool, error) {
	if s.profileExists == nil {
		return true, nil
	}
	return s.profileExists(ctx, id)
}

func (s *stubStore) Create(ctx context.Context, e *Employee) error {
	if s.create == nil {
		return nil
	}
	return s.create(ctx, e)
}

func (s *stubStore) Find(ctx context.Context, id string) (*Employee, error) {
	if s.find == nil {
		return nil, ErrNotFound
	}
	return s.find(ctx, id)
}

func (s *stubStore) FindByAccount(ctx context.Context, accountID string) (*Employee, error) {
	if s.findByAccount == nil {
		return nil, ErrNotFound
	}
	return s.findByAccount(ctx, accountID)
}

func (s *stubStore) List(ctx context.Context) ([]Employee, error) {
	if s.list == nil {
		return nil, nil
	}
	return s.list(ctx)
}

func (s *stubStore) Update(ctx context.Context, id string, upd Update) (*Employee, error) {
	if s.update == nil {
		return nil, ErrNotFound
	}
	return s.update(ctx, id, upd)
}

func (s *stubStore) BackfillProfileJob(ctx context.Context, profileID, department, designation string) error {
	if s.backfillProfileJob == nil {
		return nil
	}
	return s.backfillProfileJob(ctx, profileID, department, designation)
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.logf = func(string, ...any) {}
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateRequiresAccountAndProfile(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	_, err := svc.Create(context.Background(), CreateInput{AccountID: "  ", ProfileID: "p1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateRejectsUnknownAccount(t *testing.T) {
	svc := newTestService(t, &stubStore{
		accountExists: func(ctx context.Context, id string) (bool, error) { return false, nil },
	})
	_, err := svc.Create(context.Background(), CreateInput{AccountID: "acc-1", ProfileID: "p-1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateRejectsDuplicateAccount(t *testing.T) {
	svc := newTestService(t, &stubStore{
		findByAccount: func(ctx context.Context, accountID string) (*Employee, error) {
			return &Employee{ID: "emp-1", AccountID: accountID}, nil
		},
	})
	_, err := svc.Create(context.Background(), CreateInput{AccountID: "acc-1", ProfileID: "p-1"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateRejectsInactiveManager(t *testing.T) {
	svc := newTestService(t, &stubStore{
		find: func(ctx context.Context, id string) (*Employee, error) {
			return &Employee{ID: id, Status: StatusInactive}, nil
		},
	})
	_, err := svc.Create(context.Background(), CreateInput{
		AccountID: "acc-1", ProfileID: "p-1", ManagerID: "emp-boss",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateBackfillsProfileBestEffort(t *testing.T) {
	var created *Employee
	var backfilled bool
	svc := newTestService(t, &stubStore{
		create: func(ctx context.Context, e *Employee) error {
			created = e
			return nil
		},
		backfillProfileJob: func(ctx context.Context, profileID, department, designation string) error {
			backfilled = true
			if profileID != "p-1" || department != "Engineering" || designation != "SWE" {
				t.Fatalf("unexpected backfill args: %s %s %s", profileID, department, designation)
			}
			return errors.New("profile table busy")
		},
	})
	emp, err := svc.Create(context.Background(), CreateInput{
		AccountID: "acc-1", ProfileID: "p-1", Department: "Engineering", Designation: "SWE",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !backfilled {
		t.Fatal("expected backfill to run")
	}
	if created == nil || created.Status != StatusActive {
		t.Fatalf("expected active employee stored, got %+v", created)
	}
	if emp.ID == "" {
		t.Fatal("expected generated employee id")
	}
}

func TestPatchRejectsSelfManagement(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	manager := "emp-1"
	_, err := svc.Patch(context.Background(), "emp-1", Update{ManagerID: &manager})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPatchNormalizesStatus(t *testing.T) {
	var got Update
	svc := newTestService(t, &stubStore{
		update: func(ctx context.Context, id string, upd Update) (*Employee, error) {
			got = upd
			return &Employee{ID: id, Status: *upd.Status}, nil
		},
	})
	status := " Inactive "
	emp, err := svc.Patch(context.Background(), "emp-1", Update{Status: &status})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if got.Status == nil || *got.Status != StatusInactive {
		t.Fatalf("expected normalized status, got %+v", got.Status)
	}
	if emp.Status != StatusInactive {
		t.Fatalf("expected inactive employee, got %s", emp.Status)
	}
}

func TestDeactivateSetsInactive(t *testing.T) {
	svc := newTestService(t, &stubStore{
		update: func(ctx context.Context, id string, upd Update) (*Employee, error) {
			if upd.Status == nil || *upd.Status != StatusInactive {
				t.Fatalf("expected inactive status update, got %+v", upd)
			}
			return &Employee{ID: id, Status: StatusInactive}, nil
		},
	})
	emp, err := svc.Deactivate(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if emp.Status != StatusInactive {
		t.Fatalf("expected inactive, got %s", emp.Status)
	}
}
