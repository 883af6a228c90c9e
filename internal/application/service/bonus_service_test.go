package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
)

func newBonusService(employeeRepo *mockEmployeeRepo, levelRepo *mockLevelRepo) BonusService {
	return NewBonusService(employeeRepo, levelRepo, &mockTxManager{}, nopLogger{})
}

// unsubmittedRecord builds a report of SUP1 with no bonus entered yet.
func unsubmittedRecord(employeeID string, approvers ...string) *port.EmployeeRecord {
	rec := record(employeeID, approvers...)
	rec.Employee.Bonus2025 = 0
	rec.Status = approval.Normalize(nil)
	return rec
}

func TestEnterBonus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := unsubmittedRecord("E1", "A1")
		var savedAmount float64
		var savedBy string
		employeeRepo := &mockEmployeeRepo{
			getByEmployeeIDFunc: func(ctx context.Context, id string) (*port.EmployeeRecord, error) {
				return rec, nil
			},
			setBonusFunc: func(ctx context.Context, employeeID string, amount float64, enteredBy string, at time.Time) error {
				savedAmount, savedBy = amount, enteredBy
				return nil
			},
		}
		svc := newBonusService(employeeRepo, &mockLevelRepo{})

		got, err := svc.EnterBonus(context.Background(), "E1", "SUP1", 7500)
		if err != nil {
			t.Fatalf("EnterBonus() error = %v", err)
		}
		if savedAmount != 7500 || savedBy != "SUP1" {
			t.Errorf("persisted (%v, %q), want (7500, SUP1)", savedAmount, savedBy)
		}
		if got.Employee.Bonus2025 != 7500 || got.Status.EnteredBy != "SUP1" {
			t.Errorf("returned record not updated: %+v", got.Status)
		}
	})

	t.Run("wrong supervisor is forbidden", func(t *testing.T) {
		rec := unsubmittedRecord("E1", "A1")
		employeeRepo := &mockEmployeeRepo{
			getByEmployeeIDFunc: func(ctx context.Context, id string) (*port.EmployeeRecord, error) {
				return rec, nil
			},
		}
		svc := newBonusService(employeeRepo, &mockLevelRepo{})

		_, err := svc.EnterBonus(context.Background(), "E1", "SUP2", 7500)
		if !errors.Is(err, approval.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("locked after submission", func(t *testing.T) {
		rec := record("E1", "A1") // record() is submitted
		employeeRepo := &mockEmployeeRepo{
			getByEmployeeIDFunc: func(ctx context.Context, id string) (*port.EmployeeRecord, error) {
				return rec, nil
			},
		}
		svc := newBonusService(employeeRepo, &mockLevelRepo{})

		_, err := svc.EnterBonus(context.Background(), "E1", "SUP1", 9000)
		if !errors.Is(err, approval.ErrAlreadySubmitted) {
			t.Errorf("error = %v, want ErrAlreadySubmitted", err)
		}
	})

	t.Run("unknown employee", func(t *testing.T) {
		svc := newBonusService(&mockEmployeeRepo{}, &mockLevelRepo{})
		_, err := svc.EnterBonus(context.Background(), "E404", "SUP1", 100)
		if !errors.Is(err, approval.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("negative amount", func(t *testing.T) {
		svc := newBonusService(&mockEmployeeRepo{}, &mockLevelRepo{})
		_, err := svc.EnterBonus(context.Background(), "E1", "SUP1", -1)
		if !errors.Is(err, approval.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestSubmitForApproval(t *testing.T) {
	// ready: entered, not submitted, chain at levels 1 and 3.
	ready := unsubmittedRecord("E1", "A1", "", "A3")
	ready.Employee.Bonus2025 = 5000
	// alreadySubmitted must not be re-initialized.
	alreadySubmitted := record("E2", "A1")
	// noBonus has nothing to submit.
	noBonus := unsubmittedRecord("E3", "A1")
	// noChain has a bonus but no approvers assigned.
	noChain := unsubmittedRecord("E4")
	noChain.Employee.Bonus2025 = 3000

	var submitted []string
	var initialized map[string][]int
	employeeRepo := &mockEmployeeRepo{
		listBySupervisorFunc: func(ctx context.Context, supervisorID string) ([]*port.EmployeeRecord, error) {
			return []*port.EmployeeRecord{ready, alreadySubmitted, noBonus, noChain}, nil
		},
		markSubmittedFunc: func(ctx context.Context, employeeID string, at time.Time) error {
			submitted = append(submitted, employeeID)
			return nil
		},
	}
	initialized = map[string][]int{}
	levelRepo := &mockLevelRepo{
		initPendingFunc: func(ctx context.Context, employeeID string, levels []int) error {
			initialized[employeeID] = levels
			return nil
		},
	}
	svc := newBonusService(employeeRepo, levelRepo)

	count, err := svc.SubmitForApproval(context.Background(), "SUP1")
	if err != nil {
		t.Fatalf("SubmitForApproval() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if len(submitted) != 1 || submitted[0] != "E1" {
		t.Errorf("submitted = %v, want [E1]", submitted)
	}
	got := initialized["E1"]
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("initialized levels = %v, want [1 3] (populated levels only)", got)
	}
}
