package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
)

func newBulkService(employeeRepo *mockEmployeeRepo, levelRepo *mockLevelRepo) BulkService {
	return NewBulkService(employeeRepo, levelRepo, &mockTxManager{}, nopLogger{})
}

func TestBulkApprove(t *testing.T) {
	// E1: A1's turn at level 1.
	e1 := record("E1", "A1")
	// E2: vacuous level 2, level 1 approved, A1's turn at level 3.
	e2 := record("E2", "A9", "", "A1")
	e2.Status.Levels[0] = approval.Decision{Status: approval.StatusApproved, ApprovedBy: "A9"}
	// E3: someone else's turn.
	e3 := record("E3", "A9", "A1")
	// E4: terminally rejected.
	e4 := record("E4", "A1", "A2")
	e4.Status.Levels[0] = approval.Decision{Status: approval.StatusRejected, ApprovedBy: "A1"}
	// E5: no bonus entered.
	e5 := record("E5", "A1")
	e5.Employee.Bonus2025 = 0
	e5.Status.EnteredBy = ""

	type write struct {
		employeeID string
		level      int
		d          approval.Decision
	}
	var writes []write
	employeeRepo := &mockEmployeeRepo{
		listByApproverFunc: func(ctx context.Context, approverID string, submittedOnly bool) ([]*port.EmployeeRecord, error) {
			return []*port.EmployeeRecord{e1, e2, e3, e4, e5}, nil
		},
	}
	levelRepo := &mockLevelRepo{
		recordDecisionFunc: func(ctx context.Context, employeeID string, level int, d approval.Decision) error {
			writes = append(writes, write{employeeID, level, d})
			return nil
		},
	}
	svc := newBulkService(employeeRepo, levelRepo)

	result, err := svc.BulkApprove(context.Background(), "A1", "quarterly batch")
	if err != nil {
		t.Fatalf("BulkApprove() error = %v", err)
	}

	if result.ApprovedCount != 2 {
		t.Errorf("approved count = %d, want 2", result.ApprovedCount)
	}
	if len(writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(writes))
	}
	if writes[0].employeeID != "E1" || writes[0].level != 1 {
		t.Errorf("first write = %+v, want E1 level 1", writes[0])
	}
	if writes[1].employeeID != "E2" || writes[1].level != 3 {
		t.Errorf("second write = %+v, want E2 level 3 (vacuous level 2 skipped)", writes[1])
	}
	for _, w := range writes {
		if w.d.Status != approval.StatusApproved || w.d.Comments != "quarterly batch" {
			t.Errorf("write %+v, want approval with shared comments", w.d)
		}
	}

	// Every non-approved candidate appears in the skip list with a reason.
	reasons := map[string]string{}
	for _, s := range result.Skipped {
		reasons[s.EmployeeID] = s.Reason
	}
	if len(reasons) != 3 {
		t.Fatalf("skipped = %+v, want E3, E4, E5", result.Skipped)
	}
	if reasons["E3"] != "not your turn" {
		t.Errorf("E3 reason = %q, want \"not your turn\"", reasons["E3"])
	}
	if reasons["E4"] != "not your turn" {
		t.Errorf("E4 reason = %q, want \"not your turn\" (cycle terminal)", reasons["E4"])
	}
	if reasons["E5"] != "bonus missing" {
		t.Errorf("E5 reason = %q, want \"bonus missing\"", reasons["E5"])
	}
}

func TestBulkApprove_WriteFailureBecomesSkip(t *testing.T) {
	e1 := record("E1", "A1")
	e2 := record("E2", "A1")

	employeeRepo := &mockEmployeeRepo{
		listByApproverFunc: func(ctx context.Context, approverID string, submittedOnly bool) ([]*port.EmployeeRecord, error) {
			return []*port.EmployeeRecord{e1, e2}, nil
		},
	}
	levelRepo := &mockLevelRepo{
		recordDecisionFunc: func(ctx context.Context, employeeID string, level int, d approval.Decision) error {
			if employeeID == "E1" {
				return errors.New("disk full")
			}
			return nil
		},
	}
	svc := newBulkService(employeeRepo, levelRepo)

	result, err := svc.BulkApprove(context.Background(), "A1", "")
	if err != nil {
		t.Fatalf("BulkApprove() error = %v, one failure must not abort the batch", err)
	}
	if result.ApprovedCount != 1 {
		t.Errorf("approved count = %d, want 1", result.ApprovedCount)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].EmployeeID != "E1" {
		t.Errorf("skipped = %+v, want E1 with write error", result.Skipped)
	}
}

// Bulk approval of one employee must match what an individual decide
// would have done at the same level.
func TestBulkApprove_EquivalentToIndividualDecide(t *testing.T) {
	bulkRec := record("E1", "A1", "A2")
	indivRec := record("E1", "A1", "A2")

	capture := func(dst *approval.Decision) *mockLevelRepo {
		return &mockLevelRepo{
			recordDecisionFunc: func(ctx context.Context, employeeID string, level int, d approval.Decision) error {
				*dst = d
				return nil
			},
		}
	}

	var bulkDecision approval.Decision
	bulkSvc := newBulkService(&mockEmployeeRepo{
		listByApproverFunc: func(ctx context.Context, approverID string, submittedOnly bool) ([]*port.EmployeeRecord, error) {
			return []*port.EmployeeRecord{bulkRec}, nil
		},
	}, capture(&bulkDecision))

	var indivDecision approval.Decision
	indivSvc := newApprovalService(&mockEmployeeRepo{
		getByEmployeeIDFunc: func(ctx context.Context, id string) (*port.EmployeeRecord, error) {
			return indivRec, nil
		},
	}, capture(&indivDecision))

	if _, err := bulkSvc.BulkApprove(context.Background(), "A1", "c"); err != nil {
		t.Fatalf("BulkApprove() error = %v", err)
	}
	if _, err := indivSvc.Decide(context.Background(), "E1", 1, "A1", approval.ActionApprove, "c"); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if bulkDecision.Status != indivDecision.Status ||
		bulkDecision.ApprovedBy != indivDecision.ApprovedBy ||
		bulkDecision.Comments != indivDecision.Comments {
		t.Errorf("bulk decision %+v differs from individual decision %+v", bulkDecision, indivDecision)
	}
}
