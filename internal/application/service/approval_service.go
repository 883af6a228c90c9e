package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// LevelQueue groups the employees awaiting a given approver at one level.
type LevelQueue struct {
	Level     int
	Employees []*port.EmployeeRecord
}

// PendingEmployee describes why an employee is not yet finalized.
type PendingEmployee struct {
	EmployeeID   string `json:"employee_id"`
	FullName     string `json:"full_name"`
	PendingLevel int    `json:"pending_level,omitempty"`
	ApproverID   string `json:"approver_id,omitempty"`
	Reason       string `json:"reason"`
}

// CompletionReport is the readiness check consumed by the export layer.
type CompletionReport struct {
	AllApprovalsCompleted bool              `json:"all_approvals_completed"`
	PendingEmployees      []PendingEmployee `json:"pending_employees"`
}

// ApprovalService applies single approval decisions and answers the
// read-only routing queries.
type ApprovalService interface {
	// Decide validates and applies one approve/reject action for one
	// employee at one level.
	Decide(ctx context.Context, employeeID string, level int, approverID string, action approval.Action, comments string) (*port.EmployeeRecord, error)

	// ListMyApprovals returns, grouped by level, the employees whose next
	// pending level is assigned to approverID.
	ListMyApprovals(ctx context.Context, approverID string) ([]LevelQueue, error)

	// CheckAllApprovalsCompleted reports whether every employee in an
	// approval cycle has reached a terminal state.
	CheckAllApprovalsCompleted(ctx context.Context) (*CompletionReport, error)
}

type approvalServiceImpl struct {
	employeeRepo port.EmployeeRepository
	levelRepo    port.ApprovalLevelRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	employeeRepo port.EmployeeRepository,
	levelRepo port.ApprovalLevelRepository,
	txManager port.TransactionManager,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		employeeRepo: employeeRepo,
		levelRepo:    levelRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *approvalServiceImpl) Decide(ctx context.Context, employeeID string, level int, approverID string, action approval.Action, comments string) (*port.EmployeeRecord, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", approval.ErrValidation)
	}

	rec, err := s.employeeRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		s.logger.Error("Failed to load employee", "error", err, "employee_id", employeeID)
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", approval.ErrNotFound, employeeID)
	}

	decision, err := approval.ApplyDecision(rec.Employee, rec.Status, level, approverID, action, comments, time.Now())
	if err != nil {
		return nil, err
	}

	// RecordDecision is guarded on the row still being pending, so a
	// concurrent resolve fails here rather than double-applying.
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.levelRepo.RecordDecision(txCtx, employeeID, level, decision)
	})
	if err != nil {
		s.logger.Error("Failed to record decision", "error", err, "employee_id", employeeID, "level", level)
		return nil, err
	}

	s.logger.Info("Decision applied",
		"employee_id", employeeID,
		"level", level,
		"approver_id", approverID,
		"action", action.String(),
	)
	return rec, nil
}

func (s *approvalServiceImpl) ListMyApprovals(ctx context.Context, approverID string) ([]LevelQueue, error) {
	if approverID == "" {
		return nil, fmt.Errorf("%w: approver id is required", approval.ErrValidation)
	}

	recs, err := s.employeeRepo.ListByApprover(ctx, approverID, true)
	if err != nil {
		s.logger.Error("Failed to list approver candidates", "error", err, "approver_id", approverID)
		return nil, err
	}

	byLevel := make(map[int][]*port.EmployeeRecord)
	for _, rec := range recs {
		level, assigned, ok := approval.NextPendingLevel(rec.Employee, rec.Status)
		if !ok || assigned != approverID {
			continue
		}
		if !approval.BonusEntered(rec.Employee, rec.Status) {
			continue
		}
		byLevel[level] = append(byLevel[level], rec)
	}

	queues := make([]LevelQueue, 0, len(byLevel))
	for level, employees := range byLevel {
		queues = append(queues, LevelQueue{Level: level, Employees: employees})
	}
	sort.Slice(queues, func(i, j int) bool { return queues[i].Level < queues[j].Level })

	return queues, nil
}

func (s *approvalServiceImpl) CheckAllApprovalsCompleted(ctx context.Context) (*CompletionReport, error) {
	recs, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list employees for completion check", "error", err)
		return nil, err
	}

	report := &CompletionReport{AllApprovalsCompleted: true}
	for _, rec := range recs {
		emp, st := rec.Employee, rec.Status
		if !approval.BonusEntered(emp, st) {
			continue
		}
		if emp.HighestPopulatedLevel() == 0 {
			continue
		}
		if approval.FullyApproved(emp, st) || approval.Rejected(emp, st) {
			continue
		}

		pending := PendingEmployee{
			EmployeeID: emp.EmployeeID,
			FullName:   emp.FullName,
			Reason:     "awaiting approval",
		}
		if !st.SubmittedForApproval {
			pending.Reason = "not submitted"
		} else if level, approver, ok := approval.NextPendingLevel(emp, st); ok {
			pending.PendingLevel = level
			pending.ApproverID = approver
		}
		report.PendingEmployees = append(report.PendingEmployees, pending)
		report.AllApprovalsCompleted = false
	}

	return report, nil
}
