package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
)

// SkippedEmployee records why one employee was left out of a bulk run.
type SkippedEmployee struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// BulkResult is the per-run outcome report of a bulk approval.
type BulkResult struct {
	ApprovedCount int               `json:"approved_count"`
	Skipped       []SkippedEmployee `json:"skipped"`
}

// BulkService approves every eligible employee for one approver in a
// single invocation. Bulk runs never reject; rejections are
// consequential enough to require an individual decision.
type BulkService interface {
	BulkApprove(ctx context.Context, approverID, comments string) (*BulkResult, error)
}

type bulkServiceImpl struct {
	employeeRepo port.EmployeeRepository
	levelRepo    port.ApprovalLevelRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewBulkService creates a new BulkService
func NewBulkService(
	employeeRepo port.EmployeeRepository,
	levelRepo port.ApprovalLevelRepository,
	txManager port.TransactionManager,
	logger Logger,
) BulkService {
	return &bulkServiceImpl{
		employeeRepo: employeeRepo,
		levelRepo:    levelRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// BulkApprove scans the approver's submitted candidates sequentially,
// one read-modify-write per employee. One employee's ineligibility or
// write failure becomes a skip entry and never aborts the rest.
func (s *bulkServiceImpl) BulkApprove(ctx context.Context, approverID, comments string) (*BulkResult, error) {
	if approverID == "" {
		return nil, fmt.Errorf("%w: approver id is required", approval.ErrValidation)
	}

	candidates, err := s.employeeRepo.ListByApprover(ctx, approverID, true)
	if err != nil {
		s.logger.Error("Failed to list bulk candidates", "error", err, "approver_id", approverID)
		return nil, err
	}

	result := &BulkResult{}
	now := time.Now()
	for _, rec := range candidates {
		emp, st := rec.Employee, rec.Status

		level, assigned, ok := approval.NextPendingLevel(emp, st)
		if !ok || assigned != approverID {
			result.Skipped = append(result.Skipped, SkippedEmployee{
				EmployeeID: emp.EmployeeID,
				Reason:     "not your turn",
			})
			continue
		}
		if !approval.BonusEntered(emp, st) {
			result.Skipped = append(result.Skipped, SkippedEmployee{
				EmployeeID: emp.EmployeeID,
				Reason:     "bonus missing",
			})
			continue
		}

		decision, err := approval.ApplyDecision(emp, st, level, approverID, approval.ActionApprove, comments, now)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedEmployee{
				EmployeeID: emp.EmployeeID,
				Reason:     err.Error(),
			})
			continue
		}

		employeeID := emp.EmployeeID
		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return s.levelRepo.RecordDecision(txCtx, employeeID, level, decision)
		})
		if err != nil {
			s.logger.Error("Bulk decision write failed", "error", err, "employee_id", employeeID, "level", level)
			result.Skipped = append(result.Skipped, SkippedEmployee{
				EmployeeID: employeeID,
				Reason:     err.Error(),
			})
			continue
		}

		result.ApprovedCount++
	}

	s.logger.Info("Bulk approval finished",
		"approver_id", approverID,
		"approved", result.ApprovedCount,
		"skipped", len(result.Skipped),
	)
	return result, nil
}
