package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// BonusService manages bonus entry and the one-time submission lock.
type BonusService interface {
	// EnterBonus sets the bonus amount for an employee. Only the
	// employee's supervisor may enter it, and only before submission.
	EnterBonus(ctx context.Context, employeeID, supervisorID string, amount float64) (*port.EmployeeRecord, error)

	// SubmitForApproval locks every report of the supervisor that has a
	// bonus entered and is not yet submitted, initializing pending rows
	// for each populated level. Returns the number of employees locked.
	SubmitForApproval(ctx context.Context, supervisorID string) (int, error)
}

type bonusServiceImpl struct {
	employeeRepo port.EmployeeRepository
	levelRepo    port.ApprovalLevelRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewBonusService creates a new BonusService
func NewBonusService(
	employeeRepo port.EmployeeRepository,
	levelRepo port.ApprovalLevelRepository,
	txManager port.TransactionManager,
	logger Logger,
) BonusService {
	return &bonusServiceImpl{
		employeeRepo: employeeRepo,
		levelRepo:    levelRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *bonusServiceImpl) EnterBonus(ctx context.Context, employeeID, supervisorID string, amount float64) (*port.EmployeeRecord, error) {
	if employeeID == "" || supervisorID == "" {
		return nil, fmt.Errorf("%w: employee id and supervisor id are required", approval.ErrValidation)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: bonus amount cannot be negative", approval.ErrValidation)
	}

	rec, err := s.employeeRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		s.logger.Error("Failed to load employee", "error", err, "employee_id", employeeID)
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", approval.ErrNotFound, employeeID)
	}
	if rec.Employee.SupervisorID != supervisorID {
		return nil, fmt.Errorf("%w: only the supervisor may enter the bonus", approval.ErrForbidden)
	}
	if rec.Status.SubmittedForApproval {
		return nil, approval.ErrAlreadySubmitted
	}

	now := time.Now()
	if err := s.employeeRepo.SetBonus(ctx, employeeID, amount, supervisorID, now); err != nil {
		s.logger.Error("Failed to set bonus", "error", err, "employee_id", employeeID)
		return nil, err
	}

	rec.Employee.Bonus2025 = amount
	rec.Status.EnteredBy = supervisorID
	rec.Status.EnteredAt = &now

	s.logger.Info("Bonus entered", "employee_id", employeeID, "supervisor_id", supervisorID)
	return rec, nil
}

func (s *bonusServiceImpl) SubmitForApproval(ctx context.Context, supervisorID string) (int, error) {
	if supervisorID == "" {
		return 0, fmt.Errorf("%w: supervisor id is required", approval.ErrValidation)
	}

	recs, err := s.employeeRepo.ListBySupervisor(ctx, supervisorID)
	if err != nil {
		s.logger.Error("Failed to list reports", "error", err, "supervisor_id", supervisorID)
		return 0, err
	}

	count := 0
	now := time.Now()
	for _, rec := range recs {
		if rec.Status.SubmittedForApproval {
			continue
		}
		if !approval.BonusEntered(rec.Employee, rec.Status) {
			continue
		}

		levels := populatedLevels(rec.Employee)
		if len(levels) == 0 {
			// Nothing to route; leaving the employee unlocked keeps the
			// bonus editable until a chain is assigned.
			s.logger.Info("Skipping submission, no approvers assigned", "employee_id", rec.Employee.EmployeeID)
			continue
		}

		employeeID := rec.Employee.EmployeeID
		err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := s.employeeRepo.MarkSubmitted(txCtx, employeeID, now); err != nil {
				return fmt.Errorf("mark submitted: %w", err)
			}
			if err := s.levelRepo.InitPending(txCtx, employeeID, levels); err != nil {
				return fmt.Errorf("init pending levels: %w", err)
			}
			return nil
		})
		if err != nil {
			s.logger.Error("Failed to submit employee", "error", err, "employee_id", employeeID)
			return count, err
		}
		count++
	}

	s.logger.Info("Submitted for approval", "supervisor_id", supervisorID, "count", count)
	return count, nil
}

// populatedLevels returns the 1-based levels with an assigned approver.
func populatedLevels(emp *entity.Employee) []int {
	var levels []int
	for l := 1; l <= entity.NumApprovalLevels; l++ {
		if emp.HasApprover(l) {
			levels = append(levels, l)
		}
	}
	return levels
}
