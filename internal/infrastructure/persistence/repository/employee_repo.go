package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
	"github.com/lumenhr/bonus-approval/internal/domain/entity"
	"github.com/lumenhr/bonus-approval/internal/infrastructure/persistence/sqlite"
)

const employeeColumns = `
	id, employee_id, full_name, bonus_2024, bonus_2025, supervisor_id,
	level1_approver_id, level2_approver_id, level3_approver_id,
	level4_approver_id, level5_approver_id,
	entered_by, entered_at, submitted_for_approval, submitted_at,
	is_active, created_at, updated_at
`

// EmployeeRepository implements port.EmployeeRepository on sqlite.
// Level decisions live in the approval_levels child table and are
// assembled into a normalized approval.Status on every read.
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

// GetByEmployeeID retrieves an active employee by business key
func (r *EmployeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*port.EmployeeRecord, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = ? AND is_active = 1`

	row := r.getExecutor(ctx).QueryRowContext(ctx, query, employeeID)
	rec, err := r.scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	if err := r.loadLevels(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListBySupervisor retrieves active employees reporting to a supervisor
func (r *EmployeeRepository) ListBySupervisor(ctx context.Context, supervisorID string) ([]*port.EmployeeRecord, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE supervisor_id = ? AND is_active = 1
		ORDER BY employee_id`

	return r.list(ctx, query, supervisorID)
}

// ListByApprover retrieves active employees carrying the approver at any level
func (r *EmployeeRepository) ListByApprover(ctx context.Context, approverID string, submittedOnly bool) ([]*port.EmployeeRecord, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE is_active = 1
		AND ? IN (level1_approver_id, level2_approver_id, level3_approver_id,
			level4_approver_id, level5_approver_id)`
	if submittedOnly {
		query += ` AND submitted_for_approval = 1`
	}
	query += ` ORDER BY employee_id`

	return r.list(ctx, query, approverID)
}

// ListActive retrieves every active employee
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*port.EmployeeRecord, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE is_active = 1
		ORDER BY employee_id`

	return r.list(ctx, query)
}

// SetBonus records the bonus amount and entry metadata
func (r *EmployeeRepository) SetBonus(ctx context.Context, employeeID string, amount float64, enteredBy string, at time.Time) error {
	query := `UPDATE employees
		SET bonus_2025 = ?, entered_by = ?, entered_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE employee_id = ? AND is_active = 1`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, amount, enteredBy, at, employeeID)
	if err != nil {
		r.logger.Error("Failed to set bonus", zap.String("employee_id", employeeID), zap.Error(err))
		return fmt.Errorf("failed to set bonus: %w", err)
	}
	return nil
}

// MarkSubmitted flips the one-time submission lock
func (r *EmployeeRepository) MarkSubmitted(ctx context.Context, employeeID string, at time.Time) error {
	query := `UPDATE employees
		SET submitted_for_approval = 1, submitted_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE employee_id = ? AND is_active = 1 AND submitted_for_approval = 0`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, at, employeeID)
	if err != nil {
		r.logger.Error("Failed to mark submitted", zap.String("employee_id", employeeID), zap.Error(err))
		return fmt.Errorf("failed to mark submitted: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return approval.ErrAlreadySubmitted
	}
	return nil
}

// Upsert inserts the employee by business key or refreshes its roster
// fields, leaving approval state alone.
func (r *EmployeeRepository) Upsert(ctx context.Context, emp *entity.Employee) error {
	query := `INSERT INTO employees (employee_id, full_name, bonus_2024, is_active)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(employee_id) DO UPDATE SET
			full_name = excluded.full_name,
			bonus_2024 = excluded.bonus_2024,
			is_active = 1,
			updated_at = CURRENT_TIMESTAMP`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, emp.EmployeeID, emp.FullName, emp.Bonus2024)
	if err != nil {
		r.logger.Error("Failed to upsert employee", zap.String("employee_id", emp.EmployeeID), zap.Error(err))
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

// SetApprovalChain assigns the supervisor and level approvers
func (r *EmployeeRepository) SetApprovalChain(ctx context.Context, employeeID, supervisorID string, approverIDs [entity.NumApprovalLevels]string) error {
	query := `UPDATE employees
		SET supervisor_id = ?,
			level1_approver_id = ?, level2_approver_id = ?, level3_approver_id = ?,
			level4_approver_id = ?, level5_approver_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE employee_id = ? AND is_active = 1`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		supervisorID,
		approverIDs[0], approverIDs[1], approverIDs[2], approverIDs[3], approverIDs[4],
		employeeID)
	if err != nil {
		r.logger.Error("Failed to set approval chain", zap.String("employee_id", employeeID), zap.Error(err))
		return fmt.Errorf("failed to set approval chain: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) list(ctx context.Context, query string, args ...interface{}) ([]*port.EmployeeRecord, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var recs []*port.EmployeeRecord
	for rows.Next() {
		rec, err := r.scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if err := r.loadLevels(ctx, rec); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *EmployeeRepository) scanEmployee(s scanner) (*port.EmployeeRecord, error) {
	var emp entity.Employee
	var st approval.Status
	var enteredAt, submittedAt sql.NullTime

	err := s.Scan(
		&emp.ID,
		&emp.EmployeeID,
		&emp.FullName,
		&emp.Bonus2024,
		&emp.Bonus2025,
		&emp.SupervisorID,
		&emp.ApproverIDs[0],
		&emp.ApproverIDs[1],
		&emp.ApproverIDs[2],
		&emp.ApproverIDs[3],
		&emp.ApproverIDs[4],
		&st.EnteredBy,
		&enteredAt,
		&st.SubmittedForApproval,
		&submittedAt,
		&emp.IsActive,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if enteredAt.Valid {
		st.EnteredAt = &enteredAt.Time
	}
	if submittedAt.Valid {
		st.SubmittedAt = &submittedAt.Time
	}

	return &port.EmployeeRecord{Employee: &emp, Status: approval.Normalize(&st)}, nil
}

// loadLevels folds the approval_levels rows into the record's status.
// Levels without a row stay pending, which Normalize already guarantees.
func (r *EmployeeRepository) loadLevels(ctx context.Context, rec *port.EmployeeRecord) error {
	query := `SELECT level, status, approved_by, approved_at, comments
		FROM approval_levels WHERE employee_id = ?`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, rec.Employee.EmployeeID)
	if err != nil {
		r.logger.Error("Failed to load approval levels",
			zap.String("employee_id", rec.Employee.EmployeeID), zap.Error(err))
		return fmt.Errorf("failed to load approval levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var level int
		var d approval.Decision
		var approvedAt sql.NullTime

		if err := rows.Scan(&level, &d.Status, &d.ApprovedBy, &approvedAt, &d.Comments); err != nil {
			return fmt.Errorf("failed to scan approval level: %w", err)
		}
		if approvedAt.Valid {
			d.ApprovedAt = &approvedAt.Time
		}
		if level >= 1 && level <= entity.NumApprovalLevels {
			rec.Status.Levels[level-1] = d
		}
	}
	return rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *EmployeeRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.EmployeeRepository = (*EmployeeRepository)(nil)
