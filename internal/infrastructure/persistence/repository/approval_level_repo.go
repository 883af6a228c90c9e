package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
	"github.com/lumenhr/bonus-approval/internal/infrastructure/persistence/sqlite"
)

// ApprovalLevelRepository implements port.ApprovalLevelRepository on the
// approval_levels child table, one row per (employee, level).
type ApprovalLevelRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalLevelRepository creates a new approval level repository
func NewApprovalLevelRepository(db *sql.DB, logger *zap.Logger) *ApprovalLevelRepository {
	return &ApprovalLevelRepository{
		db:     db,
		logger: logger,
	}
}

// InitPending creates pending rows for the given levels, replacing any
// rows from a previous cycle.
func (r *ApprovalLevelRepository) InitPending(ctx context.Context, employeeID string, levels []int) error {
	exec := r.getExecutor(ctx)

	if _, err := exec.ExecContext(ctx, `DELETE FROM approval_levels WHERE employee_id = ?`, employeeID); err != nil {
		r.logger.Error("Failed to clear approval levels", zap.String("employee_id", employeeID), zap.Error(err))
		return fmt.Errorf("failed to clear approval levels: %w", err)
	}

	query := `INSERT INTO approval_levels (employee_id, level, status) VALUES (?, ?, ?)`
	for _, level := range levels {
		if _, err := exec.ExecContext(ctx, query, employeeID, level, approval.StatusPending); err != nil {
			r.logger.Error("Failed to init approval level",
				zap.String("employee_id", employeeID), zap.Int("level", level), zap.Error(err))
			return fmt.Errorf("failed to init approval level %d: %w", level, err)
		}
	}
	return nil
}

// RecordDecision persists a resolved decision. The UPDATE is guarded on
// the row still being pending, so the losing side of a concurrent
// double-decide sees zero rows affected and fails with
// approval.ErrAlreadyProcessed instead of overwriting.
func (r *ApprovalLevelRepository) RecordDecision(ctx context.Context, employeeID string, level int, d approval.Decision) error {
	query := `UPDATE approval_levels
		SET status = ?, approved_by = ?, approved_at = ?, comments = ?
		WHERE employee_id = ? AND level = ? AND status = ?`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		d.Status,
		d.ApprovedBy,
		d.ApprovedAt,
		d.Comments,
		employeeID,
		level,
		approval.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to record decision",
			zap.String("employee_id", employeeID), zap.Int("level", level), zap.Error(err))
		return fmt.Errorf("failed to record decision: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: level %d for employee %s resolved concurrently", approval.ErrAlreadyProcessed, level, employeeID)
	}
	return nil
}

// getExecutor returns appropriate executor based on context
func (r *ApprovalLevelRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ApprovalLevelRepository = (*ApprovalLevelRepository)(nil)
