package port

import (
	"context"
	"time"

	"github.com/lumenhr/bonus-approval/internal/domain/approval"
	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// EmployeeRecord bundles an employee with its assembled approval status.
// The status is always normalized (all five levels present).
type EmployeeRecord struct {
	Employee *entity.Employee
	Status   *approval.Status
}

// EmployeeRepository defines persistence operations for Employee and its
// approval state. Inactive employees are invisible to every query.
type EmployeeRepository interface {
	// GetByEmployeeID returns the active employee with the given business
	// key, or nil if none exists.
	GetByEmployeeID(ctx context.Context, employeeID string) (*EmployeeRecord, error)

	// ListBySupervisor returns active employees reporting to the supervisor.
	ListBySupervisor(ctx context.Context, supervisorID string) ([]*EmployeeRecord, error)

	// ListByApprover returns active employees that carry approverID at any
	// level. submittedOnly restricts to employees under an active approval
	// cycle.
	ListByApprover(ctx context.Context, approverID string, submittedOnly bool) ([]*EmployeeRecord, error)

	// ListActive returns every active employee.
	ListActive(ctx context.Context) ([]*EmployeeRecord, error)

	// SetBonus records a bonus entry: amount plus entry metadata.
	SetBonus(ctx context.Context, employeeID string, amount float64, enteredBy string, at time.Time) error

	// MarkSubmitted flips the one-time submission lock.
	MarkSubmitted(ctx context.Context, employeeID string, at time.Time) error

	// Upsert inserts the employee or refreshes its roster fields by
	// business key. Approval state is untouched.
	Upsert(ctx context.Context, emp *entity.Employee) error

	// SetApprovalChain assigns the supervisor and per-level approver ids.
	SetApprovalChain(ctx context.Context, employeeID, supervisorID string, approverIDs [entity.NumApprovalLevels]string) error
}

// ApprovalLevelRepository defines persistence operations on the
// per-level decision rows.
type ApprovalLevelRepository interface {
	// InitPending creates pending rows for the given levels, replacing any
	// prior rows for the employee.
	InitPending(ctx context.Context, employeeID string, levels []int) error

	// RecordDecision persists a resolved decision. The write is guarded on
	// the row still being pending; a concurrent resolve surfaces as an
	// error wrapping approval.ErrAlreadyProcessed.
	RecordDecision(ctx context.Context, employeeID string, level int, d approval.Decision) error
}

// TransactionManager runs a function within a storage transaction.
// Repositories called with the derived context join the transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
