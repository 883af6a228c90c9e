package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
)

func TestExportResults(t *testing.T) {
	approved := record("E1", "A1")
	approved.Status.Levels[0] = approval.Decision{Status: approval.StatusApproved, ApprovedBy: "A1", Comments: "ok"}
	rejected := record("E2", "A1")
	rejected.Status.Levels[0] = approval.Decision{Status: approval.StatusRejected, ApprovedBy: "A1"}
	noBonus := record("E3", "A1")
	noBonus.Employee.Bonus2025 = 0
	noBonus.Status.EnteredBy = ""

	employeeRepo := &mockEmployeeRepo{
		listActiveFunc: func(ctx context.Context) ([]*port.EmployeeRecord, error) {
			return []*port.EmployeeRecord{approved, rejected, noBonus}, nil
		},
	}
	approvalSvc := newApprovalService(employeeRepo, &mockLevelRepo{})
	svc := NewExportService(employeeRepo, approvalSvc, nopLogger{})

	data, err := svc.ExportResults(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bonus Results")
	require.NoError(t, err)
	// Header plus the two employees in a cycle; no-bonus employee excluded.
	require.Len(t, rows, 3)
	assert.Equal(t, "Employee ID", rows[0][0])
	assert.Equal(t, "E1", rows[1][0])
	assert.Equal(t, "approved", rows[1][5])
	assert.Equal(t, "E2", rows[2][0])
	assert.Equal(t, "rejected", rows[2][5])
}

func TestExportResults_RefusesWhilePending(t *testing.T) {
	waiting := record("E1", "A1")
	employeeRepo := &mockEmployeeRepo{
		listActiveFunc: func(ctx context.Context) ([]*port.EmployeeRecord, error) {
			return []*port.EmployeeRecord{waiting}, nil
		},
	}
	approvalSvc := newApprovalService(employeeRepo, &mockLevelRepo{})
	svc := NewExportService(employeeRepo, approvalSvc, nopLogger{})

	_, err := svc.ExportResults(context.Background())
	assert.ErrorIs(t, err, ErrApprovalsIncomplete)
}
