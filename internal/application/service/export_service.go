package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/approval"
	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// ErrApprovalsIncomplete is returned when an export is requested while
// employees are still awaiting approval.
var ErrApprovalsIncomplete = errors.New("approvals not yet completed")

// ExportService produces the finalized bonus results workbook for HR.
type ExportService interface {
	// ExportResults renders the xlsx. It refuses while the completion
	// check reports pending employees.
	ExportResults(ctx context.Context) ([]byte, error)
}

type exportServiceImpl struct {
	employeeRepo    port.EmployeeRepository
	approvalService ApprovalService
	logger          Logger
}

// NewExportService creates a new ExportService
func NewExportService(
	employeeRepo port.EmployeeRepository,
	approvalService ApprovalService,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		employeeRepo:    employeeRepo,
		approvalService: approvalService,
		logger:          logger,
	}
}

const exportSheet = "Bonus Results"

func (s *exportServiceImpl) ExportResults(ctx context.Context) ([]byte, error) {
	report, err := s.approvalService.CheckAllApprovalsCompleted(ctx)
	if err != nil {
		return nil, err
	}
	if !report.AllApprovalsCompleted {
		return nil, fmt.Errorf("%w: %d employees pending", ErrApprovalsIncomplete, len(report.PendingEmployees))
	}

	recs, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list employees for export", "error", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Employee ID", "Name", "Supervisor", "Bonus 2024", "Bonus 2025", "Outcome"}
	for l := 1; l <= entity.NumApprovalLevels; l++ {
		headers = append(headers,
			fmt.Sprintf("L%d Approver", l),
			fmt.Sprintf("L%d Decided At", l),
			fmt.Sprintf("L%d Comments", l),
		)
	}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}

	row := 2
	for _, rec := range recs {
		emp, st := rec.Employee, rec.Status
		if !approval.BonusEntered(emp, st) || emp.HighestPopulatedLevel() == 0 {
			continue
		}

		outcome := "approved"
		if approval.Rejected(emp, st) {
			outcome = "rejected"
		}

		values := []interface{}{
			emp.EmployeeID, emp.FullName, emp.SupervisorID,
			emp.Bonus2024, emp.Bonus2025, outcome,
		}
		for l := 1; l <= entity.NumApprovalLevels; l++ {
			d := st.Level(l)
			decidedAt := ""
			if d.ApprovedAt != nil {
				decidedAt = d.ApprovedAt.Format(time.RFC3339)
			}
			values = append(values, d.ApprovedBy, decidedAt, d.Comments)
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("Failed to render export workbook", "error", err)
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Export generated", "rows", row-2)
	return buf.Bytes(), nil
}
