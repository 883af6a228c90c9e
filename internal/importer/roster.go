package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// RosterRow is one line of the legacy roster spreadsheet. Supervisor
// and approver columns hold "LastName, FirstName" strings.
type RosterRow struct {
	EmployeeID    string
	FullName      string
	Bonus2024     float64
	Supervisor    string
	ApproverNames [entity.NumApprovalLevels]string
}

// ReadRoster loads roster rows from the first sheet of an xlsx file.
// Expected columns: Employee ID, Full Name, Bonus 2024, Supervisor,
// then one column per approval level. The header row is skipped and
// rows without an employee id are ignored.
func ReadRoster(path string) ([]RosterRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("roster has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	var roster []RosterRow
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		row := RosterRow{
			EmployeeID: strings.TrimSpace(cell(cells, 0)),
			FullName:   strings.TrimSpace(cell(cells, 1)),
			Supervisor: strings.TrimSpace(cell(cells, 3)),
		}
		if row.EmployeeID == "" {
			continue
		}
		if raw := strings.TrimSpace(cell(cells, 2)); raw != "" {
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid bonus amount %q", i+1, raw)
			}
			row.Bonus2024 = amount
		}
		for l := 0; l < entity.NumApprovalLevels; l++ {
			row.ApproverNames[l] = strings.TrimSpace(cell(cells, 4+l))
		}
		roster = append(roster, row)
	}
	return roster, nil
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

// Report summarizes an import run.
type Report struct {
	Imported int
	Errors   []string
}

// Importer loads a roster into storage in two passes: employees first,
// then the name-resolved supervisor and approval chains. Names that
// fail to resolve are reported and leave their slot unassigned.
type Importer struct {
	repo   port.EmployeeRepository
	logger *zap.Logger
}

// NewImporter creates a new roster importer
func NewImporter(repo port.EmployeeRepository, logger *zap.Logger) *Importer {
	return &Importer{
		repo:   repo,
		logger: logger,
	}
}

// Import upserts every roster row, then resolves and assigns each
// employee's supervisor and approver chain against the full roster.
func (im *Importer) Import(ctx context.Context, rows []RosterRow) (*Report, error) {
	report := &Report{}

	employees := make([]*entity.Employee, 0, len(rows))
	for i := range rows {
		emp := &entity.Employee{
			EmployeeID: rows[i].EmployeeID,
			FullName:   rows[i].FullName,
			Bonus2024:  rows[i].Bonus2024,
			IsActive:   true,
		}
		if err := im.repo.Upsert(ctx, emp); err != nil {
			return nil, fmt.Errorf("employee %s: %w", emp.EmployeeID, err)
		}
		employees = append(employees, emp)
		report.Imported++
	}

	names := collectNames(rows)
	matched := MatchApprovers(names, employees)
	report.Errors = append(report.Errors, matched.Errors...)

	for _, row := range rows {
		var chain [entity.NumApprovalLevels]string
		for l, name := range row.ApproverNames {
			if name != "" {
				chain[l] = matched.Resolved[name]
			}
		}
		supervisorID := ""
		if row.Supervisor != "" {
			supervisorID = matched.Resolved[row.Supervisor]
		}
		if err := im.repo.SetApprovalChain(ctx, row.EmployeeID, supervisorID, chain); err != nil {
			return nil, fmt.Errorf("employee %s: %w", row.EmployeeID, err)
		}
	}

	im.logger.Info("Roster import finished",
		zap.Int("imported", report.Imported),
		zap.Int("unresolved_names", len(report.Errors)))
	return report, nil
}

// collectNames returns the distinct non-empty supervisor and approver
// names, preserving first-seen order.
func collectNames(rows []RosterRow) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, row := range rows {
		add(row.Supervisor)
		for _, name := range row.ApproverNames {
			add(name)
		}
	}
	return names
}
