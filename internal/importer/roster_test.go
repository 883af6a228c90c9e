package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/lumenhr/bonus-approval/internal/application/port"
	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

func writeRoster(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Employee ID", "Full Name", "Bonus 2024", "Supervisor",
		"L1 Approver", "L2 Approver", "L3 Approver", "L4 Approver", "L5 Approver"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &row))
	}

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadRoster(t *testing.T) {
	path := writeRoster(t, [][]interface{}{
		{"E001", "Alice Smith", 1200.50, "Jones, Bob", "Jones, Bob", "Lee, Carol"},
		{"E002", "Bob Jones", "", "", "", "", "", "", "Lee, Carol"},
		{"", "ignored, no id"},
	})

	rows, err := ReadRoster(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "E001", rows[0].EmployeeID)
	assert.Equal(t, "Alice Smith", rows[0].FullName)
	assert.Equal(t, 1200.50, rows[0].Bonus2024)
	assert.Equal(t, "Jones, Bob", rows[0].Supervisor)
	assert.Equal(t, "Jones, Bob", rows[0].ApproverNames[0])
	assert.Equal(t, "Lee, Carol", rows[0].ApproverNames[1])
	assert.Equal(t, "", rows[0].ApproverNames[2])

	assert.Equal(t, float64(0), rows[1].Bonus2024)
	assert.Equal(t, "Lee, Carol", rows[1].ApproverNames[4])
}

func TestReadRosterBadAmount(t *testing.T) {
	path := writeRoster(t, [][]interface{}{
		{"E001", "Alice Smith", "not-a-number"},
	})

	_, err := ReadRoster(path)
	assert.Error(t, err)
}

type chainCall struct {
	supervisorID string
	approverIDs  [entity.NumApprovalLevels]string
}

type fakeRepo struct {
	port.EmployeeRepository

	upserted []*entity.Employee
	chains   map[string]chainCall
}

func (f *fakeRepo) Upsert(ctx context.Context, emp *entity.Employee) error {
	f.upserted = append(f.upserted, emp)
	return nil
}

func (f *fakeRepo) SetApprovalChain(ctx context.Context, employeeID, supervisorID string, approverIDs [entity.NumApprovalLevels]string) error {
	if f.chains == nil {
		f.chains = make(map[string]chainCall)
	}
	f.chains[employeeID] = chainCall{supervisorID: supervisorID, approverIDs: approverIDs}
	return nil
}

func TestImporterImport(t *testing.T) {
	rows := []RosterRow{
		{
			EmployeeID: "E001",
			FullName:   "Alice Smith",
			Bonus2024:  1000,
			Supervisor: "Jones, Bob",
			ApproverNames: [entity.NumApprovalLevels]string{
				"Jones, Bob", "Lee, Carol", "", "", "",
			},
		},
		{EmployeeID: "E002", FullName: "Bob Jones"},
		{EmployeeID: "E003", FullName: "Carol Lee"},
		{
			EmployeeID: "E004",
			FullName:   "Dan Wu",
			ApproverNames: [entity.NumApprovalLevels]string{
				"Nobody, Known", "", "", "", "",
			},
		},
	}

	repo := &fakeRepo{}
	report, err := NewImporter(repo, zap.NewNop()).Import(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Imported)
	require.Len(t, repo.upserted, 4)

	chain := repo.chains["E001"]
	assert.Equal(t, "E002", chain.supervisorID)
	assert.Equal(t, "E002", chain.approverIDs[0])
	assert.Equal(t, "E003", chain.approverIDs[1])
	assert.Equal(t, "", chain.approverIDs[2])

	// Unknown approver name reported, slot left empty
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Nobody, Known")
	assert.Equal(t, "", repo.chains["E004"].approverIDs[0])
}
