package approval

import (
	"testing"
	"time"

	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

func TestLevelStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   LevelStatus
		expected bool
	}{
		{StatusPending, false},
		{StatusApproved, true},
		{StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("LevelStatus.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLevelStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   LevelStatus
		expected bool
	}{
		{"pending", StatusPending, true},
		{"approved", StatusApproved, true},
		{"rejected", StatusRejected, true},
		{"unknown", LevelStatus("FROZEN"), false},
		{"empty", LevelStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("LevelStatus.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("nil input yields all pending levels", func(t *testing.T) {
		st := Normalize(nil)
		if st == nil {
			t.Fatal("Normalize(nil) returned nil")
		}
		for i := 1; i <= entity.NumApprovalLevels; i++ {
			if got := st.Level(i).Status; got != StatusPending {
				t.Errorf("level %d status = %s, want pending", i, got)
			}
		}
		if st.SubmittedForApproval {
			t.Error("fresh status must not be submitted")
		}
	})

	t.Run("unknown statuses coerced to pending", func(t *testing.T) {
		in := &Status{}
		in.Levels[2] = Decision{Status: LevelStatus("bogus")}
		st := Normalize(in)
		if got := st.Level(3).Status; got != StatusPending {
			t.Errorf("level 3 status = %s, want pending", got)
		}
	})

	t.Run("resolved levels survive", func(t *testing.T) {
		now := time.Now()
		in := &Status{SubmittedForApproval: true}
		in.Levels[0] = Decision{Status: StatusApproved, ApprovedBy: "A1", ApprovedAt: &now}
		st := Normalize(in)
		if got := st.Level(1); got.Status != StatusApproved || got.ApprovedBy != "A1" {
			t.Errorf("level 1 = %+v, want approved by A1", got)
		}
	})

	t.Run("input is not aliased", func(t *testing.T) {
		in := &Status{}
		out := Normalize(in)
		out.Levels[0].Status = StatusRejected
		if in.Levels[0].Status == StatusRejected {
			t.Error("Normalize must copy, not alias")
		}
	})
}

func TestBonusEntered(t *testing.T) {
	tests := []struct {
		name     string
		bonus    float64
		entered  string
		expected bool
	}{
		{"metadata and amount", 5000, "SUP1", true},
		{"amount only (legacy row)", 5000, "", true},
		{"metadata only", 0, "SUP1", true},
		{"neither", 0, "", false},
		{"explicit zero bonus reads as not entered", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emp := &entity.Employee{Bonus2025: tt.bonus}
			st := Normalize(&Status{EnteredBy: tt.entered})
			if got := BonusEntered(emp, st); got != tt.expected {
				t.Errorf("BonusEntered() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFullyApproved(t *testing.T) {
	emp := &entity.Employee{}
	emp.ApproverIDs[0] = "A1"
	emp.ApproverIDs[2] = "A3" // level 2 vacuous

	st := Normalize(nil)
	if FullyApproved(emp, st) {
		t.Error("pending chain must not be fully approved")
	}

	st.Levels[0] = Decision{Status: StatusApproved}
	if FullyApproved(emp, st) {
		t.Error("level 3 still pending")
	}

	st.Levels[2] = Decision{Status: StatusApproved}
	if !FullyApproved(emp, st) {
		t.Error("all populated levels approved, want fully approved")
	}

	t.Run("no populated levels is never fully approved", func(t *testing.T) {
		if FullyApproved(&entity.Employee{}, Normalize(nil)) {
			t.Error("employee without approvers must not count as approved")
		}
	})
}

func TestRejected(t *testing.T) {
	emp := &entity.Employee{}
	emp.ApproverIDs[0] = "A1"
	emp.ApproverIDs[1] = "A2"

	st := Normalize(nil)
	if Rejected(emp, st) {
		t.Error("fresh chain must not read rejected")
	}

	st.Levels[1] = Decision{Status: StatusRejected}
	if !Rejected(emp, st) {
		t.Error("level 2 rejection must terminate the cycle")
	}

	t.Run("rejection on an unpopulated level is ignored", func(t *testing.T) {
		st := Normalize(nil)
		st.Levels[4] = Decision{Status: StatusRejected} // level 5 has no approver
		if Rejected(emp, st) {
			t.Error("vacuous level cannot reject the cycle")
		}
	})
}
