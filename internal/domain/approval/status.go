package approval

import (
	"time"

	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// LevelStatus is the per-level state of an approval stage.
type LevelStatus string

const (
	StatusPending  LevelStatus = "pending"
	StatusApproved LevelStatus = "approved"
	StatusRejected LevelStatus = "rejected"
)

var validStatuses = map[LevelStatus]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// IsValid returns true if the status is a known level status.
func (s LevelStatus) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if the level can no longer transition.
func (s LevelStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// String returns the string representation of the status.
func (s LevelStatus) String() string {
	return string(s)
}

// Decision is the recorded outcome of a single approval level.
type Decision struct {
	Status     LevelStatus `json:"status"`
	ApprovedBy string      `json:"approved_by,omitempty"`
	ApprovedAt *time.Time  `json:"approved_at,omitempty"`
	Comments   string      `json:"comments,omitempty"`
}

// Status is the per-employee approval record. Stored rows may be
// partial (legacy data); Normalize yields the canonical shape with all
// five levels present.
type Status struct {
	EnteredBy            string     `json:"entered_by,omitempty"`
	EnteredAt            *time.Time `json:"entered_at,omitempty"`
	SubmittedForApproval bool       `json:"submitted_for_approval"`
	SubmittedAt          *time.Time `json:"submitted_at,omitempty"`

	// Levels[0] is level 1. A level's decision only carries meaning if
	// the employee has an approver assigned at that level.
	Levels [entity.NumApprovalLevels]Decision `json:"levels"`
}

// Normalize returns a canonical copy of st: never nil, all five level
// slots present, and any unknown level status coerced to pending.
func Normalize(st *Status) *Status {
	out := &Status{}
	if st != nil {
		*out = *st
	}
	for i := range out.Levels {
		if !out.Levels[i].Status.IsValid() {
			out.Levels[i].Status = StatusPending
		}
	}
	return out
}

// Level returns the decision for a 1-based level. Out-of-range levels
// read as pending.
func (st *Status) Level(level int) Decision {
	if level < 1 || level > entity.NumApprovalLevels {
		return Decision{Status: StatusPending}
	}
	d := st.Levels[level-1]
	if !d.Status.IsValid() {
		d.Status = StatusPending
	}
	return d
}

// setLevel replaces the decision for a 1-based level.
func (st *Status) setLevel(level int, d Decision) {
	st.Levels[level-1] = d
}

// BonusEntered reports whether a bonus has been entered for the
// employee. Legacy rows can miss entry metadata, so a positive amount
// alone counts; an explicit zero bonus reads as not entered.
func BonusEntered(emp *entity.Employee, st *Status) bool {
	return st.EnteredBy != "" || emp.Bonus2025 > 0
}

// Rejected reports whether any populated level has been rejected,
// which terminates the employee's cycle.
func Rejected(emp *entity.Employee, st *Status) bool {
	for level := 1; level <= entity.NumApprovalLevels; level++ {
		if emp.HasApprover(level) && st.Level(level).Status == StatusRejected {
			return true
		}
	}
	return false
}

// FullyApproved reports whether every populated level has been
// approved. Employees with no populated levels are never considered
// fully approved.
func FullyApproved(emp *entity.Employee, st *Status) bool {
	populated := 0
	for level := 1; level <= entity.NumApprovalLevels; level++ {
		if !emp.HasApprover(level) {
			continue
		}
		populated++
		if st.Level(level).Status != StatusApproved {
			return false
		}
	}
	return populated > 0
}
