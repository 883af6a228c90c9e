package entity

import "time"

// Employee is the aggregate root for the bonus approval workflow.
// The record itself is created by HR onboarding; this core only mutates
// the embedded approval state.
type Employee struct {
	ID           int64   `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	FullName     string  `json:"full_name"`
	Bonus2024    float64 `json:"bonus_2024"`
	Bonus2025    float64 `json:"bonus_2025"`
	SupervisorID string  `json:"supervisor_id"`

	// ApproverIDs holds the level 1..5 approver assignments, index 0 is
	// level 1. An empty entry means the level is skipped.
	ApproverIDs [NumApprovalLevels]string `json:"approver_ids"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApproverAt returns the approver id for a 1-based level, or "" if the
// level is unpopulated.
func (e *Employee) ApproverAt(level int) string {
	if level < 1 || level > NumApprovalLevels {
		return ""
	}
	return e.ApproverIDs[level-1]
}

// HasApprover reports whether the given level participates in the
// approval chain.
func (e *Employee) HasApprover(level int) bool {
	return e.ApproverAt(level) != ""
}

// HighestPopulatedLevel returns the highest level with an assigned
// approver, or 0 if none.
func (e *Employee) HighestPopulatedLevel() int {
	for level := NumApprovalLevels; level >= 1; level-- {
		if e.HasApprover(level) {
			return level
		}
	}
	return 0
}

// IsApprover reports whether approverID is assigned at any level of
// this employee's chain.
func (e *Employee) IsApprover(approverID string) bool {
	for level := 1; level <= NumApprovalLevels; level++ {
		if e.ApproverAt(level) == approverID {
			return true
		}
	}
	return false
}
