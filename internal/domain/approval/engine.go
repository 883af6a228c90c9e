package approval

import (
	"fmt"
	"time"

	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// Action is a decision an approver can take on a pending level.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// IsValid returns true if the action is a known decision action.
func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// ApplyDecision validates and applies a single approve/reject action to
// the employee's approval status. Preconditions are checked in order and
// the first failure wins:
//
//  1. level and action must be well-formed
//  2. the bonus must be submitted for approval
//  3. the bonus must be entered
//  4. actingApproverID must be the assigned approver at the level
//  5. the level must still be pending
//  6. every lower populated level must already be approved
//
// On success the level's decision is written into st and returned.
// Empty comments leave any previously stored comment untouched. st is
// mutated in place; no other field changes.
func ApplyDecision(emp *entity.Employee, st *Status, level int, actingApproverID string, action Action, comments string, now time.Time) (Decision, error) {
	if level < 1 || level > entity.NumApprovalLevels {
		return Decision{}, fmt.Errorf("%w: level must be between 1 and %d, got %d", ErrValidation, entity.NumApprovalLevels, level)
	}
	if !action.IsValid() {
		return Decision{}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if actingApproverID == "" {
		return Decision{}, fmt.Errorf("%w: approver id is required", ErrValidation)
	}

	if !st.SubmittedForApproval {
		return Decision{}, ErrNotSubmitted
	}
	if !BonusEntered(emp, st) {
		return Decision{}, ErrBonusMissing
	}
	if emp.ApproverAt(level) != actingApproverID {
		return Decision{}, fmt.Errorf("%w: not the assigned approver for level %d", ErrForbidden, level)
	}

	current := st.Level(level)
	if current.Status != StatusPending {
		return Decision{}, fmt.Errorf("%w: level %d is already %s", ErrAlreadyProcessed, level, current.Status)
	}

	if elig := CanAct(emp, st, level); !elig.Allowed {
		if elig.BlockingLevel > 0 {
			return Decision{}, &BlockedError{Level: elig.BlockingLevel}
		}
		return Decision{}, ErrBonusMissing
	}

	decided := Decision{
		Status:     StatusApproved,
		ApprovedBy: actingApproverID,
		ApprovedAt: &now,
		Comments:   current.Comments,
	}
	if action == ActionReject {
		decided.Status = StatusRejected
	}
	if comments != "" {
		decided.Comments = comments
	}

	st.setLevel(level, decided)
	return decided, nil
}
