package approval

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when the employee does not exist or is inactive.
	ErrNotFound = errors.New("employee not found")

	// ErrForbidden is returned when the caller is not the assigned
	// approver or supervisor for the requested action.
	ErrForbidden = errors.New("not authorized for this action")

	// ErrNotSubmitted is returned when a level action is attempted before
	// the bonus has been submitted for approval.
	ErrNotSubmitted = errors.New("bonus not submitted for approval")

	// ErrBonusMissing is returned when no bonus has been entered.
	ErrBonusMissing = errors.New("bonus not entered")

	// ErrAlreadyProcessed is returned when the level has already been
	// approved or rejected. Transitions are one-shot per level.
	ErrAlreadyProcessed = errors.New("level already processed")

	// ErrPreviousLevelPending is returned on an ordering violation.
	ErrPreviousLevelPending = errors.New("previous level pending")

	// ErrAlreadySubmitted is returned when the bonus amount is edited
	// after the submission lock.
	ErrAlreadySubmitted = errors.New("bonus already submitted for approval")
)

// BlockedError reports which lower level blocks the attempted action.
// It unwraps to ErrPreviousLevelPending.
type BlockedError struct {
	Level int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("level %d must be approved first", e.Level)
}

func (e *BlockedError) Unwrap() error {
	return ErrPreviousLevelPending
}

// BlockingLevel extracts the blocking level from an ordering-violation
// error, or 0 if err is not a BlockedError.
func BlockingLevel(err error) int {
	var be *BlockedError
	if errors.As(err, &be) {
		return be.Level
	}
	return 0
}
