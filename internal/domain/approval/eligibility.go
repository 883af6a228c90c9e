package approval

import (
	"fmt"

	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// Eligibility is the outcome of a CanAct evaluation.
type Eligibility struct {
	Allowed bool
	Reason  string

	// BlockingLevel is the lowest unapproved populated level below the
	// evaluated one, set only when Reason is a level-ordering block.
	BlockingLevel int
}

// CanAct reports whether the given level could be acted upon right now,
// ignoring the level's own terminal state. Callers combine this with a
// pending check before applying a transition.
//
// Levels without an assigned approver never block: they are vacuously
// satisfied for gating purposes.
func CanAct(emp *entity.Employee, st *Status, level int) Eligibility {
	if !BonusEntered(emp, st) {
		return Eligibility{Reason: "bonus missing"}
	}
	for i := 1; i < level; i++ {
		if !emp.HasApprover(i) {
			continue
		}
		if st.Level(i).Status != StatusApproved {
			return Eligibility{
				Reason:        fmt.Sprintf("level %d has not approved yet", i),
				BlockingLevel: i,
			}
		}
	}
	return Eligibility{Allowed: true}
}
