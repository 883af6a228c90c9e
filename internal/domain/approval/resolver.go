package approval

import "github.com/lumenhr/bonus-approval/internal/domain/entity"

// NextPendingLevel scans levels 1..5 in order and returns the first
// populated level still pending, together with its approver id. ok is
// false when nothing is pending: every populated level is approved, a
// rejection has terminated the cycle, or no level is populated at all.
func NextPendingLevel(emp *entity.Employee, st *Status) (level int, approverID string, ok bool) {
	for l := 1; l <= entity.NumApprovalLevels; l++ {
		if !emp.HasApprover(l) {
			continue
		}
		switch st.Level(l).Status {
		case StatusPending:
			return l, emp.ApproverAt(l), true
		case StatusRejected:
			return 0, "", false
		}
	}
	return 0, "", false
}
