package entity

// NumApprovalLevels is the fixed number of approval stages an employee
// chain may carry. Levels without an assigned approver are skipped.
const NumApprovalLevels = 5

// Role identifies a caller's coarse role. Authorization is enforced
// per operation (approver/supervisor id equality), but the role travels
// with the caller identity so enforcement can be tightened without a
// data-model change.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

var validRoles = map[Role]bool{
	RoleEmployee: true,
	RoleHR:       true,
	RoleApprover: true,
	RoleAdmin:    true,
}

// IsValid returns true if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
