package workflow

// Role is the closed set of user roles. Together with a department id it
// decides visibility and which transitions a user may apply.
type Role string

const (
	RoleUser     Role = "USER"
	RoleManager  Role = "MANAGER"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

var roles = map[Role]bool{
	RoleUser:     true,
	RoleManager:  true,
	RoleApprover: true,
	RoleAdmin:    true,
}

// ParseRole converts a stored role string, reporting whether it is known.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, roles[r]
}

func (r Role) String() string { return string(r) }
