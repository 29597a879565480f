package interview

// Role gates visibility of notes and AI analyses.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// Valid reports whether the role is one of the two accepted values.
func (r Role) Valid() bool {
	return r == RoleInterviewer || r == RoleCandidate
}
