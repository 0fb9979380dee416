package entities

// Role is one of the closed workflow roles. No other values are accepted at
// any boundary.
type Role string

const (
	RoleAgentInstruction Role = "AGENT_INSTRUCTION"
	RoleCoordinateur     Role = "COORDINATEUR"
	RoleMembreComite     Role = "MEMBRE_COMITE"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAgentInstruction, RoleCoordinateur, RoleMembreComite:
		return Role(raw), true
	default:
		return "", false
	}
}
