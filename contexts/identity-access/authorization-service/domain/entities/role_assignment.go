package entities

import "time"

// RoleAssignment captures an active or historical user-role relation.
type RoleAssignment struct {
	AssignmentID string     `json:"assignment_id"`
	UserID       string     `json:"user_id"`
	Role         Role       `json:"role"`
	AssignedBy   string     `json:"assigned_by"`
	Reason       string     `json:"reason"`
	AssignedAt   time.Time  `json:"assigned_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the assignment currently grants its role.
func (a RoleAssignment) Active() bool {
	return a.RevokedAt == nil
}
