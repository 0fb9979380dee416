package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CheckPermissionRequest struct {
	Permission string `json:"permission"`
}

type CheckPermissionResponse struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
	CheckedAt  string `json:"checked_at"`
	CacheHit   bool   `json:"cache_hit"`
}

type GrantRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Reason string `json:"reason,omitempty"`
}

type RevokeRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Reason string `json:"reason,omitempty"`
}

type RoleAssignmentResponse struct {
	AssignmentID string `json:"assignment_id"`
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	AssignedBy   string `json:"assigned_by"`
	Reason       string `json:"reason,omitempty"`
	AssignedAt   string `json:"assigned_at"`
	RevokedAt    string `json:"revoked_at,omitempty"`
	Active       bool   `json:"active"`
}

type UserRolesResponse struct {
	UserID string                   `json:"user_id"`
	Items  []RoleAssignmentResponse `json:"items"`
}
