package models

// UserRole represents the available roles for the RBAC layer. The registry
// knows a single mutating identity, so the role set is deliberately small.
type UserRole string

const (
	RoleSecretary UserRole = "SECRETARY"
)
