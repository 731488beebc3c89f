package domain

import "github.com/google/uuid"

const RoleAdmin = "admin"

// Principal is the caller identified by a verified bearer credential.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
