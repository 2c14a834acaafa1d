package domain

import "github.com/google/uuid"

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccessUser reports whether p may act on data owned by userID
func (p Principal) CanAccessUser(userID uuid.UUID) bool {
	return p.IsAdmin() || p.UserID == userID
}
