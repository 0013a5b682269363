package models

import "github.com/google/uuid"

// Actor is the authenticated caller as carried by the session token.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) CanReview() bool {
	return a.Role == RoleFaculty || a.Role == RoleAdmin
}
