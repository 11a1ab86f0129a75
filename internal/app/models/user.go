package models

import "github.com/google/uuid"

// User is the authenticated caller, as asserted by the hosted auth provider.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
}
