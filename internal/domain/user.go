package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain model for registered authors.
type User struct {
	ID           uuid.UUID
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
