package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is a published blog entry owned by its author.
type Post struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
