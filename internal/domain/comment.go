package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader response attached to a post.
type Comment struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	AuthorID  uuid.UUID
	Content   string
	CreatedAt time.Time
}
