package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventPostCreated    EventType = "post_created"
	EventPostDeleted    EventType = "post_deleted"
	EventCommentAdded   EventType = "comment_added"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
	IsAdmin  bool      `json:"is_admin,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID uuid.UUID   `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PostCreatedPayload payload.
type PostCreatedPayload struct {
	Title string `json:"title"`
}

// PostDeletedPayload payload.
type PostDeletedPayload struct {
	AuthorID uuid.UUID `json:"author_id"`
	Title    string    `json:"title"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	PostID      uuid.UUID `json:"post_id"`
	BodyPreview string    `json:"body_preview"`
}
