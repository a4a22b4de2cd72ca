package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util/errorutil"
)

const commentPreviewLen = 80

// CommentService coordinates comment workflows.
type CommentService struct {
	comments   repository.CommentRepository
	posts      repository.PostRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewCommentService constructs the service.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, dispatcher events.Dispatcher, logger *zap.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, dispatcher: dispatcher, logger: logger}
}

// Create attaches a comment authored by the caller to an existing post.
func (s *CommentService) Create(ctx context.Context, caller auth.Identity, postID uuid.UUID, content string) (*domain.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post")
		}
		return nil, apperrors.NewInternalError(err)
	}

	comment := &domain.Comment{
		PostID:   postID,
		AuthorID: caller.ID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		preview := content
		if len(preview) > commentPreviewLen {
			preview = preview[:commentPreviewLen]
		}
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:       events.EventCommentAdded,
			ResourceID: comment.ID,
			Actor:      events.Actor{UserID: caller.ID, Username: caller.Username, IsAdmin: caller.IsAdmin},
			Timestamp:  time.Now(),
			Payload:    events.CommentAddedPayload{PostID: postID, BodyPreview: preview},
		})
	}
	return comment, nil
}

// Get returns a single comment.
func (s *CommentService) Get(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return comment, nil
}

// ListByPost returns a post's comments oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post")
		}
		return nil, apperrors.NewInternalError(err)
	}
	comments, err := s.comments.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return comments, nil
}

// Update edits a comment after the owner-or-admin check.
func (s *CommentService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, content string) (*domain.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if decision := auth.CanMutate(caller, comment.AuthorID); !decision.Allow {
		s.logger.Warn("comment update denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("comment_id", id.String()),
			zap.String("reason", string(decision.Reason)))
		return nil, apperrors.NewForbidden("not allowed to modify this comment")
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return comment, nil
}

// Delete removes a comment after the owner-or-admin check.
func (s *CommentService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if decision := auth.CanMutate(caller, comment.AuthorID); !decision.Allow {
		s.logger.Warn("comment delete denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("comment_id", id.String()),
			zap.String("reason", string(decision.Reason)))
		return apperrors.NewForbidden("not allowed to delete this comment")
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment")
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}
