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

// PostService coordinates blog post workflows.
type PostService struct {
	posts      repository.PostRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPostService constructs the service.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *PostService {
	return &PostService{posts: posts, users: users, dispatcher: dispatcher, logger: logger}
}

// PostInput describes post create/update payloads.
type PostInput struct {
	Title   string
	Content string
}

// Create publishes a new post authored by the caller.
func (s *PostService) Create(ctx context.Context, caller auth.Identity, input PostInput) (*domain.Post, error) {
	post := &domain.Post{
		AuthorID: caller.ID,
		Title:    input.Title,
		Content:  input.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:       events.EventPostCreated,
			ResourceID: post.ID,
			Actor:      events.Actor{UserID: caller.ID, Username: caller.Username, IsAdmin: caller.IsAdmin},
			Timestamp:  time.Now(),
			Payload:    events.PostCreatedPayload{Title: post.Title},
		})
	}
	return post, nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return post, nil
}

// List returns posts newest first.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return posts, nil
}

// ListByAuthor returns posts written by the given user.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Post, error) {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(err)
	}
	posts, err := s.posts.ListByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return posts, nil
}

// Update edits a post after the owner-or-admin check.
func (s *PostService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, input PostInput) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if decision := auth.CanMutate(caller, post.AuthorID); !decision.Allow {
		s.logger.Warn("post update denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("post_id", id.String()),
			zap.String("reason", string(decision.Reason)))
		return nil, apperrors.NewForbidden("not allowed to modify this post")
	}

	post.Title = input.Title
	post.Content = input.Content
	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return post, nil
}

// Delete removes a post after the owner-or-admin check; comments cascade.
func (s *PostService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if decision := auth.CanMutate(caller, post.AuthorID); !decision.Allow {
		s.logger.Warn("post delete denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("post_id", id.String()),
			zap.String("reason", string(decision.Reason)))
		return apperrors.NewForbidden("not allowed to delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("post")
		}
		return apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:       events.EventPostDeleted,
			ResourceID: post.ID,
			Actor:      events.Actor{UserID: caller.ID, Username: caller.Username, IsAdmin: caller.IsAdmin},
			Timestamp:  time.Now(),
			Payload:    events.PostDeletedPayload{AuthorID: post.AuthorID, Title: post.Title},
		})
	}
	return nil
}
