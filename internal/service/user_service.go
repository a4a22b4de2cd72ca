package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util/errorutil"
)

// UserService manages user profiles. Mutations receive the caller identity
// explicitly and apply the owner-or-admin rule after loading the target.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, logger: logger}
}

// UserUpdateInput carries partial profile updates; empty fields are ignored.
type UserUpdateInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Search lists users matching the filter.
func (s *UserService) Search(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// UpdateProfile applies a partial update to a user profile.
func (s *UserService) UpdateProfile(ctx context.Context, caller auth.Identity, id uuid.UUID, input UserUpdateInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if decision := auth.CanMutate(caller, user.ID); !decision.Allow {
		s.logger.Warn("profile update denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("target_id", id.String()),
			zap.String("reason", string(decision.Reason)))
		return nil, apperrors.NewForbidden("not allowed to modify this profile")
	}

	if v := strings.TrimSpace(input.Username); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(input.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		user.Email = v
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Delete removes a user account; comments and posts cascade in the database.
func (s *UserService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if decision := auth.CanMutate(caller, user.ID); !decision.Allow {
		s.logger.Warn("account delete denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("target_id", id.String()),
			zap.String("reason", string(decision.Reason)))
		return apperrors.NewForbidden("not allowed to delete this account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user")
		}
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()), zap.String("deleted_by", caller.ID.String()))
	return nil
}
