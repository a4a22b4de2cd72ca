package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
)

type mockUserRepo struct {
	create         func(ctx context.Context, user *domain.User) error
	update         func(ctx context.Context, user *domain.User) error
	delete         func(ctx context.Context, id uuid.UUID) error
	getByID        func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByUsername  func(ctx context.Context, username string) (*domain.User, error)
	getByEmail     func(ctx context.Context, email string) (*domain.User, error)
	listWithFilter func(ctx context.Context, filter repository.UserFilter) ([]domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.create != nil {
		return m.create(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.update != nil {
		return m.update(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsername != nil {
		return m.getByUsername(ctx, username)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmail != nil {
		return m.getByEmail(ctx, email)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) ListWithFilter(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	if m.listWithFilter != nil {
		return m.listWithFilter(ctx, filter)
	}
	return nil, nil
}

type mockPostRepo struct {
	create       func(ctx context.Context, post *domain.Post) error
	update       func(ctx context.Context, post *domain.Post) error
	delete       func(ctx context.Context, id uuid.UUID) error
	getByID      func(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	list         func(ctx context.Context, limit, offset int) ([]domain.Post, error)
	listByAuthor func(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Post, error)
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	if m.create != nil {
		return m.create(ctx, post)
	}
	post.ID = uuid.New()
	return nil
}

func (m *mockPostRepo) Update(ctx context.Context, post *domain.Post) error {
	if m.update != nil {
		return m.update(ctx, post)
	}
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockPostRepo) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	if m.list != nil {
		return m.list(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockPostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Post, error) {
	if m.listByAuthor != nil {
		return m.listByAuthor(ctx, authorID, limit, offset)
	}
	return nil, nil
}

type mockCommentRepo struct {
	create     func(ctx context.Context, comment *domain.Comment) error
	update     func(ctx context.Context, comment *domain.Comment) error
	delete     func(ctx context.Context, id uuid.UUID) error
	getByID    func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	listByPost func(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	if m.create != nil {
		return m.create(ctx, comment)
	}
	comment.ID = uuid.New()
	return nil
}

func (m *mockCommentRepo) Update(ctx context.Context, comment *domain.Comment) error {
	if m.update != nil {
		return m.update(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return nil
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.Comment, error) {
	if m.listByPost != nil {
		return m.listByPost(ctx, postID, limit, offset)
	}
	return nil, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) lastType() events.EventType {
	if len(d.published) == 0 {
		return ""
	}
	return d.published[len(d.published)-1].Type
}
