package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/observability"
	"github.com/spec-kit/blog-service/internal/persistence"
	"github.com/spec-kit/blog-service/internal/repository"
	"github.com/spec-kit/blog-service/internal/service"
)

// In-memory repositories so the full HTTP stack can run without Postgres.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListWithFilter(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if filter.Username != nil && !strings.Contains(u.Username, *filter.Username) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) promote(t *testing.T, id uuid.UUID) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		t.Fatalf("no such user %s", id)
	}
	u.IsAdmin = true
}

type memPostRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*domain.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[uuid.UUID]*domain.Post)}
}

func (r *memPostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = uuid.New()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *memPostRepo) Update(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return pgx.ErrNoRows
	}
	post.UpdatedAt = time.Now()
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *memPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memPostRepo) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Post
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memPostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Post
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memCommentRepo struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*domain.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: make(map[uuid.UUID]*domain.Comment)}
}

func (r *memCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now()
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *memCommentRepo) Update(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[comment.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *memCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.comments, id)
	return nil
}

func (r *memCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memCommentRepo) ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type testServer struct {
	app   *fiber.App
	users *memUserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	authCfg := config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "blog-service",
		Audience:        "blog-service-clients",
		TokenTTLMinutes: 30,
		BcryptCost:      4,
		Mode:            config.AuthModeBearer,
	}

	logger := zap.NewNop()
	users := newMemUserRepo()
	posts := newMemPostRepo()
	comments := newMemCommentRepo()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(authCfg, users, dispatcher, logger)
	userService := service.NewUserService(users, authCfg.BcryptCost, logger)
	postService := service.NewPostService(posts, users, dispatcher, logger)
	commentService := service.NewCommentService(comments, posts, dispatcher, logger)

	middleware, err := auth.NewMiddleware(authService.TokenManager(), users, authService, nil, logger)
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("blog-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(authService, userService, postService),
		Posts:          handlers.NewPostsHandler(postService),
		Comments:       handlers.NewCommentsHandler(commentService),
		AuthMiddleware: middleware,
		AuthMode:       authCfg.Mode,
	})

	return &testServer{app: app, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func (s *testServer) register(t *testing.T, username string) (uuid.UUID, string) {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"email":      username + "@example.com",
		"password":   "pw-" + username,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body %v", username, status, body)
	}
	data := body["data"].(map[string]any)
	id, err := uuid.Parse(data["user"].(map[string]any)["id"].(string))
	if err != nil {
		t.Fatalf("parse user id: %v", err)
	}
	token := data["auth"].(map[string]any)["token"].(string)
	return id, token
}

func errorCode(body map[string]any) string {
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestHealthLive(t *testing.T) {
	srv := newTestServer(t)
	status, body := srv.do(t, http.MethodGet, "/health/live", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "alive" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if code := errorCode(body); code != "UNAUTHORIZED" {
		t.Fatalf("code = %q, want uniform UNAUTHORIZED", code)
	}
}

// All authentication failures must look identical to the client.
func TestAuthFailuresAreUniform(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice")

	_, missingHeader := srv.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	_, badToken := srv.do(t, http.MethodGet, "/api/v1/posts", "not.a.token", nil)
	_, wrongPassword := srv.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	_, unknownUser := srv.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": "nobody", "password": "whatever",
	})

	for name, body := range map[string]map[string]any{
		"missing header": missingHeader,
		"bad token":      badToken,
		"wrong password": wrongPassword,
		"unknown user":   unknownUser,
	} {
		if code := errorCode(body); code != "UNAUTHORIZED" {
			t.Fatalf("%s: code = %q, want UNAUTHORIZED", name, code)
		}
	}
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	aliceID, aliceToken := srv.register(t, "alice")
	bobID, bobToken := srv.register(t, "bob")

	status, body := srv.do(t, http.MethodPost, "/api/v1/posts", aliceToken, map[string]string{
		"title": "Hello", "content": "First post",
	})
	if status != http.StatusCreated {
		t.Fatalf("create post: status = %d, body %v", status, body)
	}
	postData := body["data"].(map[string]any)
	postID := postData["id"].(string)
	if postData["author_id"] != aliceID.String() {
		t.Fatalf("author = %v, want %s", postData["author_id"], aliceID)
	}

	status, body = srv.do(t, http.MethodPut, "/api/v1/posts/"+postID, bobToken, map[string]string{
		"title": "Hijacked", "content": "mine now",
	})
	if status != http.StatusForbidden {
		t.Fatalf("stranger update: status = %d, want 403", status)
	}
	if code := errorCode(body); code != "FORBIDDEN" {
		t.Fatalf("code = %q, want FORBIDDEN", code)
	}

	status, _ = srv.do(t, http.MethodPut, "/api/v1/posts/"+postID, aliceToken, map[string]string{
		"title": "Hello v2", "content": "edited",
	})
	if status != http.StatusOK {
		t.Fatalf("owner update: status = %d, want 200", status)
	}

	// An admin may delete any post.
	srv.users.promote(t, bobID)
	status, _ = srv.do(t, http.MethodDelete, "/api/v1/posts/"+postID, bobToken, nil)
	if status != http.StatusNoContent {
		t.Fatalf("admin delete: status = %d, want 204", status)
	}

	status, _ = srv.do(t, http.MethodGet, "/api/v1/posts/"+postID, aliceToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("deleted post fetch: status = %d, want 404", status)
	}
}

func TestCommentFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	_, aliceToken := srv.register(t, "alice")
	bobID, bobToken := srv.register(t, "bob")

	status, body := srv.do(t, http.MethodPost, "/api/v1/posts", aliceToken, map[string]string{
		"title": "Post", "content": "body",
	})
	if status != http.StatusCreated {
		t.Fatalf("create post: status = %d", status)
	}
	postID := body["data"].(map[string]any)["id"].(string)

	status, body = srv.do(t, http.MethodPost, "/api/v1/posts/"+postID+"/comments", bobToken, map[string]string{
		"content": "nice one",
	})
	if status != http.StatusCreated {
		t.Fatalf("create comment: status = %d, body %v", status, body)
	}
	commentData := body["data"].(map[string]any)
	if commentData["author_id"] != bobID.String() {
		t.Fatalf("comment author = %v, want %s", commentData["author_id"], bobID)
	}
	commentID := commentData["id"].(string)

	status, body = srv.do(t, http.MethodGet, "/api/v1/posts/"+postID+"/comments", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list comments: status = %d", status)
	}
	if items := body["data"].([]any); len(items) != 1 {
		t.Fatalf("comment count = %d, want 1", len(items))
	}

	status, _ = srv.do(t, http.MethodDelete, "/api/v1/comments/"+commentID, aliceToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("non-owner comment delete: status = %d, want 403", status)
	}

	status, _ = srv.do(t, http.MethodDelete, "/api/v1/comments/"+commentID, bobToken, nil)
	if status != http.StatusNoContent {
		t.Fatalf("owner comment delete: status = %d, want 204", status)
	}
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.register(t, "alice")

	status, body := srv.do(t, http.MethodPost, "/api/v1/posts", token, map[string]string{"title": "  "})
	if status != http.StatusBadRequest {
		t.Fatalf("blank post: status = %d, want 400", status)
	}
	if code := errorCode(body); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %q, want VALIDATION_FAILED", code)
	}

	status, _ = srv.do(t, http.MethodGet, "/api/v1/posts/not-a-uuid", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad uuid: status = %d, want 400", status)
	}
}
