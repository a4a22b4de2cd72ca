package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util/errorutil"
)

// CredentialVerifier checks a username/password pair against stored
// credentials. Implemented by the auth service.
type CredentialVerifier interface {
	Authenticate(ctx context.Context, username, password string) (Identity, error)
}

// Middleware resolves the caller identity before protected handlers run.
// A deployment mounts exactly one of Bearer or Basic.
type Middleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	verifier CredentialVerifier
	exclude  []*regexp.Regexp
	logger   *zap.Logger
}

// NewMiddleware constructs the middleware. Exclude patterns apply to the
// Basic mode only; they name paths that skip authentication entirely.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, verifier CredentialVerifier, excludePatterns []string, logger *zap.Logger) (*Middleware, error) {
	exclude := make([]*regexp.Regexp, 0, len(excludePatterns))
	for _, pattern := range excludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		exclude = append(exclude, re)
	}
	return &Middleware{
		tokens:   tokens,
		users:    users,
		verifier: verifier,
		exclude:  exclude,
		logger:   logger,
	}, nil
}

// Bearer authenticates via Authorization: Bearer <token>. The admin flag is
// loaded alongside the user so downstream policy checks receive resolved data.
func (m *Middleware) Bearer(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated(apperrors.CodeAuthHeaderMissing)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthenticated(apperrors.CodeAuthHeaderMalformed)
	}

	claims, err := m.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		m.logger.Warn("token rejected", zap.Error(err))
		switch {
		case errors.Is(err, ErrTokenExpired):
			return apperrors.NewUnauthenticated(apperrors.CodeTokenExpired)
		case errors.Is(err, ErrClaimsMissing):
			return apperrors.NewUnauthenticated(apperrors.CodeTokenClaimsMissing)
		default:
			return apperrors.NewUnauthenticated(apperrors.CodeTokenInvalid)
		}
	}

	user, err := m.users.GetByID(c.Context(), claims.SubjectID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated(apperrors.CodeIdentityNotFound)
		}
		return apperrors.NewInternalError(err)
	}

	StoreIdentity(c, Identity{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin})
	return c.Next()
}

// Basic authenticates via Authorization: Basic <base64(username:password)>.
// Paths matching the exclude patterns skip authentication.
func (m *Middleware) Basic(c *fiber.Ctx) error {
	path := c.Path()
	for _, re := range m.exclude {
		if re.MatchString(path) {
			return c.Next()
		}
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated(apperrors.CodeAuthHeaderMissing)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
		return apperrors.NewUnauthenticated(apperrors.CodeAuthHeaderMalformed)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(parts[1]))
	if err != nil {
		m.logger.Warn("basic auth header not decodable")
		return apperrors.NewUnauthenticated(apperrors.CodeAuthHeaderMalformed)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found || username == "" || password == "" {
		return apperrors.NewUnauthenticated(apperrors.CodeCredentialsMissing)
	}

	identity, err := m.verifier.Authenticate(c.Context(), username, password)
	if err != nil {
		return err
	}

	StoreIdentity(c, identity)
	return c.Next()
}

// RequireIdentity guards a route group against unauthenticated access when
// individual handlers expect a resolved identity.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthenticated(apperrors.CodeAuthHeaderMissing)
		}
		return c.Next()
	}
}
