package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const identityKey = "auth_identity"

// Identity represents the authenticated caller for the duration of a single
// request. The admin flag is resolved once at extraction time so later
// authorization checks never re-enter the persistence layer.
type Identity struct {
	ID       uuid.UUID
	Username string
	IsAdmin  bool
}

// StoreIdentity stashes the resolved identity in request-scoped storage.
// Called exactly once per request, by the auth middleware.
func StoreIdentity(c *fiber.Ctx, identity Identity) {
	c.Locals(identityKey, identity)
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}
