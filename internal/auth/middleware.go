package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// IdentityResolver turns a request into the caller's identity.
type IdentityResolver interface {
	Resolve(c *fiber.Ctx) (domain.Identity, error)
}

// ProfileLookup loads the profile behind a token.
type ProfileLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
}

// AuthMiddleware validates bearer tokens and loads the caller's profile.
type AuthMiddleware struct {
	tokens   *TokenManager
	profiles ProfileLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, profiles ProfileLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, profiles: profiles}
}

// Resolve implements IdentityResolver. The profile type is taken from the
// store rather than the token so a stale token cannot change roles.
func (m *AuthMiddleware) Resolve(c *fiber.Ctx) (domain.Identity, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return domain.Identity{}, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Identity{}, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Identity{}, apperrors.NewUnauthorized("invalid token")
	}

	profile, err := m.profiles.GetByID(c.UserContext(), claims.ProfileID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return domain.Identity{}, apperrors.NewUnauthorized("profile not found")
		}
		return domain.Identity{}, apperrors.FromStore(err)
	}
	return domain.Identity{ProfileID: profile.ID, Type: profile.Type}, nil
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.Resolve(c)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
