package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// RequireProfileType ensures the caller has one of the allowed profile types.
func RequireProfileType(allowed ...domain.ProfileType) fiber.Handler {
	allowedSet := make(map[domain.ProfileType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Type]; !exists {
			return apperrors.NewForbidden(string(identity.Type) + " profiles cannot perform this action")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures an identity was resolved.
func RequireAuthenticated() fiber.Handler {
	return RequireProfileType()
}
