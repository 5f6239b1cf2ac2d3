package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/auth"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidArgument(name+" must be a positive integer", map[string]any{name: raw})
	}
	return id, nil
}

func callerIdentity(c *fiber.Ctx) (domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("authentication required")
	}
	return identity, nil
}
