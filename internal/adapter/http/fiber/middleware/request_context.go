package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/ports"
)

const ChannelTokenHeader = "X-Channel-Token"

// RequestContext attaches a domain.RequestContext to the request's user
// context. The bearer token is optional: anonymous requests pass through,
// but a present and invalid token is rejected.
func RequestContext(validator ports.TokenValidator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := domain.RequestContext{
			ChannelToken: c.Get(ChannelTokenHeader),
		}

		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
			}

			principal, err := validator.ValidateToken(parts[1])
			if err != nil {
				log.Debug("Rejected bearer token", zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
			}
			rc.UserID = principal.UserID
			rc.Role = principal.Role
		}

		c.SetUserContext(domain.WithRequestContext(c.UserContext(), rc))
		return c.Next()
	}
}

// RequireRole must run after RequestContext. Anonymous callers get 401,
// authenticated callers without one of roles get 403.
func RequireRole(log *zap.Logger, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := domain.RequestContextFrom(c.UserContext())
		if !rc.Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		if !rc.HasRole(roles...) {
			log.Warn("Caller lacks role for route",
				zap.String("user_id", rc.UserID),
				zap.String("path", c.Path()),
				zap.String("request_id", RequestIDFrom(c)),
			)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return c.Next()
	}
}
