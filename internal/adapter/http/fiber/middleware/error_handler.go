package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("request_id", RequestIDFrom(c)),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrWebhookVerification):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrLockNotAcquired):
		return fiber.StatusServiceUnavailable
	}

	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
