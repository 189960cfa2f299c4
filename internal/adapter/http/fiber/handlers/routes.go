package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/payment-bridge/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/payment-bridge/internal/domain"
)

// RegisterRoutes mounts the webhook endpoint at the root and the payment
// API under /api/v1. requestContext runs only on the API group. Refunds are
// restricted to back-office and service tokens.
func RegisterRoutes(app fiber.Router, payments *PaymentHandler, webhooks *WebhookHandler, requestContext fiber.Handler) {
	app.Post("/webhooks/stripe", webhooks.HandleStripe)

	v1 := app.Group("/api/v1", requestContext)
	v1.Post("/orders/:id/payment-intent", payments.CreatePaymentIntent)
	v1.Post("/refunds", middleware.RequireRole(payments.log, domain.RoleAdmin, domain.RoleService), payments.CreateRefund)
}
