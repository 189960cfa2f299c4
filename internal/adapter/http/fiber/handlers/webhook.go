package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/ports"
)

const StripeSignatureHeader = "Stripe-Signature"

type WebhookHandler struct {
	service ports.PaymentService
	log     *zap.Logger
}

func NewWebhookHandler(service ports.PaymentService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log,
	}
}

// HandleStripe verifies the raw body against the Stripe-Signature header.
// Verified events are acknowledged; dispatching them is left to consumers
// of the event log.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	// Body is reused by fasthttp after the handler returns.
	payload := append([]byte(nil), c.Body()...)

	event, err := h.service.ConstructEvent(payload, c.Get(StripeSignatureHeader))
	if err != nil {
		return err
	}

	h.log.Info("Stripe webhook received",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("object_id", event.ObjectID()),
		zap.String("order_code", event.Metadata()[domain.MetadataOrderCode]),
		zap.Bool("livemode", event.Livemode),
	)

	return c.JSON(fiber.Map{"received": true})
}
