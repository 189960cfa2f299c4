package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
	orders  ports.OrderRepository
	log     *zap.Logger
}

func NewPaymentHandler(service ports.PaymentService, orders ports.OrderRepository, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		orders:  orders,
		log:     log,
	}
}

type PaymentIntentResponse struct {
	ClientSecret *string `json:"clientSecret"`
}

type RefundRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
}

// CreatePaymentIntent answers with the client secret of a new payment intent
// for the order, or a null secret when Stripe returned none.
func (h *PaymentHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	rc := domain.RequestContextFrom(ctx)

	order, err := h.orders.FindByIDWithCustomer(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}
	// Orders of other callers are reported as missing.
	if !order.AccessibleBy(rc.UserID) {
		h.log.Warn("Payment intent requested for an order of another customer",
			zap.String("order_id", order.ID),
			zap.String("user_id", rc.UserID),
		)
		return domain.ErrOrderNotFound
	}

	secret, ok, err := h.service.CreatePaymentIntent(ctx, order)
	if err != nil {
		return err
	}

	var resp PaymentIntentResponse
	if ok {
		resp.ClientSecret = &secret
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) CreateRefund(c *fiber.Ctx) error {
	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.PaymentIntentID == "" || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "paymentIntentId and a positive amount are required"})
	}

	result := h.service.CreateRefund(c.UserContext(), req.PaymentIntentID, req.Amount)
	if !result.IsSuccess() {
		return c.Status(fiber.StatusPaymentRequired).JSON(result)
	}
	return c.JSON(result)
}
