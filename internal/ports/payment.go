package ports

import (
	"context"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

// PaymentGateway is the remote payment gateway capability used by the bridge.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, params domain.PaymentIntentParams) (*domain.PaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amount int64) (*domain.Refund, error)
	ConstructEvent(payload []byte, signature string) (*domain.WebhookEvent, error)
	ListCustomersByEmail(ctx context.Context, email string) ([]domain.RemoteCustomer, error)
	CreateCustomer(ctx context.Context, email, name string) (*domain.RemoteCustomer, error)
}
