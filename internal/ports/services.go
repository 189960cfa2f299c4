package ports

import (
	"context"
	"time"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, order *domain.Order) (string, bool, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amount int64) domain.RefundResult
	ConstructEvent(payload []byte, signature string) (*domain.WebhookEvent, error)
}

// Locker provides mutual exclusion scoped to a key.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
	Ping() error
	Close() error
}

type TokenValidator interface {
	ValidateToken(token string) (domain.Principal, error)
}
