package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

// MockPaymentService is a mock implementation of PaymentService interface
type MockPaymentService struct {
	CreatePaymentIntentFunc func(ctx context.Context, order *domain.Order) (string, bool, error)
	CreateRefundFunc        func(ctx context.Context, paymentIntentID string, amount int64) domain.RefundResult
	ConstructEventFunc      func(payload []byte, signature string) (*domain.WebhookEvent, error)
}

func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, order *domain.Order) (string, bool, error) {
	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, order)
	}
	return "", false, nil
}

func (m *MockPaymentService) CreateRefund(ctx context.Context, paymentIntentID string, amount int64) domain.RefundResult {
	if m.CreateRefundFunc != nil {
		return m.CreateRefundFunc(ctx, paymentIntentID, amount)
	}
	return domain.RefundResult{}
}

func (m *MockPaymentService) ConstructEvent(payload []byte, signature string) (*domain.WebhookEvent, error) {
	if m.ConstructEventFunc != nil {
		return m.ConstructEventFunc(payload, signature)
	}
	return &domain.WebhookEvent{}, nil
}

// MockLocker is a mock implementation of Locker. Without LockFunc it grants
// every lock immediately.
type MockLocker struct {
	LockFunc  func(ctx context.Context, key string, ttl time.Duration) (func(), error)
	PingFunc  func() error
	LockCalls []string

	mu sync.Mutex
}

func (m *MockLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	m.LockCalls = append(m.LockCalls, key)
	m.mu.Unlock()
	if m.LockFunc != nil {
		return m.LockFunc(ctx, key, ttl)
	}
	return func() {}, nil
}

func (m *MockLocker) Ping() error {
	if m.PingFunc != nil {
		return m.PingFunc()
	}
	return nil
}

func (m *MockLocker) Close() error {
	return nil
}

// MockTokenValidator is a mock implementation of TokenValidator
type MockTokenValidator struct {
	ValidateTokenFunc func(token string) (domain.Principal, error)
}

func (m *MockTokenValidator) ValidateToken(token string) (domain.Principal, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(token)
	}
	return domain.Principal{}, nil
}
