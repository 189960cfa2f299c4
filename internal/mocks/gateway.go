package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

// MockPaymentGateway is a mock implementation of PaymentGateway. Calls are
// counted per method so tests can assert which gateway calls were issued.
type MockPaymentGateway struct {
	CreatePaymentIntentFunc  func(ctx context.Context, params domain.PaymentIntentParams) (*domain.PaymentIntent, error)
	CreateRefundFunc         func(ctx context.Context, paymentIntentID string, amount int64) (*domain.Refund, error)
	ConstructEventFunc       func(payload []byte, signature string) (*domain.WebhookEvent, error)
	ListCustomersByEmailFunc func(ctx context.Context, email string) ([]domain.RemoteCustomer, error)
	CreateCustomerFunc       func(ctx context.Context, email, name string) (*domain.RemoteCustomer, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockPaymentGateway) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how many times method was invoked.
func (m *MockPaymentGateway) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockPaymentGateway) CreatePaymentIntent(ctx context.Context, params domain.PaymentIntentParams) (*domain.PaymentIntent, error) {
	m.record("CreatePaymentIntent")
	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, params)
	}
	return &domain.PaymentIntent{}, nil
}

func (m *MockPaymentGateway) CreateRefund(ctx context.Context, paymentIntentID string, amount int64) (*domain.Refund, error) {
	m.record("CreateRefund")
	if m.CreateRefundFunc != nil {
		return m.CreateRefundFunc(ctx, paymentIntentID, amount)
	}
	return &domain.Refund{}, nil
}

func (m *MockPaymentGateway) ConstructEvent(payload []byte, signature string) (*domain.WebhookEvent, error) {
	m.record("ConstructEvent")
	if m.ConstructEventFunc != nil {
		return m.ConstructEventFunc(payload, signature)
	}
	return &domain.WebhookEvent{}, nil
}

func (m *MockPaymentGateway) ListCustomersByEmail(ctx context.Context, email string) ([]domain.RemoteCustomer, error) {
	m.record("ListCustomersByEmail")
	if m.ListCustomersByEmailFunc != nil {
		return m.ListCustomersByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockPaymentGateway) CreateCustomer(ctx context.Context, email, name string) (*domain.RemoteCustomer, error) {
	m.record("CreateCustomer")
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, email, name)
	}
	return &domain.RemoteCustomer{}, nil
}
