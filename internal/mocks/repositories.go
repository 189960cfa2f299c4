package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	FindByIDWithCustomerFunc func(ctx context.Context, id string) (*domain.Order, error)
}

func (m *MockOrderRepository) FindByIDWithCustomer(ctx context.Context, id string) (*domain.Order, error) {
	if m.FindByIDWithCustomerFunc != nil {
		return m.FindByIDWithCustomerFunc(ctx, id)
	}
	return nil, nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	FindByIDFunc             func(ctx context.Context, id string) (*domain.Customer, error)
	SetStripeCustomerIDFunc  func(ctx context.Context, customerID, stripeCustomerID string) (bool, error)
	SetStripeCustomerIDCalls int

	mu sync.Mutex
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCustomerRepository) SetStripeCustomerID(ctx context.Context, customerID, stripeCustomerID string) (bool, error) {
	m.mu.Lock()
	m.SetStripeCustomerIDCalls++
	m.mu.Unlock()
	if m.SetStripeCustomerIDFunc != nil {
		return m.SetStripeCustomerIDFunc(ctx, customerID, stripeCustomerID)
	}
	return true, nil
}
