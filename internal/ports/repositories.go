package ports

import (
	"context"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

type OrderRepository interface {
	// FindByIDWithCustomer loads the order with its customer relation.
	FindByIDWithCustomer(ctx context.Context, id string) (*domain.Order, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	// SetStripeCustomerID stores the remote id without reloading the record.
	// It reports false when the customer already had an id cached.
	SetStripeCustomerID(ctx context.Context, customerID, stripeCustomerID string) (bool, error)
}
