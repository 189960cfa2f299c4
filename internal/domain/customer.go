package domain

import (
	"strings"
	"time"
)

type Customer struct {
	ID           string `json:"id" gorm:"primaryKey"`
	EmailAddress string `json:"email_address" gorm:"index"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	// UserID is the storefront account that owns this customer. Guest
	// customers have none.
	UserID *string `json:"user_id,omitempty" gorm:"index"`
	// StripeCustomerID is written once, when the remote customer is resolved.
	// Customers sharing an email may share the remote id.
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty" gorm:"column:stripe_customer_id;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// FullName is the name sent to Stripe when a remote customer is created.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CachedStripeID returns the cached remote id, if any.
func (c *Customer) CachedStripeID() (string, bool) {
	if c.StripeCustomerID == nil || *c.StripeCustomerID == "" {
		return "", false
	}
	return *c.StripeCustomerID, true
}

// RemoteCustomer is a customer record as held by the payment gateway.
type RemoteCustomer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
