package domain

import (
	"time"
)

// Order is owned by the commerce system; the bridge only reads it.
// TotalWithTax is stored in minor units at a fixed x100 scale regardless
// of the currency.
type Order struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	Code         string       `json:"code" gorm:"uniqueIndex"`
	CurrencyCode CurrencyCode `json:"currency_code" gorm:"type:varchar(3)"`
	TotalWithTax int64        `json:"total_with_tax"`
	CustomerID   *string      `json:"customer_id,omitempty" gorm:"index"`
	Customer     *Customer    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// AccessibleBy reports whether userID may pay for the order. Orders of
// registered customers belong to their user; guest orders only to
// anonymous callers.
func (o *Order) AccessibleBy(userID string) bool {
	owner := ""
	if o.Customer != nil && o.Customer.UserID != nil {
		owner = *o.Customer.UserID
	}
	return owner == userID
}

// GatewayAmount returns the order total in Stripe's smallest-unit convention.
func (o *Order) GatewayAmount() int64 {
	return GatewayAmount(o.TotalWithTax, o.CurrencyCode)
}
