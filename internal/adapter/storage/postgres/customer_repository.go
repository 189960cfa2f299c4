package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/ports"
)

type CustomerRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCustomerRepository(db *gorm.DB, log *zap.Logger) ports.CustomerRepository {
	return &CustomerRepository{
		db:  db,
		log: log,
	}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// SetStripeCustomerID writes the single column, skipping hooks and the
// updated_at bump. The IS NULL guard keeps an already cached id intact.
func (r *CustomerRepository) SetStripeCustomerID(ctx context.Context, customerID, stripeCustomerID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ? AND (stripe_customer_id IS NULL OR stripe_customer_id = '')", customerID).
		UpdateColumn("stripe_customer_id", stripeCustomerID)
	if res.Error != nil {
		return false, res.Error
	}

	if res.RowsAffected == 0 {
		r.log.Debug("Stripe customer id already cached",
			zap.String("customer_id", customerID),
		)
		return false, nil
	}
	return true, nil
}
