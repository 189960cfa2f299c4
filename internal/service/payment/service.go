package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/observability/telemetry"
	"github.com/seu-repo/payment-bridge/internal/ports"
)

const logSource = "StripeService"

var tracer = otel.Tracer("payment-bridge/payment")

// Config holds payment service configuration
type Config struct {
	// StoreCustomersInStripe attaches a Stripe customer to payment intents
	// of logged-in users, creating it on first use.
	StoreCustomersInStripe bool

	// LockTTL bounds how long a customer resolution may hold its lock.
	LockTTL time.Duration
}

// Service translates orders and customers into Stripe calls.
type Service struct {
	config    Config
	gateway   ports.PaymentGateway
	orders    ports.OrderRepository
	customers ports.CustomerRepository
	locker    ports.Locker
	log       *zap.Logger
}

// NewService creates a new payment service
func NewService(config Config, gateway ports.PaymentGateway, orders ports.OrderRepository, customers ports.CustomerRepository, locker ports.Locker, log *zap.Logger) *Service {
	if config.LockTTL <= 0 {
		config.LockTTL = 30 * time.Second
	}
	return &Service{
		config:    config,
		gateway:   gateway,
		orders:    orders,
		customers: customers,
		locker:    locker,
		log:       log.With(zap.String("source", logSource)),
	}
}

// CreatePaymentIntent creates a payment intent for order and returns its
// client secret. ok is false when Stripe answered without a secret.
func (s *Service) CreatePaymentIntent(ctx context.Context, order *domain.Order) (clientSecret string, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "payment.CreatePaymentIntent", trace.WithAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.code", order.Code),
		attribute.String("order.currency", string(order.CurrencyCode)),
	))
	defer span.End()

	rc := domain.RequestContextFrom(ctx)

	var customerID string
	if s.config.StoreCustomersInStripe && rc.Authenticated() {
		customerID, err = s.resolveCustomerID(ctx, order)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "resolve customer")
			return "", false, err
		}
	}

	params := domain.PaymentIntentParams{
		Amount:                  order.GatewayAmount(),
		Currency:                order.CurrencyCode.Lower(),
		CustomerID:              customerID,
		AutomaticPaymentMethods: true,
		Metadata: map[string]string{
			domain.MetadataChannelToken: rc.ChannelToken,
			domain.MetadataOrderID:      order.ID,
			domain.MetadataOrderCode:    order.Code,
		},
	}

	start := time.Now()
	pi, err := s.gateway.CreatePaymentIntent(ctx, params)
	telemetry.ObserveGatewayCall("create_payment_intent", time.Since(start).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create payment intent")
		return "", false, fmt.Errorf("create payment intent for order %s: %w", order.Code, err)
	}

	if pi.ClientSecret == "" {
		telemetry.MissingClientSecretTotal.Inc()
		s.log.Warn("Payment intent creation for order did not return client secret",
			zap.String("order_code", order.Code),
			zap.String("payment_intent_id", pi.ID),
		)
		return "", false, nil
	}

	return pi.ClientSecret, true, nil
}

// CreateRefund refunds amount (Stripe minor units) against a payment intent.
// Gateway failures are returned inside the result, never as an error.
func (s *Service) CreateRefund(ctx context.Context, paymentIntentID string, amount int64) domain.RefundResult {
	ctx, span := tracer.Start(ctx, "payment.CreateRefund", trace.WithAttributes(
		attribute.String("payment_intent.id", paymentIntentID),
		attribute.Int64("refund.amount", amount),
	))
	defer span.End()

	start := time.Now()
	refund, err := s.gateway.CreateRefund(ctx, paymentIntentID, amount)
	telemetry.ObserveGatewayCall("create_refund", time.Since(start).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create refund")
		s.log.Warn("Refund was not accepted by Stripe",
			zap.String("payment_intent_id", paymentIntentID),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return domain.RefundResult{Err: refundError(err)}
	}

	return domain.RefundResult{Refund: refund}
}

// ConstructEvent verifies a webhook payload against its signature header.
func (s *Service) ConstructEvent(payload []byte, signature string) (*domain.WebhookEvent, error) {
	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		telemetry.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		s.log.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, err
	}

	telemetry.WebhookEventsTotal.WithLabelValues(event.Type, "verified").Inc()
	s.log.Debug("Webhook event verified",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)
	return event, nil
}

// resolveCustomerID returns the Stripe customer id of the order's customer,
// finding or creating the remote record on first use. An empty id with a
// nil error means the order has no customer.
func (s *Service) resolveCustomerID(ctx context.Context, order *domain.Order) (string, error) {
	ctx, span := tracer.Start(ctx, "payment.resolveCustomerID")
	defer span.End()

	// The caller's order may not carry its customer relation.
	loaded, err := s.orders.FindByIDWithCustomer(ctx, order.ID)
	if err != nil {
		return "", fmt.Errorf("load order %s with customer: %w", order.ID, err)
	}
	if loaded == nil || loaded.Customer == nil {
		telemetry.CustomerResolutionsTotal.WithLabelValues("missing").Inc()
		s.log.Debug("No customer found for order", zap.String("order_id", order.ID))
		return "", nil
	}

	customer := loaded.Customer
	if id, ok := customer.CachedStripeID(); ok {
		telemetry.CustomerResolutionsTotal.WithLabelValues("cached").Inc()
		return id, nil
	}

	unlock, err := s.locker.Lock(ctx, customerLockKey(customer.ID), s.config.LockTTL)
	if err != nil {
		return "", fmt.Errorf("lock customer %s: %w", customer.ID, err)
	}
	defer unlock()

	// Another resolver may have finished while we waited for the lock.
	current, err := s.customers.FindByID(ctx, customer.ID)
	if err != nil {
		return "", fmt.Errorf("reload customer %s: %w", customer.ID, err)
	}
	if current != nil {
		if id, ok := current.CachedStripeID(); ok {
			telemetry.CustomerResolutionsTotal.WithLabelValues("cached").Inc()
			return id, nil
		}
		customer = current
	}

	stripeID, created, err := s.findOrCreateRemoteCustomer(ctx, customer)
	if err != nil {
		return "", err
	}

	stored, err := s.customers.SetStripeCustomerID(ctx, customer.ID, stripeID)
	if err != nil {
		return "", fmt.Errorf("store stripe customer id for customer %s: %w", customer.ID, err)
	}
	if !stored {
		// A cached id won the write; it is never overwritten.
		winner, err := s.customers.FindByID(ctx, customer.ID)
		if err != nil {
			return "", fmt.Errorf("reload customer %s after rejected write: %w", customer.ID, err)
		}
		if winner == nil {
			return "", fmt.Errorf("reload customer %s after rejected write: customer no longer exists", customer.ID)
		}
		if id, ok := winner.CachedStripeID(); ok {
			telemetry.CustomerResolutionsTotal.WithLabelValues("cached").Inc()
			return id, nil
		}
		s.log.Warn("Stripe customer id was neither stored nor cached",
			zap.String("customer_id", customer.ID),
			zap.String("stripe_customer_id", stripeID),
		)
		return stripeID, nil
	}
	customer.StripeCustomerID = &stripeID

	if created {
		telemetry.CustomerResolutionsTotal.WithLabelValues("created").Inc()
		s.log.Info("Created Stripe Customer record for customer",
			zap.String("customer_id", customer.ID),
			zap.String("stripe_customer_id", stripeID),
		)
	} else {
		telemetry.CustomerResolutionsTotal.WithLabelValues("found").Inc()
	}

	return stripeID, nil
}

// findOrCreateRemoteCustomer takes the first Stripe customer with the same
// email, or creates one.
func (s *Service) findOrCreateRemoteCustomer(ctx context.Context, customer *domain.Customer) (id string, created bool, err error) {
	start := time.Now()
	existing, err := s.gateway.ListCustomersByEmail(ctx, customer.EmailAddress)
	telemetry.ObserveGatewayCall("list_customers", time.Since(start).Seconds(), err)
	if err != nil {
		return "", false, fmt.Errorf("list stripe customers: %w", err)
	}
	if len(existing) > 0 {
		return existing[0].ID, false, nil
	}

	start = time.Now()
	remote, err := s.gateway.CreateCustomer(ctx, customer.EmailAddress, customer.FullName())
	telemetry.ObserveGatewayCall("create_customer", time.Since(start).Seconds(), err)
	if err != nil {
		return "", false, fmt.Errorf("create stripe customer: %w", err)
	}
	return remote.ID, true, nil
}

func customerLockKey(customerID string) string {
	return "stripe-customer:" + customerID
}

func refundError(err error) *domain.RefundError {
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		return &domain.RefundError{
			Type:       gwErr.Type,
			Code:       gwErr.Code,
			Message:    gwErr.Message,
			HTTPStatus: gwErr.HTTPStatus,
			RequestID:  gwErr.RequestID,
		}
	}
	return &domain.RefundError{Message: err.Error()}
}
