package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/ports"
	"github.com/seu-repo/payment-bridge/pkg/config"
)

// StripeGateway talks to Stripe through a client owned by the gateway.
// The package-level stripe.Key is never touched.
type StripeGateway struct {
	client        *client.API
	webhookSecret string
	eventOptions  webhook.ConstructEventOptions
	log           *zap.Logger
}

func NewStripeGateway(cfg config.StripeConfig, log *zap.Logger) ports.PaymentGateway {
	var backends *stripe.Backends
	if cfg.APIBaseURL != "" {
		backends = NewBackends(cfg.APIBaseURL, log)
	}
	return newStripeGateway(cfg, backends, log)
}

func newStripeGateway(cfg config.StripeConfig, backends *stripe.Backends, log *zap.Logger) *StripeGateway {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, backends)

	return &StripeGateway{
		client:        sc,
		webhookSecret: cfg.WebhookSecret,
		eventOptions: webhook.ConstructEventOptions{
			Tolerance:                webhook.DefaultTolerance,
			IgnoreAPIVersionMismatch: !cfg.StrictAPIVersion,
		},
		log: log,
	}
}

// NewBackends points every Stripe backend at baseURL with network retries
// disabled.
func NewBackends(baseURL string, log *zap.Logger) *stripe.Backends {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(baseURL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &leveledLogger{log: log.Sugar()},
	})
	return &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, p domain.PaymentIntentParams) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	if p.AutomaticPaymentMethods {
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		}
	}
	if len(p.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			params.Metadata[k] = v
		}
	}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", mapStripeError(err))
	}

	g.log.Debug("Payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, paymentIntentID string, amount int64) (*domain.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(amount),
	}
	params.Context = ctx

	r, err := g.client.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create refund: %w", mapStripeError(err))
	}

	refund := &domain.Refund{
		ID:              r.ID,
		PaymentIntentID: paymentIntentID,
		Amount:          r.Amount,
		Currency:        string(r.Currency),
		Status:          string(r.Status),
	}
	if r.PaymentIntent != nil && r.PaymentIntent.ID != "" {
		refund.PaymentIntentID = r.PaymentIntent.ID
	}
	return refund, nil
}

func (g *StripeGateway) ConstructEvent(payload []byte, signature string) (*domain.WebhookEvent, error) {
	if signature == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrWebhookVerification, domain.ErrMissingSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, g.eventOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWebhookVerification, err)
	}

	out := &domain.WebhookEvent{
		ID:         event.ID,
		Type:       string(event.Type),
		APIVersion: event.APIVersion,
		Livemode:   event.Livemode,
		Created:    time.Unix(event.Created, 0).UTC(),
	}
	if event.Data != nil {
		out.Object = event.Data.Object
		out.Raw = event.Data.Raw
	}
	return out, nil
}

func (g *StripeGateway) ListCustomersByEmail(ctx context.Context, email string) ([]domain.RemoteCustomer, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(10)
	params.Single = true

	var customers []domain.RemoteCustomer
	iter := g.client.Customers.List(params)
	for iter.Next() {
		c := iter.Customer()
		customers = append(customers, domain.RemoteCustomer{
			ID:    c.ID,
			Email: c.Email,
			Name:  c.Name,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list customers: %w", mapStripeError(err))
	}
	return customers, nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (*domain.RemoteCustomer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	c, err := g.client.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create customer: %w", mapStripeError(err))
	}

	return &domain.RemoteCustomer{
		ID:    c.ID,
		Email: c.Email,
		Name:  c.Name,
	}, nil
}

// mapStripeError converts stripe-go errors into domain.GatewayError so that
// callers above this package never import stripe-go.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &domain.GatewayError{
			Type:       string(stripeErr.Type),
			Code:       string(stripeErr.Code),
			Message:    stripeErr.Msg,
			HTTPStatus: stripeErr.HTTPStatusCode,
			RequestID:  stripeErr.RequestID,
			Err:        err,
		}
	}
	return &domain.GatewayError{Message: err.Error(), Err: err}
}

// leveledLogger routes stripe-go's internal logging into zap.
type leveledLogger struct {
	log *zap.SugaredLogger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) { l.log.Debugf(format, v...) }
func (l *leveledLogger) Infof(format string, v ...interface{})  { l.log.Debugf(format, v...) }
func (l *leveledLogger) Warnf(format string, v ...interface{})  { l.log.Warnf(format, v...) }
func (l *leveledLogger) Errorf(format string, v ...interface{}) { l.log.Errorf(format, v...) }
