package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrWebhookVerification = errors.New("webhook verification failed")
	ErrMissingSignature    = errors.New("missing webhook signature")
	ErrLockNotAcquired     = errors.New("lock not acquired")
)

// GatewayError is the gateway-neutral form of an error reported by Stripe.
type GatewayError struct {
	Type       string
	Code       string
	Message    string
	HTTPStatus int
	RequestID  string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway error (%s/%s): %s", e.Type, e.Code, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("gateway error (%s): %s", e.Type, e.Message)
	}
	return "gateway error: " + e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
