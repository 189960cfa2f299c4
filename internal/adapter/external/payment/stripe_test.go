package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/pkg/config"
)

const testWebhookSecret = "whsec_test_secret"

type recordedRequest struct {
	Method string
	Path   string
	Form   map[string]string
}

// stripeStub is a minimal stand-in for the Stripe HTTP API.
type stripeStub struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newStripeStub(t *testing.T) (*stripeStub, *httptest.Server) {
	stub := &stripeStub{routes: make(map[string]func(w http.ResponseWriter, r *http.Request))}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form := make(map[string]string)
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}
		stub.mu.Lock()
		stub.requests = append(stub.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Form: form})
		stub.mu.Unlock()

		handler, ok := stub.routes[r.Method+" "+r.URL.Path]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"error": map[string]interface{}{"type": "invalid_request_error", "message": "unrecognized request URL"},
			})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *stripeStub) last() recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestGateway(t *testing.T, srv *httptest.Server) *StripeGateway {
	t.Helper()
	cfg := config.StripeConfig{SecretKey: "sk_test_123", WebhookSecret: testWebhookSecret}
	return newStripeGateway(cfg, NewBackends(srv.URL, zap.NewNop()), zap.NewNop())
}

func TestStripeGateway_CreatePaymentIntent(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["POST /v1/payment_intents"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":            "pi_123",
			"object":        "payment_intent",
			"amount":        1999,
			"currency":      "usd",
			"client_secret": "pi_123_secret_abc",
			"status":        "requires_payment_method",
		})
	}
	gw := newTestGateway(t, srv)

	pi, err := gw.CreatePaymentIntent(context.Background(), domain.PaymentIntentParams{
		Amount:                  1999,
		Currency:                "usd",
		CustomerID:              "cus_42",
		AutomaticPaymentMethods: true,
		Metadata: map[string]string{
			domain.MetadataChannelToken: "web",
			domain.MetadataOrderID:      "order-1",
			domain.MetadataOrderCode:    "ABC123",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", pi.ID)
	assert.Equal(t, "pi_123_secret_abc", pi.ClientSecret)

	req := stub.last()
	assert.Equal(t, "1999", req.Form["amount"])
	assert.Equal(t, "usd", req.Form["currency"])
	assert.Equal(t, "cus_42", req.Form["customer"])
	assert.Equal(t, "true", req.Form["automatic_payment_methods[enabled]"])
	assert.Equal(t, "web", req.Form["metadata[channelToken]"])
	assert.Equal(t, "order-1", req.Form["metadata[orderId]"])
	assert.Equal(t, "ABC123", req.Form["metadata[orderCode]"])
}

func TestStripeGateway_CreatePaymentIntent_NoCustomer(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["POST /v1/payment_intents"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "pi_1", "object": "payment_intent"})
	}
	gw := newTestGateway(t, srv)

	pi, err := gw.CreatePaymentIntent(context.Background(), domain.PaymentIntentParams{Amount: 1000, Currency: "jpy"})
	require.NoError(t, err)
	assert.Empty(t, pi.ClientSecret)

	_, hasCustomer := stub.last().Form["customer"]
	assert.False(t, hasCustomer)
}

func TestStripeGateway_CreatePaymentIntent_Error(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["POST /v1/payment_intents"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error": map[string]interface{}{
				"type":    "invalid_request_error",
				"message": "Invalid API Key provided",
			},
		})
	}
	gw := newTestGateway(t, srv)

	_, err := gw.CreatePaymentIntent(context.Background(), domain.PaymentIntentParams{Amount: 100, Currency: "usd"})
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusUnauthorized, gwErr.HTTPStatus)
	assert.Equal(t, "Invalid API Key provided", gwErr.Message)
}

func TestStripeGateway_CreateRefund(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["POST /v1/refunds"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":             "re_1",
			"object":         "refund",
			"amount":         500,
			"currency":       "usd",
			"status":         "succeeded",
			"payment_intent": "pi_123",
		})
	}
	gw := newTestGateway(t, srv)

	refund, err := gw.CreateRefund(context.Background(), "pi_123", 500)
	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, int64(500), refund.Amount)
	assert.Equal(t, "succeeded", refund.Status)
	assert.Equal(t, "pi_123", refund.PaymentIntentID)

	req := stub.last()
	assert.Equal(t, "pi_123", req.Form["payment_intent"])
	assert.Equal(t, "500", req.Form["amount"])
}

func TestStripeGateway_CreateRefund_GatewayError(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["POST /v1/refunds"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]interface{}{
				"type":    "invalid_request_error",
				"code":    "charge_already_refunded",
				"message": "Charge has already been refunded.",
			},
		})
	}
	gw := newTestGateway(t, srv)

	_, err := gw.CreateRefund(context.Background(), "pi_123", 500)
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "charge_already_refunded", gwErr.Code)
	assert.Equal(t, "invalid_request_error", gwErr.Type)
}

func TestStripeGateway_ListCustomersByEmail(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["GET /v1/customers"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"object":   "list",
			"url":      "/v1/customers",
			"has_more": false,
			"data": []map[string]interface{}{
				{"id": "cus_first", "object": "customer", "email": "a@example.com", "name": "A One"},
				{"id": "cus_second", "object": "customer", "email": "a@example.com", "name": "A Two"},
			},
		})
	}
	gw := newTestGateway(t, srv)

	customers, err := gw.ListCustomersByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "cus_first", customers[0].ID)
	assert.Equal(t, "cus_second", customers[1].ID)
	assert.Equal(t, "a@example.com", stub.last().Form["email"])
}

func TestStripeGateway_ListCustomersByEmail_Empty(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["GET /v1/customers"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"object": "list", "url": "/v1/customers", "has_more": false, "data": []interface{}{},
		})
	}
	gw := newTestGateway(t, srv)

	customers, err := gw.ListCustomersByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestStripeGateway_CreateCustomer(t *testing.T) {
	stub, srv := newStripeStub(t)
	stub.routes["POST /v1/customers"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id": "cus_new", "object": "customer", "email": r.Form.Get("email"), "name": r.Form.Get("name"),
		})
	}
	gw := newTestGateway(t, srv)

	c, err := gw.CreateCustomer(context.Background(), "new@example.com", "New Person")
	require.NoError(t, err)
	assert.Equal(t, "cus_new", c.ID)
	assert.Equal(t, "new@example.com", stub.last().Form["email"])
	assert.Equal(t, "New Person", stub.last().Form["name"])
}

func eventPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_1",
		"object":      "event",
		"type":        "payment_intent.succeeded",
		"api_version": stripe.APIVersion,
		"created":     1700000000,
		"livemode":    false,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       "pi_123",
				"object":   "payment_intent",
				"amount":   1999,
				"metadata": map[string]string{"orderId": "order-1", "orderCode": "ABC123"},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestStripeGateway_ConstructEvent_Valid(t *testing.T) {
	gw := newStripeGateway(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret}, nil, zap.NewNop())
	payload := eventPayload(t)

	event, err := gw.ConstructEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "payment_intent.succeeded", event.Type)
	assert.Equal(t, "pi_123", event.ObjectID())
	assert.Equal(t, "order-1", event.Metadata()["orderId"])
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.Created)
}

func TestStripeGateway_ConstructEvent_TamperedPayload(t *testing.T) {
	gw := newStripeGateway(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret}, nil, zap.NewNop())
	payload := eventPayload(t)
	header := sign(payload, testWebhookSecret)

	tampered := []byte(string(payload[:len(payload)-1]) + ` `)
	tampered = append(tampered, '}')

	_, err := gw.ConstructEvent(tampered, header)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrWebhookVerification))
}

func TestStripeGateway_ConstructEvent_WrongSecret(t *testing.T) {
	gw := newStripeGateway(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret}, nil, zap.NewNop())
	payload := eventPayload(t)

	_, err := gw.ConstructEvent(payload, sign(payload, "whsec_other"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrWebhookVerification))
}

func TestStripeGateway_ConstructEvent_MissingSignature(t *testing.T) {
	gw := newStripeGateway(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret}, nil, zap.NewNop())

	_, err := gw.ConstructEvent(eventPayload(t), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrWebhookVerification))
	assert.True(t, errors.Is(err, domain.ErrMissingSignature))
}

func TestStripeGateway_ConstructEvent_APIVersionMismatch(t *testing.T) {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(eventPayload(t), &body))
	body["api_version"] = "2020-08-27"
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	defaults := newStripeGateway(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret}, nil, zap.NewNop())
	event, err := defaults.ConstructEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "2020-08-27", event.APIVersion)

	strict := newStripeGateway(config.StripeConfig{WebhookSecret: testWebhookSecret, StrictAPIVersion: true}, nil, zap.NewNop())
	_, err = strict.ConstructEvent(payload, sign(payload, testWebhookSecret))
	assert.True(t, errors.Is(err, domain.ErrWebhookVerification), fmt.Sprintf("unexpected error: %v", err))
}

func TestStripeGateway_ConstructEvent_NewerAPIVersionWithDefaultConfig(t *testing.T) {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(eventPayload(t), &body))
	body["api_version"] = "2024-06-20"
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	gw := newStripeGateway(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret}, nil, zap.NewNop())
	event, err := gw.ConstructEvent(payload, sign(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "2024-06-20", event.APIVersion)
}
