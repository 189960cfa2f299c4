package domain

// PaymentIntentParams is the request sent to the gateway for one payment attempt.
type PaymentIntentParams struct {
	Amount                  int64
	Currency                string
	CustomerID              string // empty when no remote customer is attached
	AutomaticPaymentMethods bool
	Metadata                map[string]string
}

// PaymentIntent represents a payment intent for client-side confirmation.
// It is never persisted.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Refund represents a refund accepted by the gateway.
type Refund struct {
	ID              string `json:"id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

// RefundError carries a gateway-reported refund failure.
type RefundError struct {
	Type       string `json:"type,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *RefundError) Error() string {
	if e.Code != "" {
		return "refund failed: " + e.Code + ": " + e.Message
	}
	return "refund failed: " + e.Message
}

// RefundResult holds exactly one of Refund or Err. Refund failures are
// returned as values so callers branch on the result instead of handling
// an error.
type RefundResult struct {
	Refund *Refund      `json:"refund,omitempty"`
	Err    *RefundError `json:"error,omitempty"`
}

func (r RefundResult) IsSuccess() bool {
	return r.Err == nil && r.Refund != nil
}

// Metadata keys attached to every payment intent.
const (
	MetadataChannelToken = "channelToken"
	MetadataOrderID      = "orderId"
	MetadataOrderCode    = "orderCode"
)
