package domain

const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// PaymentEvent is a verified notification from the payment processor.
type PaymentEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

// TargetStatus maps an event type to the order status it drives, if any.
func (e PaymentEvent) TargetStatus() (OrderStatus, bool) {
	switch e.Type {
	case EventPaymentIntentSucceeded:
		return OrderConfirmed, true
	case EventPaymentIntentFailed:
		return OrderPaymentFailed, true
	}
	return "", false
}

type PaymentIntentRequest struct {
	Amount         int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

type PaymentIntent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
}
