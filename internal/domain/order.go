package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderConfirmed     OrderStatus = "confirmed"
	OrderPaymentFailed OrderStatus = "payment_failed"
)

// orderTransitions lists, for each status, the statuses it may move to.
// A failed payment can still be retried on the same intent and succeed.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:       {OrderConfirmed, OrderPaymentFailed},
	OrderPaymentFailed: {OrderConfirmed},
	OrderConfirmed:     {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Staying in the same status is not a transition and returns false.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the payment-tracking record of a registration.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	EventID         uuid.UUID   `json:"event_id"`
	ParticipantID   uuid.UUID   `json:"participant_id"`
	Total           int64       `json:"total"`
	Currency        string      `json:"currency"`
	Status          OrderStatus `json:"status"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	IdempotencyKey  string      `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Transition validates a move to next. It returns changed=false without error
// when the order already has that status, so duplicate deliveries are no-ops.
func (o Order) Transition(next OrderStatus) (changed bool, err error) {
	if !next.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	if o.Status == next {
		return false, nil
	}
	if !o.Status.CanTransitionTo(next) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	return true, nil
}

// OrderStatusChanged is emitted once per applied order transition.
type OrderStatusChanged struct {
	OrderID         uuid.UUID   `json:"order_id"`
	EventID         uuid.UUID   `json:"event_id"`
	ParticipantID   uuid.UUID   `json:"participant_id"`
	UserID          uuid.UUID   `json:"user_id"`
	From            OrderStatus `json:"from"`
	To              OrderStatus `json:"to"`
	PaymentIntentID string      `json:"payment_intent_id"`
	OccurredAt      time.Time   `json:"occurred_at"`
}
