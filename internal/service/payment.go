package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/repository"
)

var (
	ErrInvalidSignature  = errors.New("invalid payment event signature")
	ErrOrderNotPayable   = errors.New("order is not awaiting payment")
	ErrMissingIntentID   = errors.New("payment event carries no payment intent id")
	ErrInvalidTransition = domain.ErrInvalidTransition
)

type PaymentGateway interface {
	ParseEvent(payload []byte, signatureHeader string) (domain.PaymentEvent, error)
	CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (domain.PaymentIntent, error)
}

type EventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event domain.OrderStatusChanged) error
}

type PaymentOrderRepository interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (domain.Order, error)
	BindPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
}

type ReconcileOutcome string

const (
	OutcomeApplied        ReconcileOutcome = "applied"
	OutcomeAlreadyApplied ReconcileOutcome = "already_applied"
	OutcomeIgnored        ReconcileOutcome = "ignored"
)

type PaymentService struct {
	gateway   PaymentGateway
	tx        Transactor
	orders    PaymentOrderRepository
	publisher EventPublisher
	now       func() time.Time
}

func NewPaymentService(gateway PaymentGateway, tx Transactor, orders PaymentOrderRepository, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		gateway:   gateway,
		tx:        tx,
		orders:    orders,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// VerifyEvent authenticates a raw webhook delivery.
func (s *PaymentService) VerifyEvent(payload []byte, signatureHeader string) (domain.PaymentEvent, error) {
	if signatureHeader == "" {
		return domain.PaymentEvent{}, fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}
	event, err := s.gateway.ParseEvent(payload, signatureHeader)
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return event, nil
}

// Reconcile moves the order matching the event's payment intent to the
// status the event reports. Same-status deliveries are no-ops and unknown
// event types are ignored.
func (s *PaymentService) Reconcile(ctx context.Context, event domain.PaymentEvent) (ReconcileOutcome, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "payment.reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.event_id", event.ID),
		attribute.String("payment.event_type", event.Type),
		attribute.String("payment.intent_id", event.PaymentIntentID),
	)

	target, ok := event.TargetStatus()
	if !ok {
		return OutcomeIgnored, nil
	}
	if event.PaymentIntentID == "" {
		return OutcomeIgnored, ErrMissingIntentID
	}

	order, err := s.orders.FindByPaymentIntentID(ctx, event.PaymentIntentID)
	if err != nil {
		span.RecordError(err)
		return OutcomeIgnored, fmt.Errorf("s.orders.FindByPaymentIntentID -> %w", err)
	}
	span.SetAttributes(attribute.String("order.id", order.ID.String()))

	changed, err := order.Transition(target)
	if err != nil {
		span.SetStatus(codes.Error, "transition rejected")
		return OutcomeIgnored, err
	}
	if !changed {
		return OutcomeAlreadyApplied, nil
	}

	err = s.tx.WithinTx(ctx, func(store repository.Store) error {
		return applyTransition(ctx, store, order, target)
	})
	if errors.Is(err, repository.ErrStatusChanged) {
		// Another delivery moved the order first; recheck against its new status.
		current, findErr := s.orders.FindByID(ctx, order.ID)
		if findErr == nil && current.Status == target {
			return OutcomeAlreadyApplied, nil
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		return OutcomeIgnored, fmt.Errorf("s.tx.WithinTx -> %w", err)
	}

	s.publish(ctx, domain.OrderStatusChanged{
		OrderID:         order.ID,
		EventID:         order.EventID,
		ParticipantID:   order.ParticipantID,
		UserID:          order.UserID,
		From:            order.Status,
		To:              target,
		PaymentIntentID: event.PaymentIntentID,
		OccurredAt:      s.now(),
	})

	return OutcomeApplied, nil
}

func applyTransition(ctx context.Context, store repository.Store, order domain.Order, target domain.OrderStatus) error {
	if err := store.CompareAndSetOrderStatus(ctx, order.ID, order.Status, target); err != nil {
		return fmt.Errorf("store.CompareAndSetOrderStatus -> %w", err)
	}

	switch target {
	case domain.OrderConfirmed:
		err := store.UpdateLineItemStatuses(ctx, order.ParticipantID, domain.LineItemPaymentPaid, domain.LineItemConfirmed)
		if err != nil {
			return fmt.Errorf("store.UpdateLineItemStatuses -> %w", err)
		}
		if err = store.UpdateParticipantStatus(ctx, order.ParticipantID, domain.ParticipantConfirmed); err != nil {
			return fmt.Errorf("store.UpdateParticipantStatus -> %w", err)
		}
	case domain.OrderPaymentFailed:
		if err := store.UpdateLineItemStatuses(ctx, order.ParticipantID, domain.LineItemPaymentFailed, ""); err != nil {
			return fmt.Errorf("store.UpdateLineItemStatuses -> %w", err)
		}
	}
	return nil
}

func (s *PaymentService) publish(ctx context.Context, event domain.OrderStatusChanged) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		zap.L().Error("failed to publish order status change",
			zap.String("order_id", event.OrderID.String()),
			zap.String("status", string(event.To)),
			zap.Error(err),
		)
	}
}

// CreatePaymentIntent opens a card payment for a pending order owned by
// userID and binds the intent to the order. Repeated calls reuse the intent
// because the processor is keyed by the order id.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderID uuid.UUID) (domain.PaymentIntent, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "payment.create_intent",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("order.id", orderID.String())),
	)
	defer span.End()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("s.orders.FindByID -> %w", err)
	}
	if order.UserID != userID {
		return domain.PaymentIntent{}, ErrNotOwner
	}
	if order.Status != domain.OrderPending || order.Total <= 0 {
		return domain.PaymentIntent{}, ErrOrderNotPayable
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, domain.PaymentIntentRequest{
		Amount:         order.Total,
		Currency:       strings.ToLower(order.Currency),
		IdempotencyKey: order.ID.String(),
		Metadata: map[string]string{
			"order_id":       order.ID.String(),
			"participant_id": order.ParticipantID.String(),
			"event_id":       order.EventID.String(),
		},
	})
	if err != nil {
		span.RecordError(err)
		return domain.PaymentIntent{}, fmt.Errorf("s.gateway.CreatePaymentIntent -> %w", err)
	}

	if err = s.orders.BindPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("s.orders.BindPaymentIntent -> %w", err)
	}

	return intent, nil
}
