package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
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

const tracerName = "github.com/dancehub/event-registration/internal/service"

var (
	ErrRoleRequired        = errors.New("role is required")
	ErrReservedRole        = errors.New("role is reserved for event staff")
	ErrNoProductsSelected  = errors.New("select at least one product")
	ErrInvalidQuantity     = fmt.Errorf("quantity must be a whole number between 1 and %d", domain.MaxSelectionQuantity)
	ErrAmountOverflow      = fmt.Errorf("%w: order amount out of range", ErrInvalidQuantity)
	ErrUnknownProduct      = errors.New("product does not belong to this event")
	ErrMixedCurrencies     = errors.New("selected products must share one currency")
	ErrIdempotencyKeyReuse = errors.New("idempotency key was used for another registration")
)

type Transactor interface {
	WithinTx(ctx context.Context, fn func(store repository.Store) error) error
}

type RegistrationOrderRepository interface {
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (domain.Order, error)
}

type LineItemRepository interface {
	FindLineItems(ctx context.Context, participantID uuid.UUID) ([]domain.ParticipantProduct, error)
}

// Registration is one attempt by an authenticated user to register for an
// event with a set of products.
type Registration struct {
	EventID        uuid.UUID
	UserID         uuid.UUID
	Role           string
	WSDCID         string
	WSDCLevel      string
	Country        string
	Age            *int
	PartnerName    string
	Selections     []domain.ProductSelection
	IdempotencyKey string
}

type RegistrationResult struct {
	ParticipantID    uuid.UUID                   `json:"participantId"`
	OrderID          uuid.UUID                   `json:"orderId"`
	SelectedProducts []domain.ParticipantProduct `json:"selectedProducts"`
	Total            int64                       `json:"total"`
	Currency         string                      `json:"currency"`
	Replayed         bool                        `json:"-"`
}

type RegistrationService struct {
	tx           Transactor
	orders       RegistrationOrderRepository
	participants LineItemRepository
	now          func() time.Time
}

func NewRegistrationService(tx Transactor, orders RegistrationOrderRepository, participants LineItemRepository) *RegistrationService {
	return &RegistrationService{
		tx:           tx,
		orders:       orders,
		participants: participants,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the participant, its line items and a pending order, and
// reserves inventory, all in one transaction. A repeated call with the same
// user and idempotency key returns the first result without writing.
func (s *RegistrationService) Register(ctx context.Context, reg Registration) (RegistrationResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "registration.register")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.id", reg.EventID.String()),
		attribute.String("user.id", reg.UserID.String()),
	)

	selections, err := normalizeSelections(reg.Selections)
	if err != nil {
		return RegistrationResult{}, err
	}
	if strings.TrimSpace(reg.Role) == "" {
		return RegistrationResult{}, invalid(ErrRoleRequired)
	}
	if domain.IsStaffRole(reg.Role) {
		return RegistrationResult{}, invalid(ErrReservedRole)
	}

	if reg.IdempotencyKey != "" {
		result, found, err := s.replay(ctx, reg)
		if err != nil {
			return RegistrationResult{}, err
		}
		if found {
			span.SetAttributes(attribute.Bool("registration.replayed", true))
			return result, nil
		}
	}

	var result RegistrationResult
	err = s.tx.WithinTx(ctx, func(store repository.Store) error {
		var txErr error
		result, txErr = s.register(ctx, store, reg, selections)
		return txErr
	})
	if err != nil {
		if reg.IdempotencyKey != "" && errors.Is(err, ErrDuplicateIdempotencyKey) {
			// A concurrent request with the same key committed first.
			replayed, found, replayErr := s.replay(ctx, reg)
			if replayErr == nil && found {
				return replayed, nil
			}
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")

		var validationErr *ValidationError
		var conflictErr *InventoryConflictError
		if errors.As(err, &validationErr) || errors.As(err, &conflictErr) {
			return RegistrationResult{}, err
		}
		return RegistrationResult{}, fmt.Errorf("%w: s.tx.WithinTx -> %w", ErrPersistence, err)
	}

	zap.L().Info("registration created",
		zap.String("participant_id", result.ParticipantID.String()),
		zap.String("order_id", result.OrderID.String()),
		zap.Int64("total", result.Total),
		zap.String("currency", result.Currency),
	)

	return result, nil
}

func (s *RegistrationService) register(ctx context.Context, store repository.Store, reg Registration, selections []domain.ProductSelection) (RegistrationResult, error) {
	participant, err := store.InsertParticipant(ctx, domain.Participant{
		EventID:     reg.EventID,
		UserID:      reg.UserID,
		Role:        reg.Role,
		Status:      domain.StatusForPartner(reg.PartnerName),
		WSDCID:      reg.WSDCID,
		WSDCLevel:   reg.WSDCLevel,
		Country:     reg.Country,
		Age:         reg.Age,
		PartnerName: reg.PartnerName,
	})
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("store.InsertParticipant -> %w", err)
	}

	ids := make([]uuid.UUID, len(selections))
	for i, sel := range selections {
		ids[i] = sel.ProductID
	}
	products, err := store.FindProducts(ctx, reg.EventID, ids)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("store.FindProducts -> %w", err)
	}

	byID := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, sel := range selections {
		if _, ok := byID[sel.ProductID]; !ok {
			return RegistrationResult{}, invalid(fmt.Errorf("%w: %s", ErrUnknownProduct, sel.ProductID))
		}
	}

	now := s.now()
	if err = s.checkAvailability(ctx, products, selections, now); err != nil {
		return RegistrationResult{}, err
	}

	currency := byID[selections[0].ProductID].Currency
	items := make([]domain.ParticipantProduct, len(selections))
	var total int64
	for i, sel := range selections {
		p := byID[sel.ProductID]
		if !strings.EqualFold(p.Currency, currency) {
			return RegistrationResult{}, invalid(ErrMixedCurrencies)
		}
		subtotal, ok := multiplyAmount(p.Price, sel.Quantity)
		if !ok {
			return RegistrationResult{}, invalid(ErrAmountOverflow)
		}
		items[i] = domain.ParticipantProduct{
			ParticipantID:      participant.ID,
			ProductID:          p.ID,
			ProductName:        p.Name,
			Quantity:           sel.Quantity,
			UnitPrice:          p.Price,
			Subtotal:           subtotal,
			PaymentStatus:      domain.LineItemPaymentPending,
			ConfirmationStatus: domain.LineItemUnconfirmed,
		}
		if total, ok = addAmount(total, subtotal); !ok {
			return RegistrationResult{}, invalid(ErrAmountOverflow)
		}
	}

	items, err = store.InsertLineItems(ctx, items)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("store.InsertLineItems -> %w", err)
	}

	order, err := store.InsertOrder(ctx, domain.Order{
		UserID:         reg.UserID,
		EventID:        reg.EventID,
		ParticipantID:  participant.ID,
		Total:          total,
		Currency:       currency,
		Status:         domain.OrderPending,
		IdempotencyKey: reg.IdempotencyKey,
	})
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("store.InsertOrder -> %w", err)
	}

	if err = s.reserve(ctx, store, byID, selections, now); err != nil {
		return RegistrationResult{}, err
	}

	return RegistrationResult{
		ParticipantID:    participant.ID,
		OrderID:          order.ID,
		SelectedProducts: items,
		Total:            total,
		Currency:         currency,
	}, nil
}

func (s *RegistrationService) checkAvailability(ctx context.Context, products []domain.Product, selections []domain.ProductSelection, now time.Time) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "inventory.check_availability")
	defer span.End()

	report := CheckAvailability(products, selections, now)
	span.SetAttributes(
		attribute.Int("inventory.requested_products", len(selections)),
		attribute.Bool("inventory.available", report.OK()),
	)
	if !report.OK() {
		span.SetStatus(codes.Error, "products unavailable")
		return &InventoryConflictError{Products: report.SoldOut()}
	}
	return nil
}

// reserve increments quantity_sold per product. Products are locked in id
// order so concurrent registrations touching the same rows cannot deadlock.
func (s *RegistrationService) reserve(ctx context.Context, store repository.Store, byID map[uuid.UUID]domain.Product, selections []domain.ProductSelection, now time.Time) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "inventory.reserve",
		trace.WithAttributes(attribute.Int("inventory.products", len(selections))),
	)
	defer span.End()

	ordered := make([]domain.ProductSelection, len(selections))
	copy(ordered, selections)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].ProductID[:], ordered[j].ProductID[:]) < 0
	})

	for _, sel := range ordered {
		err := store.ReserveInventory(ctx, sel.ProductID, sel.Quantity, now)
		if errors.Is(err, ErrInventoryConflict) {
			span.SetStatus(codes.Error, "reservation conflict")
			return &InventoryConflictError{Products: []string{byID[sel.ProductID].Name}}
		}
		if err != nil {
			return fmt.Errorf("store.ReserveInventory -> %w", err)
		}
	}
	return nil
}

func (s *RegistrationService) replay(ctx context.Context, reg Registration) (RegistrationResult, bool, error) {
	order, err := s.orders.FindByIdempotencyKey(ctx, reg.UserID, reg.IdempotencyKey)
	if errors.Is(err, ErrNotFound) {
		return RegistrationResult{}, false, nil
	}
	if err != nil {
		return RegistrationResult{}, false, fmt.Errorf("%w: s.orders.FindByIdempotencyKey -> %w", ErrPersistence, err)
	}
	if order.EventID != reg.EventID {
		return RegistrationResult{}, false, invalid(ErrIdempotencyKeyReuse)
	}

	items, err := s.participants.FindLineItems(ctx, order.ParticipantID)
	if err != nil {
		return RegistrationResult{}, false, fmt.Errorf("%w: s.participants.FindLineItems -> %w", ErrPersistence, err)
	}

	return RegistrationResult{
		ParticipantID:    order.ParticipantID,
		OrderID:          order.ID,
		SelectedProducts: items,
		Total:            order.Total,
		Currency:         order.Currency,
		Replayed:         true,
	}, true, nil
}

// normalizeSelections drops zero quantities and merges repeated products,
// keeping the order in which products were first selected.
func normalizeSelections(selections []domain.ProductSelection) ([]domain.ProductSelection, error) {
	merged := make([]domain.ProductSelection, 0, len(selections))
	index := make(map[uuid.UUID]int, len(selections))
	for _, sel := range selections {
		if sel.Quantity < 0 || sel.Quantity > domain.MaxSelectionQuantity {
			return nil, invalid(ErrInvalidQuantity)
		}
		if sel.Quantity == 0 {
			continue
		}
		if i, ok := index[sel.ProductID]; ok {
			// Both values are within bounds, so the sum cannot overflow.
			merged[i].Quantity += sel.Quantity
			if merged[i].Quantity > domain.MaxSelectionQuantity {
				return nil, invalid(ErrInvalidQuantity)
			}
			continue
		}
		index[sel.ProductID] = len(merged)
		merged = append(merged, sel)
	}
	if len(merged) == 0 {
		return nil, invalid(ErrNoProductsSelected)
	}
	return merged, nil
}

// multiplyAmount returns price*quantity in minor units, or false when the
// result does not fit in an int64 or an operand is negative.
func multiplyAmount(price int64, quantity int) (int64, bool) {
	if price < 0 || quantity < 0 {
		return 0, false
	}
	if price == 0 || quantity == 0 {
		return 0, true
	}
	if price > math.MaxInt64/int64(quantity) {
		return 0, false
	}
	return price * int64(quantity), true
}

func addAmount(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}
