package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/repository/dao"
)

var (
	ErrNotFound                = dao.ErrNotFound
	ErrInventoryConflict       = dao.ErrInventoryConflict
	ErrQuantityBelowSold       = dao.ErrQuantityBelowSold
	ErrDuplicateIdempotencyKey = dao.ErrDuplicateIdempotencyKey
	ErrStatusChanged           = dao.ErrStatusChanged
	ErrPaymentIntentBound      = dao.ErrPaymentIntentBound
)

// Store is the set of writes a registration or a payment transition performs.
// Implementations returned by Transactor.WithinTx share one database
// transaction.
type Store interface {
	InsertParticipant(ctx context.Context, participant domain.Participant) (domain.Participant, error)
	UpdateParticipantStatus(ctx context.Context, participantID uuid.UUID, status domain.ParticipantStatus) error
	FindProducts(ctx context.Context, eventID uuid.UUID, productIDs []uuid.UUID) ([]domain.Product, error)
	ReserveInventory(ctx context.Context, productID uuid.UUID, quantity int, now time.Time) error
	InsertLineItems(ctx context.Context, items []domain.ParticipantProduct) ([]domain.ParticipantProduct, error)
	UpdateLineItemStatuses(ctx context.Context, participantID uuid.UUID, payment domain.LineItemPaymentStatus, confirmation domain.LineItemConfirmationStatus) error
	InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	CompareAndSetOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error
}

type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{
		db: db,
	}
}

// WithinTx runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (t *Transactor) WithinTx(ctx context.Context, fn func(store Store) error) error {
	return dao.Transaction(ctx, t.db, func(tx *gorm.DB) error {
		return fn(newGormStore(tx))
	})
}

type gormStore struct {
	products     *dao.ProductDAO
	participants *dao.ParticipantDAO
	orders       *dao.OrderDAO
}

func newGormStore(tx *gorm.DB) *gormStore {
	return &gormStore{
		products:     dao.NewProductDAO(tx),
		participants: dao.NewParticipantDAO(tx),
		orders:       dao.NewOrderDAO(tx),
	}
}

func (s *gormStore) InsertParticipant(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	created, err := s.participants.Insert(ctx, participantDomainToDao(participant))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.participants.Insert -> %w", err)
	}
	return participantDaoToDomain(created), nil
}

func (s *gormStore) UpdateParticipantStatus(ctx context.Context, participantID uuid.UUID, status domain.ParticipantStatus) error {
	if err := s.participants.UpdateStatus(ctx, participantID, string(status)); err != nil {
		return fmt.Errorf("s.participants.UpdateStatus -> %w", err)
	}
	return nil
}

func (s *gormStore) FindProducts(ctx context.Context, eventID uuid.UUID, productIDs []uuid.UUID) ([]domain.Product, error) {
	products, err := s.products.FindByIDs(ctx, eventID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("s.products.FindByIDs -> %w", err)
	}
	return productsDaoToDomain(products), nil
}

func (s *gormStore) ReserveInventory(ctx context.Context, productID uuid.UUID, quantity int, now time.Time) error {
	if err := s.products.IncrementSold(ctx, productID, quantity, now); err != nil {
		return fmt.Errorf("s.products.IncrementSold -> %w", err)
	}
	return nil
}

func (s *gormStore) InsertLineItems(ctx context.Context, items []domain.ParticipantProduct) ([]domain.ParticipantProduct, error) {
	created, err := s.participants.InsertLineItems(ctx, lineItemsDomainToDao(items))
	if err != nil {
		return nil, fmt.Errorf("s.participants.InsertLineItems -> %w", err)
	}
	return lineItemsDaoToDomain(created), nil
}

func (s *gormStore) UpdateLineItemStatuses(ctx context.Context, participantID uuid.UUID, payment domain.LineItemPaymentStatus, confirmation domain.LineItemConfirmationStatus) error {
	err := s.participants.UpdateLineItemStatuses(ctx, participantID, string(payment), string(confirmation))
	if err != nil {
		return fmt.Errorf("s.participants.UpdateLineItemStatuses -> %w", err)
	}
	return nil
}

func (s *gormStore) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	created, err := s.orders.Insert(ctx, orderDomainToDao(order))
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.orders.Insert -> %w", err)
	}
	return orderDaoToDomain(created), nil
}

func (s *gormStore) CompareAndSetOrderStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) error {
	if err := s.orders.CompareAndSetStatus(ctx, orderID, string(from), string(to)); err != nil {
		return fmt.Errorf("s.orders.CompareAndSetStatus -> %w", err)
	}
	return nil
}
