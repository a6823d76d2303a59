package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const idempotencyIndex = "idx_orders_user_idempotency"

var (
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrStatusChanged           = errors.New("order status changed concurrently")
	ErrPaymentIntentBound      = errors.New("order is bound to another payment intent")
)

type Order struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_orders_user_idempotency,priority:1"`
	EventID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ParticipantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Total           int64     `gorm:"not null"`
	Currency        string    `gorm:"size:3;not null"`
	Status          string    `gorm:"not null"`
	PaymentIntentID *string   `gorm:"uniqueIndex"`
	IdempotencyKey  *string   `gorm:"uniqueIndex:idx_orders_user_idempotency,priority:2"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	if err := d.db.WithContext(ctx).Create(&order).Error; err != nil {
		if isUniqueViolation(err, idempotencyIndex) {
			return Order{}, ErrDuplicateIdempotencyKey
		}
		return Order{}, err
	}
	return order, nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id uuid.UUID) (Order, error) {
	var order Order
	if err := d.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return Order{}, notFound(err)
	}
	return order, nil
}

func (d *OrderDAO) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (Order, error) {
	var order Order
	if err := d.db.WithContext(ctx).First(&order, "payment_intent_id = ?", paymentIntentID).Error; err != nil {
		return Order{}, notFound(err)
	}
	return order, nil
}

func (d *OrderDAO) FindByParticipantID(ctx context.Context, participantID uuid.UUID) (Order, error) {
	var order Order
	if err := d.db.WithContext(ctx).First(&order, "participant_id = ?", participantID).Error; err != nil {
		return Order{}, notFound(err)
	}
	return order, nil
}

func (d *OrderDAO) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (Order, error) {
	var order Order
	err := d.db.WithContext(ctx).
		First(&order, "user_id = ? AND idempotency_key = ?", userID, key).Error
	if err != nil {
		return Order{}, notFound(err)
	}
	return order, nil
}

// BindPaymentIntent stores paymentIntentID on a pending order. Binding the
// same id twice is a no-op; a different id yields ErrPaymentIntentBound.
func (d *OrderDAO) BindPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	result := d.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND (payment_intent_id IS NULL OR payment_intent_id = ?)", orderID, paymentIntentID).
		Update("payment_intent_id", paymentIntentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, orderID); err != nil {
			return err
		}
		return ErrPaymentIntentBound
	}
	return nil
}

// CompareAndSetStatus moves the order from one status to another only if it
// still holds from. ErrStatusChanged means another writer got there first.
func (d *OrderDAO) CompareAndSetStatus(ctx context.Context, orderID uuid.UUID, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
