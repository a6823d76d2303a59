package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/repository/dao"
)

type OrderDAO interface {
	FindByID(ctx context.Context, id uuid.UUID) (dao.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (dao.Order, error)
	FindByParticipantID(ctx context.Context, participantID uuid.UUID) (dao.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (dao.Order, error)
	BindPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
}

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := r.dao.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}
	return orderDaoToDomain(order), nil
}

func (r *OrderRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (domain.Order, error) {
	order, err := r.dao.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByPaymentIntentID -> %w", err)
	}
	return orderDaoToDomain(order), nil
}

func (r *OrderRepository) FindByParticipantID(ctx context.Context, participantID uuid.UUID) (domain.Order, error) {
	order, err := r.dao.FindByParticipantID(ctx, participantID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByParticipantID -> %w", err)
	}
	return orderDaoToDomain(order), nil
}

func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (domain.Order, error) {
	order, err := r.dao.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByIdempotencyKey -> %w", err)
	}
	return orderDaoToDomain(order), nil
}

func (r *OrderRepository) BindPaymentIntent(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	if err := r.dao.BindPaymentIntent(ctx, orderID, paymentIntentID); err != nil {
		return fmt.Errorf("r.dao.BindPaymentIntent -> %w", err)
	}
	return nil
}
