package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
)

type ParticipantRepository interface {
	FindByID(ctx context.Context, participantID uuid.UUID) (domain.Participant, error)
	FindLineItems(ctx context.Context, participantID uuid.UUID) ([]domain.ParticipantProduct, error)
}

type SummaryOrderRepository interface {
	FindByParticipantID(ctx context.Context, participantID uuid.UUID) (domain.Order, error)
}

type RegistrationSummary struct {
	Participant domain.Participant          `json:"participant"`
	LineItems   []domain.ParticipantProduct `json:"lineItems"`
	Order       domain.Order                `json:"order"`
	Total       int64                       `json:"total"`
	Currency    string                      `json:"currency"`
}

type SummaryService struct {
	participants ParticipantRepository
	orders       SummaryOrderRepository
}

func NewSummaryService(participants ParticipantRepository, orders SummaryOrderRepository) *SummaryService {
	return &SummaryService{
		participants: participants,
		orders:       orders,
	}
}

// GetRegistration returns what a user bought for one registration.
func (s *SummaryService) GetRegistration(ctx context.Context, userID, participantID uuid.UUID) (RegistrationSummary, error) {
	participant, err := s.participants.FindByID(ctx, participantID)
	if err != nil {
		return RegistrationSummary{}, fmt.Errorf("s.participants.FindByID -> %w", err)
	}
	if participant.UserID != userID {
		return RegistrationSummary{}, ErrNotOwner
	}

	items, err := s.participants.FindLineItems(ctx, participantID)
	if err != nil {
		return RegistrationSummary{}, fmt.Errorf("s.participants.FindLineItems -> %w", err)
	}

	order, err := s.orders.FindByParticipantID(ctx, participantID)
	if err != nil {
		return RegistrationSummary{}, fmt.Errorf("s.orders.FindByParticipantID -> %w", err)
	}

	var total int64
	for _, item := range items {
		total += item.Subtotal
	}

	return RegistrationSummary{
		Participant: participant,
		LineItems:   items,
		Order:       order,
		Total:       total,
		Currency:    order.Currency,
	}, nil
}
