package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/repository/dao"
)

type ParticipantDAO interface {
	FindByID(ctx context.Context, id uuid.UUID) (dao.Participant, error)
	HasEventRole(ctx context.Context, eventID, userID uuid.UUID, eventRole, status string) (bool, error)
	FindLineItems(ctx context.Context, participantID uuid.UUID) ([]dao.ParticipantProduct, error)
}

type ParticipantRepository struct {
	dao ParticipantDAO
}

func NewParticipantRepository(dao ParticipantDAO) *ParticipantRepository {
	return &ParticipantRepository{
		dao: dao,
	}
}

func (r *ParticipantRepository) FindByID(ctx context.Context, participantID uuid.UUID) (domain.Participant, error) {
	participant, err := r.dao.FindByID(ctx, participantID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}
	return participantDaoToDomain(participant), nil
}

// IsEventDirector reports whether the user holds a confirmed Event Director
// staff row for the event.
func (r *ParticipantRepository) IsEventDirector(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	ok, err := r.dao.HasEventRole(ctx, eventID, userID, domain.RoleEventDirector, string(domain.ParticipantConfirmed))
	if err != nil {
		return false, fmt.Errorf("r.dao.HasEventRole -> %w", err)
	}
	return ok, nil
}

func (r *ParticipantRepository) FindLineItems(ctx context.Context, participantID uuid.UUID) ([]domain.ParticipantProduct, error) {
	items, err := r.dao.FindLineItems(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLineItems -> %w", err)
	}
	return lineItemsDaoToDomain(items), nil
}
