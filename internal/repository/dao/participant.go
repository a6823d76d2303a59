package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Participant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;index:idx_participants_event_user"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_participants_event_user"`
	Role        string    `gorm:"not null"`
	EventRole   string    `gorm:"column:event_role;not null;default:''"`
	Status      string    `gorm:"not null"`
	WSDCID      string    `gorm:"column:wsdc_id"`
	WSDCLevel   string    `gorm:"column:wsdc_level"`
	Country     string
	Age         *int
	PartnerName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Participant) TableName() string {
	return "event_participants"
}

func (p *Participant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ParticipantProduct struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ParticipantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName        string    `gorm:"not null"`
	Quantity           int       `gorm:"not null;check:chk_participant_products_quantity,quantity > 0"`
	UnitPrice          int64     `gorm:"not null"`
	Subtotal           int64     `gorm:"not null"`
	PaymentStatus      string    `gorm:"not null"`
	ConfirmationStatus string    `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (ParticipantProduct) TableName() string {
	return "participant_products"
}

func (p *ParticipantProduct) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{
		db: db,
	}
}

func (d *ParticipantDAO) Insert(ctx context.Context, participant Participant) (Participant, error) {
	if err := d.db.WithContext(ctx).Create(&participant).Error; err != nil {
		return Participant{}, err
	}
	return participant, nil
}

func (d *ParticipantDAO) FindByID(ctx context.Context, id uuid.UUID) (Participant, error) {
	var participant Participant
	if err := d.db.WithContext(ctx).First(&participant, "id = ?", id).Error; err != nil {
		return Participant{}, notFound(err)
	}
	return participant, nil
}

// HasEventRole reports whether the user holds a row with the given staff role
// and status for the event. The dance role column is never consulted.
func (d *ParticipantDAO) HasEventRole(ctx context.Context, eventID, userID uuid.UUID, eventRole, status string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("event_id = ? AND user_id = ? AND event_role = ? AND status = ?", eventID, userID, eventRole, status).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *ParticipantDAO) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (d *ParticipantDAO) InsertLineItems(ctx context.Context, items []ParticipantProduct) ([]ParticipantProduct, error) {
	if len(items) == 0 {
		return items, nil
	}
	if err := d.db.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (d *ParticipantDAO) FindLineItems(ctx context.Context, participantID uuid.UUID) ([]ParticipantProduct, error) {
	var items []ParticipantProduct
	err := d.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// UpdateLineItemStatuses sets the given columns on every line item of a
// participant. Empty values leave the column untouched.
func (d *ParticipantDAO) UpdateLineItemStatuses(ctx context.Context, participantID uuid.UUID, paymentStatus, confirmationStatus string) error {
	updates := map[string]any{}
	if paymentStatus != "" {
		updates["payment_status"] = paymentStatus
	}
	if confirmationStatus != "" {
		updates["confirmation_status"] = confirmationStatus
	}
	if len(updates) == 0 {
		return nil
	}

	return d.db.WithContext(ctx).
		Model(&ParticipantProduct{}).
		Where("participant_id = ?", participantID).
		Updates(updates).Error
}
