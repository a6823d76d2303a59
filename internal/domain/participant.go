package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	ParticipantPendingSingle  ParticipantStatus = "pending_single_registration"
	ParticipantPendingCouples ParticipantStatus = "pending_couples_registration"
	ParticipantConfirmed      ParticipantStatus = "confirmed"
)

// RoleEventDirector is the staff role allowed to administer an event. Staff
// roles live in Participant.EventRole and are never taken from registrants.
const RoleEventDirector = "Event Director"

var staffRoles = []string{RoleEventDirector}

// IsStaffRole reports whether role names a staff role, ignoring case and
// surrounding spaces.
func IsStaffRole(role string) bool {
	role = strings.TrimSpace(role)
	for _, staff := range staffRoles {
		if strings.EqualFold(role, staff) {
			return true
		}
	}
	return false
}

// Participant is a user's registration record for one event.
type Participant struct {
	ID          uuid.UUID         `json:"id"`
	EventID     uuid.UUID         `json:"event_id"`
	UserID      uuid.UUID         `json:"user_id"`
	Role        string            `json:"role"`
	EventRole   string            `json:"event_role,omitempty"`
	Status      ParticipantStatus `json:"status"`
	WSDCID      string            `json:"wsdc_id,omitempty"`
	WSDCLevel   string            `json:"wsdc_level,omitempty"`
	Country     string            `json:"country,omitempty"`
	Age         *int              `json:"age,omitempty"`
	PartnerName string            `json:"partner_name,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// IsEventDirector reports whether the row grants administration of its event.
func (p Participant) IsEventDirector() bool {
	return p.EventRole == RoleEventDirector && p.Status == ParticipantConfirmed
}

// StatusForPartner resolves the initial registration status.
func StatusForPartner(partnerName string) ParticipantStatus {
	if partnerName != "" {
		return ParticipantPendingCouples
	}
	return ParticipantPendingSingle
}

type LineItemPaymentStatus string

const (
	LineItemPaymentPending LineItemPaymentStatus = "pending"
	LineItemPaymentPaid    LineItemPaymentStatus = "paid"
	LineItemPaymentFailed  LineItemPaymentStatus = "failed"
)

type LineItemConfirmationStatus string

const (
	LineItemUnconfirmed LineItemConfirmationStatus = "pending"
	LineItemConfirmed   LineItemConfirmationStatus = "confirmed"
)

// ParticipantProduct is one product selection within a registration, with
// its own price snapshot.
type ParticipantProduct struct {
	ID                 uuid.UUID                  `json:"id"`
	ParticipantID      uuid.UUID                  `json:"participant_id"`
	ProductID          uuid.UUID                  `json:"product_id"`
	ProductName        string                     `json:"product_name"`
	Quantity           int                        `json:"quantity"`
	UnitPrice          int64                      `json:"unit_price"`
	Subtotal           int64                      `json:"subtotal"`
	PaymentStatus      LineItemPaymentStatus      `json:"payment_status"`
	ConfirmationStatus LineItemConfirmationStatus `json:"confirmation_status"`
	CreatedAt          time.Time                  `json:"created_at"`
}
