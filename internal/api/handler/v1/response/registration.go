package response

import (
	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
)

type RegistrationResponse struct {
	Success          bool                        `json:"success"`
	ParticipantID    uuid.UUID                   `json:"participantId"`
	OrderID          uuid.UUID                   `json:"orderId"`
	SelectedProducts []domain.ParticipantProduct `json:"selectedProducts"`
	Total            int64                       `json:"total"`
	Currency         string                      `json:"currency"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type WebhookErr struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
