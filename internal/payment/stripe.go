package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"

	"github.com/dancehub/event-registration/internal/domain"
)

// ErrWebhookSecretMissing rejects every delivery when no signing secret is
// configured, since an empty key would accept forged signatures.
var ErrWebhookSecretMissing = errors.New("stripe webhook secret is not configured")

// StripeGateway verifies webhook deliveries and creates payment intents.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		api:           client.New(secretKey, backends),
		webhookSecret: strings.TrimSpace(webhookSecret),
	}
}

// ParseEvent checks the Stripe-Signature header against the raw payload and
// extracts the payment intent id for payment_intent.* events.
func (g *StripeGateway) ParseEvent(payload []byte, signatureHeader string) (domain.PaymentEvent, error) {
	if g.webhookSecret == "" {
		return domain.PaymentEvent{}, ErrWebhookSecretMissing
	}

	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("webhook.ConstructEvent -> %w", err)
	}

	parsed := domain.PaymentEvent{
		ID:   event.ID,
		Type: event.Type,
	}
	if event.Data == nil {
		return parsed, nil
	}

	switch event.Type {
	case domain.EventPaymentIntentSucceeded, domain.EventPaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err = json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return domain.PaymentEvent{}, fmt.Errorf("json.Unmarshal payment intent -> %w", err)
		}
		parsed.PaymentIntentID = intent.ID
	}

	return parsed, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("g.api.PaymentIntents.New -> %w", err)
	}

	return domain.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}
