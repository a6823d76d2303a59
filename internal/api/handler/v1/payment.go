package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dancehub/event-registration/internal/api/handler/v1/response"
	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/service"
)

const (
	headerStripeSignature = "Stripe-Signature"
	maxWebhookBytes       = 65536
)

type PaymentService interface {
	VerifyEvent(payload []byte, signatureHeader string) (domain.PaymentEvent, error)
	Reconcile(ctx context.Context, event domain.PaymentEvent) (service.ReconcileOutcome, error)
	CreatePaymentIntent(ctx context.Context, userID, orderID uuid.UUID) (domain.PaymentIntent, error)
}

type PaymentHandler struct {
	svc PaymentService
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: svc,
	}
}

// HandleWebhook godoc
// @Summary      Payment processor webhook
// @Description  Verifies the Stripe-Signature header over the raw body and reconciles the matching order. Every authenticated delivery is acknowledged.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header  string  true  "Stripe signature"
// @Success      200  {object}  response.WebhookResponse
// @Failure      400  {object}  response.WebhookErr
// @Router       /webhooks/payment [post]
func (h *PaymentHandler) HandleWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.WebhookErr{Error: "could not read body"})
		return
	}

	event, err := h.svc.VerifyEvent(payload, ctx.GetHeader(headerStripeSignature))
	if err != nil {
		zap.L().Warn("rejected payment webhook", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, response.WebhookErr{Error: "invalid signature"})
		return
	}

	outcome, err := h.svc.Reconcile(ctx.Request.Context(), event)
	if err != nil {
		// Acknowledged anyway so the processor does not retry events we cannot act on.
		zap.L().Error("payment reconciliation failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("payment_intent_id", event.PaymentIntentID),
			zap.Error(err),
		)
	} else {
		zap.L().Info("payment webhook processed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("outcome", string(outcome)),
		)
	}

	ctx.JSON(http.StatusOK, response.WebhookResponse{Received: true})
}

// HandleCreatePaymentIntent godoc
// @Summary      Start paying an order
// @Description  Creates (or reuses) a card payment intent for a pending order owned by the caller
// @Tags         payments
// @Produce      json
// @Param        orderID  path      string  true  "Order ID"
// @Success      200  {object}  response.PaymentIntentResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /orders/{orderID}/payment-intent [post]
// @Security BearerAuth
func (h *PaymentHandler) HandleCreatePaymentIntent(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	orderID, respErr := parseUUIDParam(ctx, "orderID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	intent, err := h.svc.CreatePaymentIntent(ctx.Request.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrOrderNotPayable), errors.Is(err, service.ErrPaymentIntentBound):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleCreatePaymentIntent -> h.svc.CreatePaymentIntent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}
