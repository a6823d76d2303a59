package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/api/handler/v1/request"
	"github.com/dancehub/event-registration/internal/api/handler/v1/response"
	"github.com/dancehub/event-registration/internal/service"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
	maxFormBytes         = 1 << 20
)

type RegistrationService interface {
	Register(ctx context.Context, reg service.Registration) (service.RegistrationResult, error)
}

type SummaryService interface {
	GetRegistration(ctx context.Context, userID, participantID uuid.UUID) (service.RegistrationSummary, error)
}

type RegistrationHandler struct {
	svc        RegistrationService
	summarySvc SummaryService
}

func NewRegistrationHandler(svc RegistrationService, summarySvc SummaryService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:        svc,
		summarySvc: summarySvc,
	}
}

// HandleRegister godoc
// @Summary      Register for an event
// @Description  Creates the participant, its line items and a pending order, and reserves inventory. Products are sent as product_<id>=<quantity> form fields.
// @Tags         registrations
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        eventID          path      string  true   "Event ID"
// @Param        Idempotency-Key  header    string  false  "Replays the first result for a repeated request"
// @Param        role             formData  string  true   "Dance role"
// @Param        wsdcID           formData  string  false  "WSDC id"
// @Param        wsdcLevel        formData  string  false  "WSDC level"
// @Param        country          formData  string  false  "Country"
// @Param        age              formData  int     false  "Age"
// @Param        partner          formData  string  false  "Partner name"
// @Success      201  {object}  response.RegistrationResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/register [post]
// @Security BearerAuth
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, respErr := parseUUIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := parseForm(ctx); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid form: %w", err)))
		return
	}

	req, err := request.ParseRegisterForm(ctx.Request.PostForm)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.Register(ctx.Request.Context(), service.Registration{
		EventID:        eventID,
		UserID:         userID,
		Role:           req.Role,
		WSDCID:         req.WSDCID,
		WSDCLevel:      req.WSDCLevel,
		Country:        req.Country,
		Age:            req.Age,
		PartnerName:    req.Partner,
		Selections:     req.Selections,
		IdempotencyKey: strings.TrimSpace(ctx.GetHeader(headerIdempotencyKey)),
	})
	if err != nil {
		var conflictErr *service.InventoryConflictError
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &conflictErr):
			response.RenderErr(ctx, response.ErrSoldOut(conflictErr.Products))
		case errors.As(err, &validationErr):
			response.RenderErr(ctx, response.ErrBadRequest(validationErr))
		default:
			err = fmt.Errorf("HandleRegister -> h.svc.Register -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	if result.Replayed {
		ctx.Header(headerReplayed, "true")
	}
	ctx.JSON(http.StatusCreated, response.RegistrationResponse{
		Success:          true,
		ParticipantID:    result.ParticipantID,
		OrderID:          result.OrderID,
		SelectedProducts: result.SelectedProducts,
		Total:            result.Total,
		Currency:         result.Currency,
	})
}

// HandleGetRegistration godoc
// @Summary      Get a registration
// @Description  Returns the participant, line items and order of one of the caller's registrations
// @Tags         registrations
// @Produce      json
// @Param        participantID  path      string  true  "Participant ID"
// @Success      200  {object}  service.RegistrationSummary
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/{participantID} [get]
// @Security BearerAuth
func (h *RegistrationHandler) HandleGetRegistration(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	participantID, respErr := parseUUIDParam(ctx, "participantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.summarySvc.GetRegistration(ctx.Request.Context(), userID, participantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", participantID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleGetRegistration -> h.summarySvc.GetRegistration -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func parseForm(ctx *gin.Context) error {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxFormBytes)
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		return ctx.Request.ParseMultipartForm(maxFormBytes)
	}
	return ctx.Request.ParseForm()
}
