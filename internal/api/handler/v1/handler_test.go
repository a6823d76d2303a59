package v1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dancehub/event-registration/internal/api/middleware"
	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser stands in for the JWT middleware.
func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if userID != uuid.Nil {
			ctx.Set(middleware.CtxKeyUserID, userID)
		}
		ctx.Next()
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

type fakeRegistrationService struct {
	got    service.Registration
	result service.RegistrationResult
	err    error
}

func (f *fakeRegistrationService) Register(_ context.Context, reg service.Registration) (service.RegistrationResult, error) {
	f.got = reg
	return f.result, f.err
}

type fakeSummaryService struct {
	summary service.RegistrationSummary
	err     error
}

func (f *fakeSummaryService) GetRegistration(context.Context, uuid.UUID, uuid.UUID) (service.RegistrationSummary, error) {
	return f.summary, f.err
}

type fakePaymentService struct {
	verifyErr    error
	event        domain.PaymentEvent
	reconciled   []domain.PaymentEvent
	reconcileErr error
	intent       domain.PaymentIntent
	intentErr    error
}

func (f *fakePaymentService) VerifyEvent(_ []byte, header string) (domain.PaymentEvent, error) {
	if header == "" {
		return domain.PaymentEvent{}, service.ErrInvalidSignature
	}
	return f.event, f.verifyErr
}

func (f *fakePaymentService) Reconcile(_ context.Context, event domain.PaymentEvent) (service.ReconcileOutcome, error) {
	f.reconciled = append(f.reconciled, event)
	if f.reconcileErr != nil {
		return "", f.reconcileErr
	}
	return service.OutcomeApplied, nil
}

func (f *fakePaymentService) CreatePaymentIntent(context.Context, uuid.UUID, uuid.UUID) (domain.PaymentIntent, error) {
	return f.intent, f.intentErr
}

type fakeProductService struct {
	products []domain.Product
	created  domain.Product
	err      error
}

func (f *fakeProductService) ListProducts(context.Context, uuid.UUID) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeProductService) CreateProduct(_ context.Context, _ uuid.UUID, product domain.Product) (domain.Product, error) {
	f.created = product
	if f.err != nil {
		return domain.Product{}, f.err
	}
	product.ID = uuid.New()
	return product, nil
}

func (f *fakeProductService) UpdateProduct(_ context.Context, _ uuid.UUID, product domain.Product) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	return product, nil
}

func (f *fakeProductService) DeleteProduct(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
	return f.err
}
