package v1

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/service"
)

func newRegistrationRouter(userID uuid.UUID, svc *fakeRegistrationService, summary *fakeSummaryService) *gin.Engine {
	h := NewRegistrationHandler(svc, summary)
	r := gin.New()
	r.POST("/events/:eventID/register", withUser(userID), h.HandleRegister)
	r.GET("/registrations/:participantID", withUser(userID), h.HandleGetRegistration)
	return r
}

func registerRequest(eventID string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleRegister_Created(t *testing.T) {
	userID, eventID, productID := uuid.New(), uuid.New(), uuid.New()
	svc := &fakeRegistrationService{result: service.RegistrationResult{
		ParticipantID: uuid.New(),
		OrderID:       uuid.New(),
		SelectedProducts: []domain.ParticipantProduct{
			{ProductID: productID, ProductName: "Full Pass", Quantity: 1, UnitPrice: 15000, Subtotal: 15000},
		},
		Total:    15000,
		Currency: "USD",
	}}
	r := newRegistrationRouter(userID, svc, &fakeSummaryService{})

	form := url.Values{
		"role":                          {"Leader"},
		"wsdcID":                        {"12345"},
		"country":                       {"FR"},
		"age":                           {"30"},
		"partner":                       {"Alex"},
		"product_" + productID.String(): {"1"},
	}
	req := registerRequest(eventID.String(), form)
	req.Header.Set(headerIdempotencyKey, "  key-1 ")

	rec := serve(r, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get(headerReplayed))
	body := decode(t, rec.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, svc.result.OrderID.String(), body["orderId"])
	assert.EqualValues(t, 15000, body["total"])
	assert.Equal(t, "USD", body["currency"])
	assert.Len(t, body["selectedProducts"], 1)

	assert.Equal(t, userID, svc.got.UserID)
	assert.Equal(t, eventID, svc.got.EventID)
	assert.Equal(t, "Leader", svc.got.Role)
	assert.Equal(t, "Alex", svc.got.PartnerName)
	assert.Equal(t, "key-1", svc.got.IdempotencyKey)
	require.NotNil(t, svc.got.Age)
	assert.Equal(t, 30, *svc.got.Age)
	assert.Equal(t, []domain.ProductSelection{{ProductID: productID, Quantity: 1}}, svc.got.Selections)
}

func TestHandleRegister_ReplayHeader(t *testing.T) {
	svc := &fakeRegistrationService{result: service.RegistrationResult{OrderID: uuid.New(), Replayed: true}}
	r := newRegistrationRouter(uuid.New(), svc, &fakeSummaryService{})

	rec := serve(r, registerRequest(uuid.NewString(), url.Values{"role": {"Follower"}}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(headerReplayed))
}

func TestHandleRegister_Multipart(t *testing.T) {
	productID := uuid.New()
	svc := &fakeRegistrationService{}
	r := newRegistrationRouter(uuid.New(), svc, &fakeSummaryService{})

	boundary := "xxBOUNDARYxx"
	body := fmt.Sprintf("--%[1]s\r\nContent-Disposition: form-data; name=\"role\"\r\n\r\nLeader\r\n"+
		"--%[1]s\r\nContent-Disposition: form-data; name=\"product_%[2]s\"\r\n\r\n2\r\n--%[1]s--\r\n", boundary, productID)
	req := httptest.NewRequest(http.MethodPost, "/events/"+uuid.NewString()+"/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)

	rec := serve(r, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Leader", svc.got.Role)
	assert.Equal(t, []domain.ProductSelection{{ProductID: productID, Quantity: 2}}, svc.got.Selections)
}

func TestHandleRegister_Errors(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name    string
		userID  uuid.UUID
		eventID string
		form    url.Values
		svcErr  error
		status  int
		called  bool
	}{
		{
			name:    "no token",
			eventID: uuid.NewString(),
			form:    url.Values{"role": {"Leader"}},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "bad event id",
			userID:  uuid.New(),
			eventID: "not-a-uuid",
			form:    url.Values{"role": {"Leader"}},
			status:  http.StatusBadRequest,
		},
		{
			name:    "missing role",
			userID:  uuid.New(),
			eventID: uuid.NewString(),
			form:    url.Values{"product_" + productID.String(): {"1"}},
			status:  http.StatusBadRequest,
		},
		{
			name:    "bad wsdc id",
			userID:  uuid.New(),
			eventID: uuid.NewString(),
			form:    url.Values{"role": {"Leader"}, "wsdcID": {"0000"}},
			status:  http.StatusBadRequest,
		},
		{
			name:    "staff role",
			userID:  uuid.New(),
			eventID: uuid.NewString(),
			form:    url.Values{"role": {"Event Director"}, "product_" + productID.String(): {"1"}},
			status:  http.StatusBadRequest,
		},
		{
			name:    "quantity above cap",
			userID:  uuid.New(),
			eventID: uuid.NewString(),
			form:    url.Values{"role": {"Leader"}, "product_" + productID.String(): {"4611686018427387905"}},
			status:  http.StatusBadRequest,
		},
		{
			name:    "non numeric quantity",
			userID:  uuid.New(),
			eventID: uuid.NewString(),
			form:    url.Values{"role": {"Leader"}, "product_" + productID.String(): {"lots"}},
			status:  http.StatusBadRequest,
		},
		{
			name:    "service validation",
			userID:  uuid.New(),
			eventID: uuid.NewString(),
			form:    url.Values{"role": {"Leader"}},
			svcErr:  &service.ValidationError{Err: service.ErrNoProductsSelected},
			status:  http.StatusBadRequest,
			called:  true,
		},
		{
			name:    "persistence failure",
			userID:  uuid.New(),
			eventID: uuid.NewString(),
			form:    url.Values{"role": {"Leader"}, "product_" + productID.String(): {"1"}},
			svcErr:  fmt.Errorf("%w: insert failed", service.ErrPersistence),
			status:  http.StatusInternalServerError,
			called:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRegistrationService{err: tt.svcErr}
			r := newRegistrationRouter(tt.userID, svc, &fakeSummaryService{})

			rec := serve(r, registerRequest(tt.eventID, tt.form))

			require.Equal(t, tt.status, rec.Code)
			body := decode(t, rec.Body)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
			assert.Equal(t, tt.called, svc.got.EventID != uuid.Nil)
		})
	}
}

func TestHandleRegister_InternalErrorHidesCause(t *testing.T) {
	svc := &fakeRegistrationService{err: errors.New("pq: connection refused to 10.0.0.3")}
	r := newRegistrationRouter(uuid.New(), svc, &fakeSummaryService{})

	rec := serve(r, registerRequest(uuid.NewString(), url.Values{"role": {"Leader"}}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestHandleRegister_SoldOut(t *testing.T) {
	svc := &fakeRegistrationService{err: &service.InventoryConflictError{Products: []string{"Full Pass", "T-Shirt"}}}
	r := newRegistrationRouter(uuid.New(), svc, &fakeSummaryService{})

	rec := serve(r, registerRequest(uuid.NewString(), url.Values{"role": {"Leader"}, "product_" + uuid.NewString(): {"1"}}))

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec.Body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{"Full Pass", "T-Shirt"}, body["soldOutProducts"])
}

func TestHandleGetRegistration(t *testing.T) {
	participantID := uuid.New()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"found", nil, http.StatusOK},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"not owner", service.ErrNotOwner, http.StatusForbidden},
		{"failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := &fakeSummaryService{
				summary: service.RegistrationSummary{
					Participant: domain.Participant{ID: participantID},
					Total:       4500,
					Currency:    "EUR",
				},
				err: tt.err,
			}
			r := newRegistrationRouter(uuid.New(), &fakeRegistrationService{}, summary)

			rec := serve(r, httptest.NewRequest(http.MethodGet, "/registrations/"+participantID.String(), nil))

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				body := decode(t, rec.Body)
				assert.EqualValues(t, 4500, body["total"])
				assert.Equal(t, "EUR", body["currency"])
			}
		})
	}
}
