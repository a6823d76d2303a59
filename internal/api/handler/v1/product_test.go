package v1

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/service"
)

const validProductBody = `{"name":"Full Pass","product_type":"pass","price":15000,"currency":"usd","quantity_total":100}`

func newProductRouter(userID uuid.UUID, svc *fakeProductService) *gin.Engine {
	h := NewProductHandler(svc)
	r := gin.New()
	g := r.Group("/events/:eventID/products", withUser(userID))
	g.GET("", h.HandleListProducts)
	g.POST("", h.HandleCreateProduct)
	g.PUT("/:productID", h.HandleUpdateProduct)
	g.DELETE("/:productID", h.HandleDeleteProduct)
	return r
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleListProducts(t *testing.T) {
	eventID := uuid.New()

	t.Run("empty list is an array", func(t *testing.T) {
		r := newProductRouter(uuid.New(), &fakeProductService{})

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/events/"+eventID.String()+"/products", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("products", func(t *testing.T) {
		svc := &fakeProductService{products: []domain.Product{{ID: uuid.New(), EventID: eventID, Name: "Full Pass"}}}
		r := newProductRouter(uuid.New(), svc)

		rec := serve(r, httptest.NewRequest(http.MethodGet, "/events/"+eventID.String()+"/products", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"Full Pass"`)
	})
}

func TestHandleCreateProduct(t *testing.T) {
	eventID := uuid.New()
	target := "/events/" + eventID.String() + "/products"

	t.Run("created", func(t *testing.T) {
		svc := &fakeProductService{}
		r := newProductRouter(uuid.New(), svc)

		rec := serve(r, jsonRequest(http.MethodPost, target, validProductBody))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, eventID, svc.created.EventID)
		assert.Equal(t, "Full Pass", svc.created.Name)
		assert.True(t, svc.created.IsActive)
		require.NotNil(t, svc.created.QuantityTotal)
		assert.Equal(t, 100, *svc.created.QuantityTotal)
	})

	tests := []struct {
		name   string
		userID uuid.UUID
		body   string
		err    error
		status int
	}{
		{"no token", uuid.Nil, validProductBody, nil, http.StatusUnauthorized},
		{"malformed json", uuid.New(), `{"name":`, nil, http.StatusBadRequest},
		{"negative price", uuid.New(), `{"name":"x","product_type":"pass","price":-1,"currency":"USD"}`, nil, http.StatusBadRequest},
		{"not a director", uuid.New(), validProductBody, service.ErrNotEventStaff, http.StatusForbidden},
		{"store failure", uuid.New(), validProductBody, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProductRouter(tt.userID, &fakeProductService{err: tt.err})

			rec := serve(r, jsonRequest(http.MethodPost, target, tt.body))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandleUpdateProduct(t *testing.T) {
	target := "/events/" + uuid.NewString() + "/products/" + uuid.NewString()

	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"updated", target, nil, http.StatusOK},
		{"bad product id", "/events/" + uuid.NewString() + "/products/nope", nil, http.StatusBadRequest},
		{"not a director", target, service.ErrNotEventStaff, http.StatusForbidden},
		{"missing", target, service.ErrNotFound, http.StatusNotFound},
		{"below sold", target, service.ErrQuantityBelowSold, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProductRouter(uuid.New(), &fakeProductService{err: tt.err})

			rec := serve(r, jsonRequest(http.MethodPut, tt.target, validProductBody))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandleDeleteProduct(t *testing.T) {
	target := "/events/" + uuid.NewString() + "/products/" + uuid.NewString()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"not a director", service.ErrNotEventStaff, http.StatusForbidden},
		{"missing", service.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProductRouter(uuid.New(), &fakeProductService{err: tt.err})

			rec := serve(r, httptest.NewRequest(http.MethodDelete, target, nil))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
