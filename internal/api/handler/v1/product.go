package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/api/handler/v1/request"
	"github.com/dancehub/event-registration/internal/api/handler/v1/response"
	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/service"
)

type ProductService interface {
	ListProducts(ctx context.Context, eventID uuid.UUID) ([]domain.Product, error)
	CreateProduct(ctx context.Context, userID uuid.UUID, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, userID uuid.UUID, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, userID, eventID, productID uuid.UUID) error
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{
		svc: svc,
	}
}

// HandleListProducts godoc
// @Summary      List event products
// @Tags         products
// @Produce      json
// @Param        eventID  path      string  true  "Event ID"
// @Success      200  {array}   domain.Product
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/products [get]
// @Security BearerAuth
func (h *ProductHandler) HandleListProducts(ctx *gin.Context) {
	eventID, respErr := parseUUIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	products, err := h.svc.ListProducts(ctx.Request.Context(), eventID)
	if err != nil {
		err = fmt.Errorf("HandleListProducts -> h.svc.ListProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if products == nil {
		products = []domain.Product{}
	}
	ctx.JSON(http.StatusOK, products)
}

// HandleCreateProduct godoc
// @Summary      Create a product
// @Description  Only event directors of the event may create products
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        eventID  path      string                  true  "Event ID"
// @Param        input    body      request.ProductRequest  true  "Product"
// @Success      201  {object}  domain.Product
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/products [post]
// @Security BearerAuth
func (h *ProductHandler) HandleCreateProduct(ctx *gin.Context) {
	userID, eventID, req, respErr := h.bindProduct(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	product, err := h.svc.CreateProduct(ctx.Request.Context(), userID, req.ToDomain(eventID, uuid.Nil))
	if err != nil {
		h.renderErr(ctx, eventID, err)
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleUpdateProduct godoc
// @Summary      Update a product
// @Description  Only event directors of the event may update products. quantity_total cannot drop below quantity_sold.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        eventID    path      string                  true  "Event ID"
// @Param        productID  path      string                  true  "Product ID"
// @Param        input      body      request.ProductRequest  true  "Product"
// @Success      200  {object}  domain.Product
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/products/{productID} [put]
// @Security BearerAuth
func (h *ProductHandler) HandleUpdateProduct(ctx *gin.Context) {
	productID, respErr := parseUUIDParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, eventID, req, respErr := h.bindProduct(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	product, err := h.svc.UpdateProduct(ctx.Request.Context(), userID, req.ToDomain(eventID, productID))
	if err != nil {
		h.renderErr(ctx, productID, err)
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleDeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Param        eventID    path  string  true  "Event ID"
// @Param        productID  path  string  true  "Product ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/products/{productID} [delete]
// @Security BearerAuth
func (h *ProductHandler) HandleDeleteProduct(ctx *gin.Context) {
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

	productID, respErr := parseUUIDParam(ctx, "productID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteProduct(ctx.Request.Context(), userID, eventID, productID); err != nil {
		h.renderErr(ctx, productID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *ProductHandler) bindProduct(ctx *gin.Context) (uuid.UUID, uuid.UUID, request.ProductRequest, *response.Err) {
	var req request.ProductRequest

	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		return uuid.Nil, uuid.Nil, req, respErr
	}

	eventID, respErr := parseUUIDParam(ctx, "eventID")
	if respErr != nil {
		return uuid.Nil, uuid.Nil, req, respErr
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		return uuid.Nil, uuid.Nil, req, response.ErrBadRequest(err)
	}

	if err := req.Validate(); err != nil {
		return uuid.Nil, uuid.Nil, req, response.ErrBadRequest(err)
	}

	return userID, eventID, req, nil
}

func (h *ProductHandler) renderErr(ctx *gin.Context, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrNotFound):
		response.RenderErr(ctx, response.ErrNotFound("product", "ID", id))
	case errors.Is(err, service.ErrQuantityBelowSold):
		response.RenderErr(ctx, response.ErrConflict(service.ErrQuantityBelowSold))
	default:
		err = fmt.Errorf("ProductHandler -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
