package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
)

var errSaleWindow = errors.New("sale_end must be after sale_start")

type ProductRequest struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ProductType   string     `json:"product_type"`
	Price         int64      `json:"price"`
	Currency      string     `json:"currency"`
	QuantityTotal *int       `json:"quantity_total"`
	IsActive      *bool      `json:"is_active"`
	SaleStart     *time.Time `json:"sale_start"`
	SaleEnd       *time.Time `json:"sale_end"`
}

func (req *ProductRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.ProductType, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Price, validation.Min(0)),
		validation.Field(&req.Currency, validation.Required, validation.Length(3, 3), is.Alpha),
		validation.Field(&req.QuantityTotal, validation.Min(0)),
		validation.Field(&req.SaleEnd, validation.By(req.validateSaleWindow)),
	)
}

func (req *ProductRequest) validateSaleWindow(interface{}) error {
	if req.SaleStart != nil && req.SaleEnd != nil && !req.SaleEnd.After(*req.SaleStart) {
		return errSaleWindow
	}
	return nil
}

// ToDomain builds the product; is_active defaults to true when omitted.
func (req *ProductRequest) ToDomain(eventID, productID uuid.UUID) domain.Product {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.Product{
		ID:            productID,
		EventID:       eventID,
		Name:          req.Name,
		Description:   req.Description,
		ProductType:   req.ProductType,
		Price:         req.Price,
		Currency:      req.Currency,
		QuantityTotal: req.QuantityTotal,
		IsActive:      active,
		SaleStart:     req.SaleStart,
		SaleEnd:       req.SaleEnd,
	}
}
