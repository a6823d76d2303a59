package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a purchasable item of an event (pass, merch, accommodation).
// Prices are stored in minor currency units.
type Product struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ProductType   string     `json:"product_type"`
	Price         int64      `json:"price"`
	Currency      string     `json:"currency"`
	QuantityTotal *int       `json:"quantity_total"` // nil means unlimited
	QuantitySold  int        `json:"quantity_sold"`
	IsActive      bool       `json:"is_active"`
	SaleStart     *time.Time `json:"sale_start"`
	SaleEnd       *time.Time `json:"sale_end"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsOnSale reports whether now falls inside the product's sale window.
// Open-ended bounds are ignored.
func (p Product) IsOnSale(now time.Time) bool {
	if p.SaleStart != nil && now.Before(*p.SaleStart) {
		return false
	}
	if p.SaleEnd != nil && now.After(*p.SaleEnd) {
		return false
	}
	return true
}

// Remaining returns how many units can still be sold, or nil when the
// product has no quantity limit.
func (p Product) Remaining() *int {
	if p.QuantityTotal == nil {
		return nil
	}
	left := *p.QuantityTotal - p.QuantitySold
	if left < 0 {
		left = 0
	}
	return &left
}

// MaxSelectionQuantity caps the units of one product in a single registration.
const MaxSelectionQuantity = 100

// ProductSelection is one (product, quantity) pair picked by a registrant.
type ProductSelection struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}
