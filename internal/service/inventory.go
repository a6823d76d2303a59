package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
)

type UnavailableReason string

const (
	ReasonInactive  UnavailableReason = "inactive"
	ReasonNotOnSale UnavailableReason = "not_on_sale"
	ReasonSoldOut   UnavailableReason = "sold_out"
)

// Availability is the ledger's verdict for one requested product.
// Remaining is the count left before this request, nil when unlimited.
type Availability struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   bool
	Remaining   *int
	Reason      UnavailableReason
}

type AvailabilityReport struct {
	Items []Availability
}

// OK reports whether every requested product can be sold.
func (r AvailabilityReport) OK() bool {
	for _, item := range r.Items {
		if !item.Available {
			return false
		}
	}
	return true
}

// SoldOut lists the names of the products that cannot be sold.
func (r AvailabilityReport) SoldOut() []string {
	var names []string
	for _, item := range r.Items {
		if !item.Available {
			names = append(names, item.ProductName)
		}
	}
	return names
}

// CheckAvailability decides, per selection, whether the product can be sold
// at now. Selections whose product is not in products are skipped.
func CheckAvailability(products []domain.Product, selections []domain.ProductSelection, now time.Time) AvailabilityReport {
	byID := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	report := AvailabilityReport{Items: make([]Availability, 0, len(selections))}
	for _, sel := range selections {
		p, ok := byID[sel.ProductID]
		if !ok {
			continue
		}

		item := Availability{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   sel.Quantity,
			Available:   true,
			Remaining:   p.Remaining(),
		}
		switch {
		case !p.IsActive:
			item.Available, item.Reason = false, ReasonInactive
		case !p.IsOnSale(now):
			item.Available, item.Reason = false, ReasonNotOnSale
		case item.Remaining != nil && sel.Quantity > *item.Remaining:
			item.Available, item.Reason = false, ReasonSoldOut
		}
		report.Items = append(report.Items, item)
	}

	return report
}
