package repository

import (
	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/repository/dao"
)

func productDomainToDao(p domain.Product) dao.Product {
	return dao.Product{
		ID:            p.ID,
		EventID:       p.EventID,
		Name:          p.Name,
		Description:   p.Description,
		ProductType:   p.ProductType,
		Price:         p.Price,
		Currency:      p.Currency,
		QuantityTotal: p.QuantityTotal,
		QuantitySold:  p.QuantitySold,
		IsActive:      p.IsActive,
		SaleStart:     p.SaleStart,
		SaleEnd:       p.SaleEnd,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func productDaoToDomain(p dao.Product) domain.Product {
	return domain.Product{
		ID:            p.ID,
		EventID:       p.EventID,
		Name:          p.Name,
		Description:   p.Description,
		ProductType:   p.ProductType,
		Price:         p.Price,
		Currency:      p.Currency,
		QuantityTotal: p.QuantityTotal,
		QuantitySold:  p.QuantitySold,
		IsActive:      p.IsActive,
		SaleStart:     p.SaleStart,
		SaleEnd:       p.SaleEnd,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func productsDaoToDomain(products []dao.Product) []domain.Product {
	domainProducts := make([]domain.Product, len(products))
	for i, p := range products {
		domainProducts[i] = productDaoToDomain(p)
	}
	return domainProducts
}

func participantDomainToDao(p domain.Participant) dao.Participant {
	return dao.Participant{
		ID:          p.ID,
		EventID:     p.EventID,
		UserID:      p.UserID,
		Role:        p.Role,
		EventRole:   p.EventRole,
		Status:      string(p.Status),
		WSDCID:      p.WSDCID,
		WSDCLevel:   p.WSDCLevel,
		Country:     p.Country,
		Age:         p.Age,
		PartnerName: p.PartnerName,
		CreatedAt:   p.CreatedAt,
	}
}

func participantDaoToDomain(p dao.Participant) domain.Participant {
	return domain.Participant{
		ID:          p.ID,
		EventID:     p.EventID,
		UserID:      p.UserID,
		Role:        p.Role,
		EventRole:   p.EventRole,
		Status:      domain.ParticipantStatus(p.Status),
		WSDCID:      p.WSDCID,
		WSDCLevel:   p.WSDCLevel,
		Country:     p.Country,
		Age:         p.Age,
		PartnerName: p.PartnerName,
		CreatedAt:   p.CreatedAt,
	}
}

func lineItemsDomainToDao(items []domain.ParticipantProduct) []dao.ParticipantProduct {
	daoItems := make([]dao.ParticipantProduct, len(items))
	for i, item := range items {
		daoItems[i] = dao.ParticipantProduct{
			ID:                 item.ID,
			ParticipantID:      item.ParticipantID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			Subtotal:           item.Subtotal,
			PaymentStatus:      string(item.PaymentStatus),
			ConfirmationStatus: string(item.ConfirmationStatus),
			CreatedAt:          item.CreatedAt,
		}
	}
	return daoItems
}

func lineItemsDaoToDomain(items []dao.ParticipantProduct) []domain.ParticipantProduct {
	domainItems := make([]domain.ParticipantProduct, len(items))
	for i, item := range items {
		domainItems[i] = domain.ParticipantProduct{
			ID:                 item.ID,
			ParticipantID:      item.ParticipantID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			Subtotal:           item.Subtotal,
			PaymentStatus:      domain.LineItemPaymentStatus(item.PaymentStatus),
			ConfirmationStatus: domain.LineItemConfirmationStatus(item.ConfirmationStatus),
			CreatedAt:          item.CreatedAt,
		}
	}
	return domainItems
}

func orderDomainToDao(o domain.Order) dao.Order {
	return dao.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		EventID:         o.EventID,
		ParticipantID:   o.ParticipantID,
		Total:           o.Total,
		Currency:        o.Currency,
		Status:          string(o.Status),
		PaymentIntentID: optional(o.PaymentIntentID),
		IdempotencyKey:  optional(o.IdempotencyKey),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func orderDaoToDomain(o dao.Order) domain.Order {
	return domain.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		EventID:         o.EventID,
		ParticipantID:   o.ParticipantID,
		Total:           o.Total,
		Currency:        o.Currency,
		Status:          domain.OrderStatus(o.Status),
		PaymentIntentID: deref(o.PaymentIntentID),
		IdempotencyKey:  deref(o.IdempotencyKey),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// optional stores empty strings as NULL so unique indexes ignore them.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
