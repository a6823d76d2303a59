package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, eventID, productID uuid.UUID) (domain.Product, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, eventID, productID uuid.UUID) error
}

type StaffRepository interface {
	IsEventDirector(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

type ProductService struct {
	repo  ProductRepository
	staff StaffRepository
}

func NewProductService(repo ProductRepository, staff StaffRepository) *ProductService {
	return &ProductService{
		repo:  repo,
		staff: staff,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, eventID uuid.UUID) ([]domain.Product, error) {
	products, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEvent -> %w", err)
	}
	return products, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, userID uuid.UUID, product domain.Product) (domain.Product, error) {
	if err := s.requireDirector(ctx, product.EventID, userID); err != nil {
		return domain.Product{}, err
	}

	product.ID = uuid.Nil
	product.QuantitySold = 0
	product.Currency = strings.ToUpper(product.Currency)

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.Create -> %w", err)
	}
	return created, nil
}

// UpdateProduct replaces the editable fields of a product. quantity_sold is
// owned by registrations and never taken from the caller.
func (s *ProductService) UpdateProduct(ctx context.Context, userID uuid.UUID, product domain.Product) (domain.Product, error) {
	if err := s.requireDirector(ctx, product.EventID, userID); err != nil {
		return domain.Product{}, err
	}

	product.Currency = strings.ToUpper(product.Currency)
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.Update -> %w", err)
	}
	return updated, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, userID, eventID, productID uuid.UUID) error {
	if err := s.requireDirector(ctx, eventID, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, eventID, productID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}
	return nil
}

func (s *ProductService) requireDirector(ctx context.Context, eventID, userID uuid.UUID) error {
	ok, err := s.staff.IsEventDirector(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("s.staff.IsEventDirector -> %w", err)
	}
	if !ok {
		return ErrNotEventStaff
	}
	return nil
}
