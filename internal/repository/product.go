package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/repository/dao"
)

type ProductDAO interface {
	Insert(ctx context.Context, product dao.Product) (dao.Product, error)
	FindByID(ctx context.Context, eventID, productID uuid.UUID) (dao.Product, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]dao.Product, error)
	Update(ctx context.Context, product dao.Product) (dao.Product, error)
	Delete(ctx context.Context, eventID, productID uuid.UUID) error
}

type ProductRepository struct {
	dao ProductDAO
}

func NewProductRepository(dao ProductDAO) *ProductRepository {
	return &ProductRepository{
		dao: dao,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.dao.Insert(ctx, productDomainToDao(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}
	return productDaoToDomain(created), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, eventID, productID uuid.UUID) (domain.Product, error) {
	product, err := r.dao.FindByID(ctx, eventID, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}
	return productDaoToDomain(product), nil
}

func (r *ProductRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Product, error) {
	products, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}
	return productsDaoToDomain(products), nil
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	updated, err := r.dao.Update(ctx, productDomainToDao(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Update -> %w", err)
	}
	return productDaoToDomain(updated), nil
}

func (r *ProductRepository) Delete(ctx context.Context, eventID, productID uuid.UUID) error {
	if err := r.dao.Delete(ctx, eventID, productID); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}
	return nil
}
