package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInventoryConflict = errors.New("not enough inventory left")
	ErrQuantityBelowSold = errors.New("quantity_total cannot be lower than quantity_sold")
)

type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"not null"`
	Description   string
	ProductType   string `gorm:"not null"`
	Price         int64  `gorm:"not null;check:chk_products_price,price >= 0"`
	Currency      string `gorm:"size:3;not null"`
	QuantityTotal *int
	QuantitySold  int  `gorm:"not null;default:0;check:chk_products_quantity_sold,quantity_total IS NULL OR quantity_sold <= quantity_total"`
	IsActive      bool `gorm:"not null"`
	SaleStart     *time.Time
	SaleEnd       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProductDAO struct {
	db *gorm.DB
}

func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{
		db: db,
	}
}

func (d *ProductDAO) Insert(ctx context.Context, product Product) (Product, error) {
	if err := d.db.WithContext(ctx).Create(&product).Error; err != nil {
		return Product{}, err
	}
	return product, nil
}

func (d *ProductDAO) FindByID(ctx context.Context, eventID, productID uuid.UUID) (Product, error) {
	var product Product
	err := d.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", productID, eventID).
		First(&product).Error
	if err != nil {
		return Product{}, notFound(err)
	}
	return product, nil
}

func (d *ProductDAO) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]Product, error) {
	var products []Product
	err := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&products).Error
	return products, err
}

// FindByIDs returns the products of eventID among ids. Ids belonging to
// another event are silently absent from the result.
func (d *ProductDAO) FindByIDs(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]Product, error) {
	var products []Product
	err := d.db.WithContext(ctx).
		Where("event_id = ? AND id IN ?", eventID, ids).
		Find(&products).Error
	return products, err
}

// Update overwrites the editable columns. quantity_sold is never written
// here; the row is only updated while quantity_total still covers it.
func (d *ProductDAO) Update(ctx context.Context, product Product) (Product, error) {
	query := d.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND event_id = ?", product.ID, product.EventID)
	if product.QuantityTotal != nil {
		query = query.Where("quantity_sold <= ?", *product.QuantityTotal)
	}

	result := query.Updates(map[string]any{
		"name":           product.Name,
		"description":    product.Description,
		"product_type":   product.ProductType,
		"price":          product.Price,
		"currency":       product.Currency,
		"quantity_total": product.QuantityTotal,
		"is_active":      product.IsActive,
		"sale_start":     product.SaleStart,
		"sale_end":       product.SaleEnd,
		"updated_at":     time.Now().UTC(),
	})
	if result.Error != nil {
		return Product{}, result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, product.EventID, product.ID); err != nil {
			return Product{}, err
		}
		return Product{}, ErrQuantityBelowSold
	}

	return d.FindByID(ctx, product.EventID, product.ID)
}

func (d *ProductDAO) Delete(ctx context.Context, eventID, productID uuid.UUID) error {
	result := d.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", productID, eventID).
		Delete(&Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementSold reserves quantity units in a single conditional statement.
// No row is touched when the product is inactive, off sale at now, or the
// increment would exceed quantity_total; that case returns ErrInventoryConflict.
func (d *ProductDAO) IncrementSold(ctx context.Context, productID uuid.UUID, quantity int, now time.Time) error {
	result := d.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND is_active", productID).
		Where("(sale_start IS NULL OR sale_start <= ?) AND (sale_end IS NULL OR sale_end >= ?)", now, now).
		Where("quantity_total IS NULL OR quantity_sold + ? <= quantity_total", quantity).
		UpdateColumn("quantity_sold", gorm.Expr("quantity_sold + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInventoryConflict
	}
	return nil
}
