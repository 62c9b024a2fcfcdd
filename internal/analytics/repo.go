package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/enums"
)

// ProductSales aggregates completed order lines for one product.
type ProductSales struct {
	ProductID uuid.UUID       `gorm:"column:product_id"`
	Name      string          `gorm:"column:name"`
	UnitsSold int64           `gorm:"column:units_sold"`
	Revenue   decimal.Decimal `gorm:"column:revenue"`
}

// RatingSummary aggregates review scores across a seller's products.
type RatingSummary struct {
	Average decimal.Decimal `gorm:"column:average"`
	Count   int64           `gorm:"column:count"`
}

// PaymentSummary aggregates captured payments for a seller's products.
type PaymentSummary struct {
	ChargeCount      int64 `gorm:"column:charge_count"`
	TotalAmountMinor int64 `gorm:"column:total_amount_minor"`
}

// Repository runs the read-only aggregate queries behind the seller
// dashboard. Everything is scoped to products owned by the seller.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SalesByProduct returns per-product units and revenue from completed
// orders, highest revenue first.
func (r *Repository) SalesByProduct(ctx context.Context, sellerID uuid.UUID) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, products.name AS name, "+
			"SUM(order_items.quantity) AS units_sold, SUM(order_items.price) AS revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("products.seller_id = ? AND orders.status = ?", sellerID, enums.OrderStatusSuccessful).
		Group("order_items.product_id, products.name").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ratings returns the average rating and review count across the
// seller's products.
func (r *Repository) Ratings(ctx context.Context, sellerID uuid.UUID) (*RatingSummary, error) {
	var summary RatingSummary
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("COALESCE(AVG(reviews.rating), 0) AS average, COUNT(reviews.id) AS count").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.seller_id = ?", sellerID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Payments returns how many charges touched the seller's products and
// the seller's share of the captured amounts, in minor units.
func (r *Repository) Payments(ctx context.Context, sellerID uuid.UUID) (*PaymentSummary, error) {
	var summary PaymentSummary
	err := r.db.WithContext(ctx).
		Table("payments").
		Select("COUNT(DISTINCT payments.id) AS charge_count, "+
			"COALESCE(CAST(SUM(order_items.price * 100) AS BIGINT), 0) AS total_amount_minor").
		Joins("JOIN order_items ON order_items.order_id = payments.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ? AND payments.status = ?", sellerID, enums.PaymentStatusSucceeded).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
