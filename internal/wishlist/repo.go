package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
)

// Entry pairs a wishlist row with its product for listing.
type Entry struct {
	Item    models.WishlistItem
	Product models.Product
}

// Repository exposes persistence operations for buyer wishlists.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a wishlist entry.
func (r *Repository) Add(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// List returns the user's wishlist entries joined with their products,
// newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	var productRows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productRows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(productRows))
	for _, product := range productRows {
		byID[product.ID] = product
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, Entry{Item: item, Product: product})
	}
	return entries, nil
}

// Remove deletes the user's wishlist entry for the product. It reports
// whether a row was deleted.
func (r *Repository) Remove(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
