package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem marks a product a buyer wants to revisit later.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_wishlist_user_product,unique"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_wishlist_user_product,unique"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
