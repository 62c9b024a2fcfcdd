package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a verified-purchase product rating, one per buyer per product.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_reviews_product_user,unique"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_reviews_product_user,unique"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
