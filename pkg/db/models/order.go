package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
)

// Order is the immutable record produced by a successful checkout. The
// shipping address is denormalized so later address edits cannot rewrite
// order history.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID     uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;not null"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	ShipLine1   string            `gorm:"column:ship_line1;not null"`
	ShipLine2   *string           `gorm:"column:ship_line2"`
	ShipCity    string            `gorm:"column:ship_city;not null"`
	ShipState   string            `gorm:"column:ship_state;not null"`
	ShipCountry string            `gorm:"column:ship_country;not null"`
	ShipZip     string            `gorm:"column:ship_zip;not null"`
	ShipPhone   *string           `gorm:"column:ship_phone"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment     *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
