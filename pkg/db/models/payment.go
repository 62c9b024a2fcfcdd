package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
)

// Payment records the gateway result for an order. AmountMinor is the
// charged amount in the currency's minor unit (cents).
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	BuyerID         uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	GatewayChargeID string              `gorm:"column:gateway_charge_id;not null"`
	AmountMinor     int64               `gorm:"column:amount_minor;not null"`
	Currency        enums.Currency      `gorm:"column:currency;not null"`
	Status          enums.PaymentStatus `gorm:"column:status;not null"`
	PaymentMethod   string              `gorm:"column:payment_method;not null"`
	ReceiptURL      *string             `gorm:"column:receipt_url"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}
