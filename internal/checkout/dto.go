package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request carries what checkout needs beyond the authenticated buyer: the
// shipping address to snapshot and the gateway payment token.
type Request struct {
	AddressID    uuid.UUID `json:"address_id" validate:"required"`
	PaymentToken string    `json:"payment_token" validate:"required"`
}

// Result reports the order produced by a successful checkout.
type Result struct {
	OrderID   uuid.UUID       `json:"order_id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}
