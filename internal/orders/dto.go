package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
)

// ItemDTO is the transport shape of one order line.
type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// PaymentDTO is the transport shape of the payment attached to an order.
type PaymentDTO struct {
	ID            uuid.UUID           `json:"id"`
	ChargeID      string              `json:"charge_id"`
	AmountMinor   int64               `json:"amount_minor"`
	Currency      enums.Currency      `json:"currency"`
	Status        enums.PaymentStatus `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	ReceiptURL    *string             `json:"receipt_url,omitempty"`
}

// ShippingDTO carries the denormalized shipping address on an order.
type ShippingDTO struct {
	Line1   string  `json:"line1"`
	Line2   *string `json:"line2,omitempty"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Zip     string  `json:"zip"`
	Phone   *string `json:"phone,omitempty"`
}

// DTO is the transport shape of an order.
type DTO struct {
	ID        uuid.UUID         `json:"id"`
	BuyerID   uuid.UUID         `json:"buyer_id"`
	Status    enums.OrderStatus `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	Shipping  ShippingDTO       `json:"shipping"`
	Items     []ItemDTO         `json:"items"`
	Payment   *PaymentDTO       `json:"payment,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// FromModel converts the persisted order into its transport shape.
func FromModel(order *models.Order) *DTO {
	if order == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	dto := &DTO{
		ID:      order.ID,
		BuyerID: order.BuyerID,
		Status:  order.Status,
		Total:   order.Total,
		Shipping: ShippingDTO{
			Line1:   order.ShipLine1,
			Line2:   order.ShipLine2,
			City:    order.ShipCity,
			State:   order.ShipState,
			Country: order.ShipCountry,
			Zip:     order.ShipZip,
			Phone:   order.ShipPhone,
		},
		Items:     items,
		CreatedAt: order.CreatedAt,
	}
	if order.Payment != nil {
		dto.Payment = &PaymentDTO{
			ID:            order.Payment.ID,
			ChargeID:      order.Payment.GatewayChargeID,
			AmountMinor:   order.Payment.AmountMinor,
			Currency:      order.Payment.Currency,
			Status:        order.Payment.Status,
			PaymentMethod: order.Payment.PaymentMethod,
			ReceiptURL:    order.Payment.ReceiptURL,
		}
	}
	return dto
}

// SellerOrderDTO is the seller's view of an order: the shared shipping and
// status fields plus only the lines that reference the seller's products.
type SellerOrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	Shipping    ShippingDTO       `json:"shipping"`
	Items       []ItemDTO         `json:"items"`
	SellerTotal decimal.Decimal   `json:"seller_total"`
	CreatedAt   time.Time         `json:"created_at"`
}

func sellerViewFromModel(order *models.Order, lines []models.OrderItem) *SellerOrderDTO {
	items := make([]ItemDTO, 0, len(lines))
	total := decimal.Zero
	for _, item := range lines {
		items = append(items, ItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
		total = total.Add(item.Price)
	}
	return &SellerOrderDTO{
		ID:     order.ID,
		Status: order.Status,
		Shipping: ShippingDTO{
			Line1:   order.ShipLine1,
			Line2:   order.ShipLine2,
			City:    order.ShipCity,
			State:   order.ShipState,
			Country: order.ShipCountry,
			Zip:     order.ShipZip,
			Phone:   order.ShipPhone,
		},
		Items:       items,
		SellerTotal: total,
		CreatedAt:   order.CreatedAt,
	}
}
