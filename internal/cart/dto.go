package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
)

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// QuantityUpdate sets the desired quantity for one cart line. Zero removes it.
type QuantityUpdate struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=0"`
}

// UpdateRequest carries a bulk quantity update applied atomically.
type UpdateRequest struct {
	Items []QuantityUpdate `json:"items" validate:"required,min=1,dive"`
}

// ItemDTO is the transport shape of one cart line. Name, image, and unit
// price come from the live product row; Price is the line subtotal captured
// when the line last changed.
type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    *string         `json:"image_url,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// DTO is the transport shape of a cart.
type DTO struct {
	ID         uuid.UUID       `json:"id"`
	BuyerID    uuid.UUID       `json:"buyer_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []ItemDTO       `json:"items"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func fromModel(cart *models.Cart) *DTO {
	if cart == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		line := ItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ImageURL = item.Product.ImageURL
			line.UnitPrice = item.Product.Price
		} else if item.Quantity > 0 {
			line.UnitPrice = item.Price.Div(decimal.NewFromInt(int64(item.Quantity)))
		}
		items = append(items, line)
	}
	return &DTO{
		ID:         cart.ID,
		BuyerID:    cart.BuyerID,
		TotalPrice: cart.TotalPrice,
		Items:      items,
		UpdatedAt:  cart.UpdatedAt,
	}
}

func emptyDTO(buyerID uuid.UUID) *DTO {
	return &DTO{
		BuyerID:    buyerID,
		TotalPrice: decimal.Zero,
		Items:      []ItemDTO{},
	}
}
