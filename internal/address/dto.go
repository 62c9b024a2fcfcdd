package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
)

// CreateRequest carries a new shipping address.
type CreateRequest struct {
	Line1   string  `json:"line1" validate:"required,max=200"`
	Line2   *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City    string  `json:"city" validate:"required,max=100"`
	State   string  `json:"state" validate:"required,max=100"`
	Country string  `json:"country" validate:"required,max=100"`
	Zip     string  `json:"zip" validate:"required,max=20"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// UpdateRequest carries replacement fields for an existing address.
type UpdateRequest struct {
	Line1   string  `json:"line1" validate:"required,max=200"`
	Line2   *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City    string  `json:"city" validate:"required,max=100"`
	State   string  `json:"state" validate:"required,max=100"`
	Country string  `json:"country" validate:"required,max=100"`
	Zip     string  `json:"zip" validate:"required,max=20"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// DTO is the API shape of a shipping address.
type DTO struct {
	ID        uuid.UUID `json:"id"`
	Line1     string    `json:"line1"`
	Line2     *string   `json:"line2,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	Zip       string    `json:"zip"`
	Phone     *string   `json:"phone,omitempty"`
	Selected  bool      `json:"selected"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromModel(addr *models.Address) *DTO {
	return &DTO{
		ID:        addr.ID,
		Line1:     addr.Line1,
		Line2:     addr.Line2,
		City:      addr.City,
		State:     addr.State,
		Country:   addr.Country,
		Zip:       addr.Zip,
		Phone:     addr.Phone,
		Selected:  addr.Selected,
		CreatedAt: addr.CreatedAt,
		UpdatedAt: addr.UpdatedAt,
	}
}
