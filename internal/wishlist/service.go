package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db"
	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
)

type productChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// AddRequest carries the product to put on the wishlist.
type AddRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// ItemDTO is a wishlist entry with the product fields a listing needs.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  *string         `json:"image_url,omitempty"`
	InStock   bool            `json:"in_stock"`
	IsActive  bool            `json:"is_active"`
	AddedAt   time.Time       `json:"added_at"`
}

// Service manages a buyer's wishlist.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, req AddRequest) error
	List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo     *Repository
	products productChecker
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	Repo     *Repository
	Products productChecker
}

// NewService validates dependencies and returns a wishlist service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product checker is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

// Add puts the product on the wishlist. Re-adding is a no-op so clients
// can treat the call as idempotent.
func (s *service) Add(ctx context.Context, userID uuid.UUID, req AddRequest) error {
	if req.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	err := s.repo.Add(ctx, &models.WishlistItem{UserID: userID, ProductID: req.ProductID})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_wishlist_user_product") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}
	dtos := make([]ItemDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, ItemDTO{
			ProductID: entry.Product.ID,
			Name:      entry.Product.Name,
			Price:     entry.Product.Price,
			ImageURL:  entry.Product.ImageURL,
			InStock:   entry.Product.Stock > 0,
			IsActive:  entry.Product.IsActive,
			AddedAt:   entry.Item.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.repo.Remove(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wishlist item not found")
	}
	return nil
}
