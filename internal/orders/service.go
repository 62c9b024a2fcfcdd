package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/pagination"
)

// Service exposes order reads for buyers and sellers. The seller view is
// scoped to the lines that reference the seller's products.
type Service interface {
	Get(ctx context.Context, buyerID, orderID uuid.UUID) (*DTO, error)
	List(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]DTO, pagination.Page, error)
	GetForSeller(ctx context.Context, sellerID, orderID uuid.UUID) (*SellerOrderDTO, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]SellerOrderDTO, pagination.Page, error)
}

type service struct {
	repo *Repository
}

// NewService validates dependencies and returns an orders service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, buyerID, orderID uuid.UUID) (*DTO, error) {
	order, err := s.repo.FindByIDAndBuyer(ctx, orderID, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]DTO, pagination.Page, error) {
	orders, total, err := s.repo.ListByBuyer(ctx, buyerID, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	dtos := make([]DTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *FromModel(&orders[i]))
	}
	return dtos, pagination.NewPage(params, total), nil
}

// GetForSeller loads one order from the seller's side. An order with none
// of the seller's products is indistinguishable from a missing one.
func (s *service) GetForSeller(ctx context.Context, sellerID, orderID uuid.UUID) (*SellerOrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	itemsByOrder, err := s.repo.SellerItems(ctx, sellerID, []uuid.UUID{order.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
	}
	lines := itemsByOrder[order.ID]
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return sellerViewFromModel(order, lines), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]SellerOrderDTO, pagination.Page, error) {
	orders, total, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
	}
	itemsByOrder, err := s.repo.SellerItems(ctx, sellerID, ids)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
	}
	dtos := make([]SellerOrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *sellerViewFromModel(&orders[i], itemsByOrder[orders[i].ID]))
	}
	return dtos, pagination.NewPage(params, total), nil
}
