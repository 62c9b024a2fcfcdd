package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/inventory"
	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies cart mutations. Every stock movement happens at cart
// edit time, so a line in the cart always holds a matching reservation.
type Service interface {
	Get(ctx context.Context, buyerID uuid.UUID) (*DTO, error)
	AddItem(ctx context.Context, buyerID uuid.UUID, req AddItemRequest) (*DTO, error)
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*DTO, error)
	UpdateQuantities(ctx context.Context, buyerID uuid.UUID, req UpdateRequest) (*DTO, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	ledger *inventory.Ledger
}

// ServiceParams bundles the dependencies for the cart service.
type ServiceParams struct {
	TxRunner txRunner
	Repo     *Repository
	Ledger   *inventory.Ledger
}

// NewService validates dependencies and returns a cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger is required")
	}
	return &service{
		tx:     params.TxRunner,
		repo:   params.Repo,
		ledger: params.Ledger,
	}, nil
}

func (s *service) Get(ctx context.Context, buyerID uuid.UUID) (*DTO, error) {
	cart, err := s.repo.FindByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyDTO(buyerID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return fromModel(cart), nil
}

func (s *service) AddItem(ctx context.Context, buyerID uuid.UUID, req AddItemRequest) (*DTO, error) {
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *DTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		product, err := loadActiveProduct(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}

		cart, err := repo.FindByBuyer(ctx, buyerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
			}
			cart, err = repo.Create(ctx, &models.Cart{BuyerID: buyerID, TotalPrice: decimal.Zero})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
			}
		}

		// The delta is reserved before the line merge so an oversell
		// aborts the whole transaction.
		if err := ledger.Reserve(ctx, product.ID, req.Quantity); err != nil {
			return err
		}

		item, err := repo.FindItem(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			item.Quantity += req.Quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Quantity:  req.Quantity,
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}

		item.Price = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart item")
		}

		result, err = s.finalize(ctx, repo, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*DTO, error) {
	var result *DTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		cart, err := repo.FindByBuyer(ctx, buyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		item, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}

		if err := ledger.Release(ctx, productID, item.Quantity); err != nil {
			return err
		}
		if _, err := repo.DeleteItem(ctx, cart.ID, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
		}

		result, err = s.finalize(ctx, repo, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateQuantities(ctx context.Context, buyerID uuid.UUID, req UpdateRequest) (*DTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items to update")
	}
	seen := map[uuid.UUID]struct{}{}
	for _, update := range req.Items {
		if update.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		if _, dup := seen[update.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in update")
		}
		seen[update.ProductID] = struct{}{}
	}

	var result *DTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		cart, err := repo.FindByBuyer(ctx, buyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		for _, update := range req.Items {
			if err := s.applyQuantity(ctx, tx, repo, ledger, cart.ID, update); err != nil {
				return err
			}
		}

		result, err = s.finalize(ctx, repo, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) applyQuantity(ctx context.Context, tx *gorm.DB, repo *Repository, ledger *inventory.Ledger, cartID uuid.UUID, update QuantityUpdate) error {
	item, err := repo.FindItem(ctx, cartID, update.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart").
				WithDetails(map[string]any{"product_id": update.ProductID})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}

	delta := update.Quantity - item.Quantity
	switch {
	case delta > 0:
		if err := ledger.Reserve(ctx, update.ProductID, delta); err != nil {
			return err
		}
	case delta < 0:
		if err := ledger.Release(ctx, update.ProductID, -delta); err != nil {
			return err
		}
	}

	if update.Quantity == 0 {
		if _, err := repo.DeleteItem(ctx, cartID, update.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
		}
		return nil
	}

	product, err := loadActiveProduct(ctx, tx, update.ProductID)
	if err != nil {
		return err
	}
	item.Quantity = update.Quantity
	item.Price = product.Price.Mul(decimal.NewFromInt(int64(update.Quantity)))
	if err := repo.SaveItem(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart item")
	}
	return nil
}

// finalize recomputes the denormalized total and returns the fresh cart.
func (s *service) finalize(ctx context.Context, repo *Repository, cartID uuid.UUID) (*DTO, error) {
	items, err := repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	if err := repo.UpdateTotal(ctx, cartID, total); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart total")
	}

	var cart models.Cart
	if err := repo.db.WithContext(ctx).Preload("Items.Product").First(&cart, "id = ?", cartID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return fromModel(&cart), nil
}

func loadActiveProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &product, nil
}
