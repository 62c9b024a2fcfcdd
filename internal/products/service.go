package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/pagination"
)

type categoryChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service covers the public catalog and the seller's own listings.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]DTO, pagination.Page, error)
	Get(ctx context.Context, productID uuid.UUID) (*DTO, error)
	Create(ctx context.Context, sellerID uuid.UUID, req CreateRequest) (*DTO, error)
	Update(ctx context.Context, sellerID, productID uuid.UUID, req UpdateRequest) (*DTO, error)
	Delete(ctx context.Context, sellerID, productID uuid.UUID) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]DTO, pagination.Page, error)
}

type service struct {
	repo       *Repository
	categories categoryChecker
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	Repo       *Repository
	Categories categoryChecker
}

// NewService validates dependencies and returns a product service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category checker is required")
	}
	return &service{repo: params.Repo, categories: params.Categories}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]DTO, pagination.Page, error) {
	productsList, total, err := s.repo.ListPublic(ctx, filter, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return fromModels(productsList), pagination.NewPage(params, total), nil
}

// Get returns one product for the public catalog. Inactive listings are
// hidden, not reported as forbidden.
func (s *service) Get(ctx context.Context, productID uuid.UUID) (*DTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return fromModel(product), nil
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, req CreateRequest) (*DTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if !req.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if req.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		SellerID:    sellerID,
		CategoryID:  req.CategoryID,
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return fromModel(created), nil
}

func (s *service) Update(ctx context.Context, sellerID, productID uuid.UUID, req UpdateRequest) (*DTO, error) {
	product, err := s.loadOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return fromModel(product), nil
}

func (s *service) Delete(ctx context.Context, sellerID, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, sellerID, productID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]DTO, pagination.Page, error) {
	productsList, total, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list seller products")
	}
	return fromModels(productsList), pagination.NewPage(params, total), nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) loadOwned(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	return product, nil
}

func (s *service) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	exists, err := s.categories.Exists(ctx, *categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
	}
	return nil
}
