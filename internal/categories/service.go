package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db"
	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
)

// UpsertRequest carries a category name for create and rename.
type UpsertRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// DTO is the API shape of a category.
type DTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service manages catalog categories. Writes are admin only; the role
// check happens at the routing layer.
type Service interface {
	Create(ctx context.Context, req UpsertRequest) (*DTO, error)
	List(ctx context.Context) ([]DTO, error)
	Update(ctx context.Context, categoryID uuid.UUID, req UpsertRequest) (*DTO, error)
	Delete(ctx context.Context, categoryID uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService validates dependencies and returns a category service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, req UpsertRequest) (*DTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	created, err := s.repo.Create(ctx, &models.Category{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_categories_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return fromModel(created), nil
}

func (s *service) List(ctx context.Context) ([]DTO, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	dtos := make([]DTO, 0, len(cats))
	for i := range cats {
		dtos = append(dtos, *fromModel(&cats[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, categoryID uuid.UUID, req UpsertRequest) (*DTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	category, err := s.repo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	category.Name = name
	if err := s.repo.Save(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "idx_categories_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}
	return fromModel(category), nil
}

func (s *service) Delete(ctx context.Context, categoryID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

func fromModel(category *models.Category) *DTO {
	return &DTO{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}
