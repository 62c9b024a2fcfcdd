package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a buyer's shipping addresses.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*DTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]DTO, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*DTO, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, req UpdateRequest) (*DTO, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	Select(ctx context.Context, userID, addressID uuid.UUID) (*DTO, error)
}

type service struct {
	tx   txRunner
	repo *Repository
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	TxRunner txRunner
	Repo     *Repository
}

// NewService validates dependencies and returns an address service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	return &service{tx: params.TxRunner, repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*DTO, error) {
	addr := &models.Address{
		UserID:  userID,
		Line1:   req.Line1,
		Line2:   req.Line2,
		City:    req.City,
		State:   req.State,
		Country: req.Country,
		Zip:     req.Zip,
		Phone:   req.Phone,
	}
	created, err := s.repo.Create(ctx, addr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return fromModel(created), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]DTO, error) {
	addrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	dtos := make([]DTO, 0, len(addrs))
	for i := range addrs {
		dtos = append(dtos, *fromModel(&addrs[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*DTO, error) {
	addr, err := s.loadOwned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	return fromModel(addr), nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, req UpdateRequest) (*DTO, error) {
	addr, err := s.loadOwned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	addr.Line1 = req.Line1
	addr.Line2 = req.Line2
	addr.City = req.City
	addr.State = req.State
	addr.Country = req.Country
	addr.Zip = req.Zip
	addr.Phone = req.Phone

	if err := s.repo.Save(ctx, addr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
	}
	return fromModel(addr), nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, addressID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

// Select makes the address the buyer's shipping default. Clearing the old
// selection and marking the new one happen in one transaction so at most
// one address ends up selected.
func (s *service) Select(ctx context.Context, userID, addressID uuid.UUID) (*DTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeselectAll(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deselect addresses")
		}
		selected, err := repo.MarkSelected(ctx, addressID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "select address")
		}
		if !selected {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, addressID)
}

func (s *service) loadOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	addr, err := s.repo.FindByIDAndUser(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	return addr, nil
}
