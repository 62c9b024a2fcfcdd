package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:address_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Address{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(ServiceParams{
		TxRunner: gormTxRunner{db: db},
		Repo:     NewRepository(db),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func createRequest() CreateRequest {
	return CreateRequest{
		Line1:   "1 Main St",
		City:    "Springfield",
		State:   "IL",
		Country: "US",
		Zip:     "62701",
	}
}

func TestCreateAndGetAddress(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated address id")
	}
	if created.Selected {
		t.Fatal("new address must not be selected")
	}

	got, err := svc.Get(ctx, userID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Line1 != "1 Main St" || got.Zip != "62701" {
		t.Fatalf("unexpected address: %+v", got)
	}
}

func TestGetAddressOwnedByAnotherUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAddress(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, userID, created.ID, UpdateRequest{
		Line1:   "2 Oak Ave",
		City:    "Chicago",
		State:   "IL",
		Country: "US",
		Zip:     "60601",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Line1 != "2 Oak Ave" || updated.City != "Chicago" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestDeleteAddress(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, userID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	err = svc.Delete(ctx, userID, created.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSelectAddressIsExclusive(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, createRequest())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, userID, createRequest())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := svc.Select(ctx, userID, first.ID); err != nil {
		t.Fatalf("select first: %v", err)
	}
	selected, err := svc.Select(ctx, userID, second.ID)
	if err != nil {
		t.Fatalf("select second: %v", err)
	}
	if !selected.Selected {
		t.Fatal("expected second address selected")
	}

	var count int64
	if err := db.Model(&models.Address{}).
		Where("user_id = ? AND selected = ?", userID, true).
		Count(&count).Error; err != nil {
		t.Fatalf("count selected: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one selected address, got %d", count)
	}
}

func TestSelectAddressNotOwned(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Select(ctx, uuid.New(), created.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOrdersSelectedFirst(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, createRequest())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := svc.Create(ctx, userID, createRequest()); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := svc.Select(ctx, userID, first.ID); err != nil {
		t.Fatalf("select: %v", err)
	}

	addrs, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addrs))
	}
	if addrs[0].ID != first.ID || !addrs[0].Selected {
		t.Fatalf("expected selected address first, got %+v", addrs[0])
	}
}
