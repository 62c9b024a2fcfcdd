package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/products"
	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:reviews_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Products: products.NewRepository(db),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     "widget",
		Price:    decimal.NewFromInt(10),
		Stock:    5,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedPurchase(t *testing.T, db *gorm.DB, buyerID, productID uuid.UUID) {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		BuyerID:     buyerID,
		Status:      enums.OrderStatusSuccessful,
		Total:       decimal.NewFromInt(10),
		ShipLine1:   "1 Main St",
		ShipCity:    "Springfield",
		ShipState:   "IL",
		ShipCountry: "US",
		ShipZip:     "62701",
		Items: []models.OrderItem{{
			ProductID:   productID,
			ProductName: "widget",
			UnitPrice:   decimal.NewFromInt(10),
			Quantity:    1,
			Price:       decimal.NewFromInt(10),
		}},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestCreateReviewRequiresPurchase(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db)

	_, err := svc.Create(ctx, uuid.New(), product.ID, CreateRequest{Rating: 5})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden without purchase, got %v", err)
	}
}

func TestCreateReviewVerifiedBuyer(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db)
	buyerID := uuid.New()
	seedPurchase(t, db, buyerID, product.ID)

	comment := "solid build"
	review, err := svc.Create(ctx, buyerID, product.ID, CreateRequest{Rating: 4, Comment: &comment})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if review.Rating != 4 || review.Comment == nil || *review.Comment != "solid build" {
		t.Fatalf("unexpected review: %+v", review)
	}
}

func TestCreateReviewTwiceConflicts(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db)
	buyerID := uuid.New()
	seedPurchase(t, db, buyerID, product.ID)

	if _, err := svc.Create(ctx, buyerID, product.ID, CreateRequest{Rating: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, buyerID, product.ID, CreateRequest{Rating: 2})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(ctx, uuid.New(), product.ID, CreateRequest{Rating: rating})
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("rating %d: expected validation error, got %v", rating, err)
		}
	}

	_, err := svc.Create(ctx, uuid.New(), uuid.New(), CreateRequest{Rating: 3})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing product, got %v", err)
	}
}

func TestListAndDeleteReview(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db)
	buyerID := uuid.New()
	seedPurchase(t, db, buyerID, product.ID)

	created, err := svc.Create(ctx, buyerID, product.ID, CreateRequest{Rating: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, page, err := svc.ListByProduct(ctx, product.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || page.Total != 1 {
		t.Fatalf("expected one review, got %d (total %d)", len(list), page.Total)
	}

	if err := svc.Delete(ctx, uuid.New(), created.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	if err := svc.Delete(ctx, buyerID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, _, err = svc.ListByProduct(ctx, product.ID, pagination.Params{})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestUpdateReviewOwnershipAndPartialEdit(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	buyerID := uuid.New()
	product := seedProduct(t, db)
	seedPurchase(t, db, buyerID, product.ID)

	comment := "solid hammer"
	created, err := svc.Create(ctx, buyerID, product.ID, CreateRequest{Rating: 5, Comment: &comment})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	rating := 3
	updated, err := svc.Update(ctx, buyerID, created.ID, UpdateRequest{Rating: &rating})
	if err != nil {
		t.Fatalf("update review: %v", err)
	}
	if updated.Rating != 3 {
		t.Fatalf("expected rating 3, got %d", updated.Rating)
	}
	if updated.Comment == nil || *updated.Comment != comment {
		t.Fatal("expected comment to survive a rating-only edit")
	}

	_, err = svc.Update(ctx, uuid.New(), created.ID, UpdateRequest{Rating: &rating})
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for a foreign review, got %v", err)
	}

	bad := 6
	_, err = svc.Update(ctx, buyerID, created.ID, UpdateRequest{Rating: &bad})
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for rating 6, got %v", err)
	}

	_, err = svc.Update(ctx, buyerID, uuid.New(), UpdateRequest{Rating: &rating})
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for a missing review, got %v", err)
	}
}
