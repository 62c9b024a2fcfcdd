package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID uuid.UUID, total string, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		BuyerID:     buyerID,
		Status:      enums.OrderStatusSuccessful,
		Total:       decimal.RequireFromString(total),
		ShipLine1:   "1 Main St",
		ShipCity:    "Springfield",
		ShipState:   "IL",
		ShipCountry: "US",
		ShipZip:     "62701",
		Items: []models.OrderItem{
			{
				ProductID:   uuid.New(),
				ProductName: "Claw Hammer",
				UnitPrice:   decimal.RequireFromString(total),
				Quantity:    1,
				Price:       decimal.RequireFromString(total),
			},
		},
		CreatedAt: createdAt,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	payment := &models.Payment{
		OrderID:         order.ID,
		BuyerID:         buyerID,
		GatewayChargeID: "ch_" + uuid.NewString()[:8],
		AmountMinor:     decimal.RequireFromString(total).Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:        enums.CurrencyUSD,
		Status:          enums.PaymentStatusSucceeded,
		PaymentMethod:   "card",
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return order
}

func TestServiceGetLoadsItemsAndPayment(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	buyerID := uuid.New()
	order := seedOrder(t, db, buyerID, "42.50", time.Now())

	got, err := svc.Get(ctx, buyerID, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got.Items))
	}
	if got.Items[0].ProductName != "Claw Hammer" {
		t.Fatalf("unexpected product name %q", got.Items[0].ProductName)
	}
	if got.Payment == nil {
		t.Fatal("expected payment to be attached")
	}
	if got.Payment.AmountMinor != 4250 {
		t.Fatalf("expected amount 4250, got %d", got.Payment.AmountMinor)
	}
	if !got.Total.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("unexpected total %s", got.Total)
	}
}

func TestServiceGetHidesForeignOrders(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), "10.00", time.Now())

	_, err = svc.Get(ctx, uuid.New(), order.ID)
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceListNewestFirstWithPagination(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	buyerID := uuid.New()
	base := time.Now().Add(-time.Hour)
	oldest := seedOrder(t, db, buyerID, "10.00", base)
	middle := seedOrder(t, db, buyerID, "20.00", base.Add(time.Minute))
	newest := seedOrder(t, db, buyerID, "30.00", base.Add(2*time.Minute))
	seedOrder(t, db, uuid.New(), "99.00", base)

	dtos, page, err := svc.List(ctx, buyerID, pagination.Params{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Total)
	}
	if page.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", page.TotalPages)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 orders on first page, got %d", len(dtos))
	}
	if dtos[0].ID != newest.ID || dtos[1].ID != middle.ID {
		t.Fatal("expected newest orders first")
	}

	dtos, _, err = svc.List(ctx, buyerID, pagination.Params{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("list orders page 2: %v", err)
	}
	if len(dtos) != 1 || dtos[0].ID != oldest.ID {
		t.Fatal("expected oldest order on second page")
	}
}

func seedSellerProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, name string, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID: sellerID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedOrderWithLines(t *testing.T, db *gorm.DB, buyerID uuid.UUID, lines map[*models.Product]int) *models.Order {
	t.Helper()
	order := &models.Order{
		BuyerID:     buyerID,
		Status:      enums.OrderStatusSuccessful,
		ShipLine1:   "1 Main St",
		ShipCity:    "Springfield",
		ShipState:   "IL",
		ShipCountry: "US",
		ShipZip:     "62701",
	}
	total := decimal.Zero
	for product, qty := range lines {
		linePrice := product.Price.Mul(decimal.NewFromInt(int64(qty)))
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    qty,
			Price:       linePrice,
		})
		total = total.Add(linePrice)
	}
	order.Total = total
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestServiceSellerViewScopesLinesToSeller(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	sellerID := uuid.New()
	otherSellerID := uuid.New()
	hammer := seedSellerProduct(t, db, sellerID, "Claw Hammer", "10.00")
	tape := seedSellerProduct(t, db, otherSellerID, "Tape Measure", "5.00")

	mixed := seedOrderWithLines(t, db, uuid.New(), map[*models.Product]int{hammer: 2, tape: 1})
	foreign := seedOrderWithLines(t, db, uuid.New(), map[*models.Product]int{tape: 3})

	list, page, err := svc.ListForSeller(ctx, sellerID, pagination.Params{})
	if err != nil {
		t.Fatalf("list for seller: %v", err)
	}
	if page.Total != 1 || len(list) != 1 {
		t.Fatalf("expected exactly the mixed order, got total=%d len=%d", page.Total, len(list))
	}
	if list[0].ID != mixed.ID {
		t.Fatal("expected the order containing the seller's product")
	}
	if len(list[0].Items) != 1 || list[0].Items[0].ProductName != "Claw Hammer" {
		t.Fatalf("expected only the seller's line, got %+v", list[0].Items)
	}
	if !list[0].SellerTotal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected seller total 20.00, got %s", list[0].SellerTotal)
	}

	detail, err := svc.GetForSeller(ctx, sellerID, mixed.ID)
	if err != nil {
		t.Fatalf("get for seller: %v", err)
	}
	if len(detail.Items) != 1 || detail.Items[0].ProductID != hammer.ID {
		t.Fatal("expected the detail view scoped to the seller's line")
	}

	_, err = svc.GetForSeller(ctx, sellerID, foreign.ID)
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for an order without the seller's products, got %v", err)
	}
}
