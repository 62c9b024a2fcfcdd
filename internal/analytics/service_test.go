package analytics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:analytics_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Review{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, name string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SellerID: sellerID,
		Name:     name,
		Price:    decimal.NewFromInt(10),
		Stock:    5,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, lines map[*models.Product]int) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		BuyerID:     uuid.New(),
		Status:      status,
		Total:       decimal.Zero,
		ShipLine1:   "1 Main St",
		ShipCity:    "Springfield",
		ShipState:   "IL",
		ShipCountry: "US",
		ShipZip:     "62701",
	}
	for product, qty := range lines {
		price := product.Price.Mul(decimal.NewFromInt(int64(qty)))
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    qty,
			Price:       price,
		})
		order.Total = order.Total.Add(price)
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	payment := &models.Payment{
		OrderID:         order.ID,
		BuyerID:         order.BuyerID,
		GatewayChargeID: "ch_" + uuid.NewString(),
		AmountMinor:     order.Total.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:        enums.CurrencyUSD,
		Status:          enums.PaymentStatusSucceeded,
		PaymentMethod:   "card",
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return order
}

func seedReview(t *testing.T, db *gorm.DB, productID uuid.UUID, rating int) {
	t.Helper()
	review := &models.Review{ProductID: productID, UserID: uuid.New(), Rating: rating}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
}

func TestSellerSummaryAggregatesSales(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	sellerID := uuid.New()
	widget := seedProduct(t, db, sellerID, "widget")
	gadget := seedProduct(t, db, sellerID, "gadget")
	foreign := seedProduct(t, db, uuid.New(), "foreign")

	seedOrder(t, db, enums.OrderStatusSuccessful, map[*models.Product]int{widget: 2, foreign: 1})
	seedOrder(t, db, enums.OrderStatusSuccessful, map[*models.Product]int{widget: 1, gadget: 3})

	summary, err := svc.SellerSummary(ctx, sellerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalRevenue.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected revenue 60, got %s", summary.TotalRevenue)
	}
	if summary.TotalUnitsSold != 6 {
		t.Fatalf("expected 6 units, got %d", summary.TotalUnitsSold)
	}
	if len(summary.ProductSales) != 2 {
		t.Fatalf("expected 2 product rows, got %d", len(summary.ProductSales))
	}
	for _, row := range summary.ProductSales {
		if row.ProductID == foreign.ID {
			t.Fatal("foreign seller products must be excluded")
		}
	}
	if summary.ChargeCount != 2 {
		t.Fatalf("expected 2 charges, got %d", summary.ChargeCount)
	}
}

func TestSellerSummaryIgnoresCancelledOrders(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	sellerID := uuid.New()
	widget := seedProduct(t, db, sellerID, "widget")

	seedOrder(t, db, enums.OrderStatusCancelled, map[*models.Product]int{widget: 4})

	summary, err := svc.SellerSummary(ctx, sellerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalRevenue.IsZero() || summary.TotalUnitsSold != 0 {
		t.Fatalf("cancelled orders must not count, got %+v", summary)
	}
}

func TestSellerSummaryRatingScore(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	sellerID := uuid.New()
	widget := seedProduct(t, db, sellerID, "widget")
	gadget := seedProduct(t, db, sellerID, "gadget")

	seedReview(t, db, widget.ID, 5)
	seedReview(t, db, gadget.ID, 3)

	summary, err := svc.SellerSummary(ctx, sellerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.ReviewCount != 2 {
		t.Fatalf("expected 2 reviews, got %d", summary.ReviewCount)
	}
	if !summary.AverageRating.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected average 4, got %s", summary.AverageRating)
	}
	if summary.RatingScore != 80 {
		t.Fatalf("expected score 80, got %d", summary.RatingScore)
	}
}

func TestSellerSummaryEmpty(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	summary, err := svc.SellerSummary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalRevenue.IsZero() || summary.ReviewCount != 0 || summary.RatingScore != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
