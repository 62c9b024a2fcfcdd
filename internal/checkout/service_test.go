package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/address"
	"github.com/shopit-dev/shopit-backend/internal/cart"
	"github.com/shopit-dev/shopit-backend/internal/orders"
	"github.com/shopit-dev/shopit-backend/internal/payments"
	"github.com/shopit-dev/shopit-backend/pkg/db/models"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type failingTxRunner struct{}

func (failingTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fmt.Errorf("connection reset")
}

type dbProductLoader struct {
	db *gorm.DB
}

func (l dbProductLoader) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := l.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

type stubGateway struct {
	result   *payments.ChargeResult
	err      error
	requests []payments.ChargeRequest
}

func (g *stubGateway) Charge(ctx context.Context, req payments.ChargeRequest) (*payments.ChargeResult, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	res := *g.result
	res.AmountMinor = req.AmountMinor
	res.Currency = req.Currency
	return &res, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, gateway payments.Gateway, tx txRunner) Service {
	t.Helper()
	if tx == nil {
		tx = gormTxRunner{db: db}
	}
	svc, err := NewService(ServiceParams{
		TxRunner:    tx,
		CartRepo:    cart.NewRepository(db),
		OrdersRepo:  orders.NewRepository(db),
		AddressRepo: address.NewRepository(db),
		Products:    dbProductLoader{db: db},
		Gateway:     gateway,
		Currency:    enums.CurrencyUSD,
		Logger:      logger.New(logger.Options{ServiceName: "checkout-test"}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Name:     name,
		Price:    decimal.NewFromFloat(price),
		Stock:    stock,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedCart(t *testing.T, db *gorm.DB, buyerID uuid.UUID, lines map[*models.Product]int) *models.Cart {
	t.Helper()
	buyerCart := &models.Cart{ID: uuid.New(), BuyerID: buyerID}
	total := decimal.Zero
	for product, qty := range lines {
		linePrice := product.Price.Mul(decimal.NewFromInt(int64(qty)))
		buyerCart.Items = append(buyerCart.Items, models.CartItem{
			ProductID: product.ID,
			Quantity:  qty,
			Price:     linePrice,
		})
		total = total.Add(linePrice)
	}
	buyerCart.TotalPrice = total
	if err := db.Create(buyerCart).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return buyerCart
}

func seedAddress(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Address {
	t.Helper()
	addr := &models.Address{
		ID:      uuid.New(),
		UserID:  userID,
		Line1:   "1 Main St",
		City:    "Springfield",
		State:   "IL",
		Country: "US",
		Zip:     "62701",
	}
	if err := db.Create(addr).Error; err != nil {
		t.Fatalf("seed address: %v", err)
	}
	return addr
}

func successGateway() *stubGateway {
	return &stubGateway{result: &payments.ChargeResult{
		ChargeID:      "ch_test_1",
		Status:        enums.PaymentStatusSucceeded,
		PaymentMethod: "card",
		ReceiptURL:    "https://pay.example.com/r/1",
	}}
}

func TestCheckoutMaterializesOrderAndClearsCart(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := successGateway()
	svc := newTestService(t, db, gateway, nil)
	ctx := context.Background()
	buyerID := uuid.New()

	widget := seedProduct(t, db, "widget", 10.50, 3)
	gadget := seedProduct(t, db, "gadget", 4.00, 8)
	seedCart(t, db, buyerID, map[*models.Product]int{widget: 2, gadget: 1})
	addr := seedAddress(t, db, buyerID)

	result, err := svc.Execute(ctx, buyerID, Request{AddressID: addr.ID, PaymentToken: "tok_visa"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Total.Equal(decimal.NewFromFloat(25.00)) {
		t.Fatalf("expected total 25.00, got %s", result.Total)
	}
	if result.ItemCount != 2 {
		t.Fatalf("expected 2 order items, got %d", result.ItemCount)
	}
	if len(gateway.requests) != 1 || gateway.requests[0].AmountMinor != 2500 {
		t.Fatalf("unexpected charge requests: %+v", gateway.requests)
	}

	var order models.Order
	if err := db.Preload("Items").Preload("Payment").First(&order, "id = ?", result.OrderID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != enums.OrderStatusSuccessful {
		t.Fatalf("expected successful order, got %s", order.Status)
	}
	if order.ShipLine1 != addr.Line1 || order.ShipZip != addr.Zip {
		t.Fatalf("shipping snapshot mismatch: %+v", order)
	}
	if order.Payment == nil || order.Payment.GatewayChargeID != "ch_test_1" {
		t.Fatalf("payment not recorded: %+v", order.Payment)
	}
	if order.Payment.AmountMinor != 2500 {
		t.Fatalf("expected amount 2500, got %d", order.Payment.AmountMinor)
	}
	for _, item := range order.Items {
		if item.ProductName == "" || item.UnitPrice.IsZero() {
			t.Fatalf("order item missing product snapshot: %+v", item)
		}
	}

	var cartCount int64
	if err := db.Model(&models.Cart{}).Where("buyer_id = ?", buyerID).Count(&cartCount).Error; err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if cartCount != 0 {
		t.Fatal("expected cart deleted after checkout")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", widget.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("checkout must not touch stock, got %d", reloaded.Stock)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := successGateway()
	svc := newTestService(t, db, gateway, nil)
	buyerID := uuid.New()
	addr := seedAddress(t, db, buyerID)

	_, err := svc.Execute(context.Background(), buyerID, Request{AddressID: addr.ID, PaymentToken: "tok_visa"})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(gateway.requests) != 0 {
		t.Fatal("gateway must not be called for an empty cart")
	}
}

func TestCheckoutAddressOwnedByAnotherUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := successGateway()
	svc := newTestService(t, db, gateway, nil)
	ctx := context.Background()
	buyerID := uuid.New()

	widget := seedProduct(t, db, "widget", 5.00, 3)
	seedCart(t, db, buyerID, map[*models.Product]int{widget: 1})
	foreignAddr := seedAddress(t, db, uuid.New())

	_, err := svc.Execute(ctx, buyerID, Request{AddressID: foreignAddr.ID, PaymentToken: "tok_visa"})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(gateway.requests) != 0 {
		t.Fatal("gateway must not be called before address validation")
	}
}

func TestCheckoutGatewayFailureLeavesCartIntact(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := &stubGateway{err: pkgerrors.New(pkgerrors.CodeDependency, "payment provider unavailable")}
	svc := newTestService(t, db, gateway, nil)
	ctx := context.Background()
	buyerID := uuid.New()

	widget := seedProduct(t, db, "widget", 5.00, 3)
	seedCart(t, db, buyerID, map[*models.Product]int{widget: 2})
	addr := seedAddress(t, db, buyerID)

	_, err := svc.Execute(ctx, buyerID, Request{AddressID: addr.ID, PaymentToken: "tok_visa"})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	var orderCount, cartCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := db.Model(&models.Cart{}).Where("buyer_id = ?", buyerID).Count(&cartCount).Error; err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if orderCount != 0 || cartCount != 1 {
		t.Fatalf("expected no order and surviving cart, got orders=%d carts=%d", orderCount, cartCount)
	}
}

func TestCheckoutPersistenceFailureAfterCharge(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := successGateway()
	svc := newTestService(t, db, gateway, failingTxRunner{})
	ctx := context.Background()
	buyerID := uuid.New()

	widget := seedProduct(t, db, "widget", 5.00, 3)
	seedCart(t, db, buyerID, map[*models.Product]int{widget: 1})
	addr := seedAddress(t, db, buyerID)

	_, err := svc.Execute(ctx, buyerID, Request{AddressID: addr.ID, PaymentToken: "tok_visa"})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(gateway.requests) != 1 {
		t.Fatalf("expected exactly one charge attempt, got %d", len(gateway.requests))
	}
}

func TestCheckoutSnapshotsUnitPriceFromCartLine(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	gateway := successGateway()
	svc := newTestService(t, db, gateway, nil)
	ctx := context.Background()
	buyerID := uuid.New()

	hammer := seedProduct(t, db, "Claw Hammer", 10.00, 5)
	seedCart(t, db, buyerID, map[*models.Product]int{hammer: 2})
	addr := seedAddress(t, db, buyerID)

	// Reprice the product between add and checkout. The order snapshot
	// must keep the unit price the buyer saw when the line was added.
	if err := db.Model(hammer).Update("price", decimal.NewFromInt(25)).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	result, err := svc.Execute(ctx, buyerID, Request{AddressID: addr.ID, PaymentToken: "tok_visa"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !result.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected total 20, got %s", result.Total)
	}

	var item models.OrderItem
	if err := db.First(&item, "order_id = ?", result.OrderID).Error; err != nil {
		t.Fatalf("load order item: %v", err)
	}
	if !item.UnitPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected snapshotted unit price 10, got %s", item.UnitPrice)
	}
	if !item.Price.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected line price 20, got %s", item.Price)
	}
	if len(gateway.requests) != 1 || gateway.requests[0].AmountMinor != 2000 {
		t.Fatal("expected the charge to use the cart subtotal")
	}
}
