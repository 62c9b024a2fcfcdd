package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service turns a buyer's cart into an order. Stock was already reserved
// when the cart lines were edited, so checkout never touches inventory.
type Service interface {
	Execute(ctx context.Context, buyerID uuid.UUID, req Request) (*Result, error)
}

type service struct {
	tx       txRunner
	carts    *cart.Repository
	orders   *orders.Repository
	addrs    *address.Repository
	products productLoader
	gateway  payments.Gateway
	currency enums.Currency
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	TxRunner    txRunner
	CartRepo    *cart.Repository
	OrdersRepo  *orders.Repository
	AddressRepo *address.Repository
	Products    productLoader
	Gateway     payments.Gateway
	Currency    enums.Currency
	Logger      *logger.Logger
}

// NewService validates dependencies and returns a checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.AddressRepo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if !params.Currency.IsValid() {
		return nil, fmt.Errorf("invalid checkout currency %q", params.Currency)
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		tx:       params.TxRunner,
		carts:    params.CartRepo,
		orders:   params.OrdersRepo,
		addrs:    params.AddressRepo,
		products: params.Products,
		gateway:  params.Gateway,
		currency: params.Currency,
		logg:     params.Logger,
	}, nil
}

// Execute runs the checkout pipeline. Everything that can reject the
// request is checked before the charge; once the gateway has captured the
// payment the remaining work is a single transaction that materializes
// the order and empties the cart.
func (s *service) Execute(ctx context.Context, buyerID uuid.UUID, req Request) (*Result, error) {
	buyerCart, err := s.loadCart(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	shipTo, err := s.loadAddress(ctx, buyerID, req.AddressID)
	if err != nil {
		return nil, err
	}

	productsByID, err := s.loadProducts(ctx, buyerCart.Items)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range buyerCart.Items {
		total = total.Add(item.Price)
	}
	amountMinor := total.Mul(decimal.NewFromInt(100)).IntPart()

	charge, err := s.gateway.Charge(ctx, payments.ChargeRequest{
		AmountMinor: amountMinor,
		Currency:    s.currency,
		SourceToken: req.PaymentToken,
		Description: fmt.Sprintf("order for buyer %s", buyerID),
	})
	if err != nil {
		return nil, err
	}

	order := buildOrder(buyerID, total, shipTo, buyerCart.Items, productsByID)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		if _, err := ordersRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		payment := &models.Payment{
			OrderID:         order.ID,
			BuyerID:         buyerID,
			GatewayChargeID: charge.ChargeID,
			AmountMinor:     charge.AmountMinor,
			Currency:        charge.Currency,
			Status:          charge.Status,
			PaymentMethod:   charge.PaymentMethod,
		}
		if charge.ReceiptURL != "" {
			payment.ReceiptURL = &charge.ReceiptURL
		}
		if _, err := ordersRepo.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		order.Payment = payment
		if err := s.carts.WithTx(tx).Delete(ctx, buyerCart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		// The charge already went through. Surface the charge id so the
		// payment can be reconciled or refunded by hand.
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"buyer_id":  buyerID.String(),
			"charge_id": charge.ChargeID,
		}), "order persistence failed after successful charge", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"buyer_id":  buyerID.String(),
		"order_id":  order.ID.String(),
		"charge_id": charge.ChargeID,
		"total":     total.StringFixed(2),
	}), "checkout completed")

	return &Result{
		OrderID:   order.ID,
		PaymentID: order.Payment.ID,
		Total:     total,
		ItemCount: len(order.Items),
	}, nil
}

func (s *service) loadCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	buyerCart, err := s.carts.FindByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(buyerCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return buyerCart, nil
}

func (s *service) loadAddress(ctx context.Context, buyerID, addressID uuid.UUID) (*models.Address, error) {
	addr, err := s.addrs.FindByIDAndUser(ctx, addressID, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	return addr, nil
}

func (s *service) loadProducts(ctx context.Context, items []models.CartItem) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a cart item is no longer available").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
	}
	return byID, nil
}

func buildOrder(buyerID uuid.UUID, total decimal.Decimal, shipTo *models.Address, items []models.CartItem, productsByID map[uuid.UUID]models.Product) *models.Order {
	order := &models.Order{
		BuyerID:     buyerID,
		Status:      enums.OrderStatusSuccessful,
		Total:       total,
		ShipLine1:   shipTo.Line1,
		ShipLine2:   shipTo.Line2,
		ShipCity:    shipTo.City,
		ShipState:   shipTo.State,
		ShipCountry: shipTo.Country,
		ShipZip:     shipTo.Zip,
		ShipPhone:   shipTo.Phone,
	}
	for _, item := range items {
		product := productsByID[item.ProductID]
		// The unit price is derived from the line subtotal captured when
		// the line last changed, so a catalog price edit between add and
		// checkout cannot leak into the order snapshot.
		unit := item.Price
		if item.Quantity > 0 {
			unit = item.Price.Div(decimal.NewFromInt(int64(item.Quantity)))
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			UnitPrice:   unit,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return order
}
