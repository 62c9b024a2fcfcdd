package payments

import (
	"context"

	"github.com/shopit-dev/shopit-backend/pkg/enums"
)

// ChargeRequest describes a single capture attempt against the payment provider.
type ChargeRequest struct {
	AmountMinor int64
	Currency    enums.Currency
	SourceToken string
	Description string
}

// ChargeResult carries the provider's view of a settled charge.
type ChargeResult struct {
	ChargeID      string
	Status        enums.PaymentStatus
	PaymentMethod string
	ReceiptURL    string
	AmountMinor   int64
	Currency      enums.Currency
}

// Gateway abstracts the payment provider so checkout can be tested against stubs.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
