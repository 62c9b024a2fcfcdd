package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/charge"

	"github.com/shopit-dev/shopit-backend/pkg/config"
	"github.com/shopit-dev/shopit-backend/pkg/enums"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	pkgstripe "github.com/shopit-dev/shopit-backend/pkg/stripe"
)

// StripeChargeClient exposes the subset of Stripe operations the gateway needs.
type StripeChargeClient interface {
	New(ctx context.Context, params *stripe.ChargeParams) (*stripe.Charge, error)
}

type stripeChargeWrapper struct{}

// NewStripeChargeClient wraps the initialized Stripe client so the gateway can be tested.
func NewStripeChargeClient(api *pkgstripe.Client) StripeChargeClient {
	if api == nil {
		return nil
	}
	return &stripeChargeWrapper{}
}

func (w *stripeChargeWrapper) New(ctx context.Context, params *stripe.ChargeParams) (*stripe.Charge, error) {
	if params != nil {
		params.Context = ctx
	}
	return charge.New(params)
}

// StripeGateway charges cards through Stripe with a bounded per-call timeout.
type StripeGateway struct {
	client  StripeChargeClient
	timeout time.Duration
}

// NewStripeGateway validates dependencies and returns a Stripe-backed gateway.
func NewStripeGateway(client StripeChargeClient, cfg config.StripeConfig) (*StripeGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe charge client is required")
	}
	timeout := cfg.ChargeTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeGateway{client: client, timeout: timeout}, nil
}

// Charge captures the requested amount against the provided source token.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if strings.TrimSpace(req.SourceToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source token is required")
	}
	if !req.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.AmountMinor),
		Currency:    stripe.String(strings.ToLower(req.Currency.String())),
		Description: stripe.String(req.Description),
	}
	if err := params.SetSource(req.SourceToken); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment source")
	}

	ch, err := g.client.New(callCtx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	result := &ChargeResult{
		ChargeID:    ch.ID,
		Status:      chargeStatus(ch),
		ReceiptURL:  ch.ReceiptURL,
		AmountMinor: ch.Amount,
		Currency:    req.Currency,
	}
	if ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Type != "" {
		result.PaymentMethod = string(ch.PaymentMethodDetails.Type)
	} else {
		result.PaymentMethod = "card"
	}
	return result, nil
}

func chargeStatus(ch *stripe.Charge) enums.PaymentStatus {
	switch ch.Status {
	case stripe.ChargeStatusSucceeded:
		return enums.PaymentStatusSucceeded
	case stripe.ChargeStatusPending:
		return enums.PaymentStatusPending
	default:
		return enums.PaymentStatusFailed
	}
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		msg := stripeErr.Msg
		if msg == "" {
			msg = "payment was declined"
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider unavailable")
}
