package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
)

// ProductSalesDTO is one row of the per-product sales breakdown.
type ProductSalesDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SummaryDTO is the seller dashboard payload.
type SummaryDTO struct {
	TotalRevenue        decimal.Decimal   `json:"total_revenue"`
	TotalUnitsSold      int64             `json:"total_units_sold"`
	ProductSales        []ProductSalesDTO `json:"product_sales"`
	AverageRating       decimal.Decimal   `json:"average_rating"`
	RatingScore         int               `json:"rating_score"`
	ReviewCount         int64             `json:"review_count"`
	ChargeCount         int64             `json:"charge_count"`
	CapturedAmountMinor int64             `json:"captured_amount_minor"`
}

// Service assembles the seller dashboard from aggregate queries.
type Service interface {
	SellerSummary(ctx context.Context, sellerID uuid.UUID) (*SummaryDTO, error)
}

type service struct {
	repo *Repository
}

// NewService validates dependencies and returns an analytics service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SellerSummary(ctx context.Context, sellerID uuid.UUID) (*SummaryDTO, error) {
	sales, err := s.repo.SalesByProduct(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate sales")
	}
	ratings, err := s.repo.Ratings(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate ratings")
	}
	payments, err := s.repo.Payments(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate payments")
	}

	summary := &SummaryDTO{
		TotalRevenue:        decimal.Zero,
		ProductSales:        make([]ProductSalesDTO, 0, len(sales)),
		AverageRating:       ratings.Average.Round(2),
		ReviewCount:         ratings.Count,
		ChargeCount:         payments.ChargeCount,
		CapturedAmountMinor: payments.TotalAmountMinor,
	}
	for _, row := range sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(row.Revenue)
		summary.TotalUnitsSold += row.UnitsSold
		summary.ProductSales = append(summary.ProductSales, ProductSalesDTO{
			ProductID: row.ProductID,
			Name:      row.Name,
			UnitsSold: row.UnitsSold,
			Revenue:   row.Revenue,
		})
	}
	// A 5-star average maps to a score of 100.
	summary.RatingScore = int(ratings.Average.Mul(decimal.NewFromInt(20)).Round(0).IntPart())
	return summary, nil
}
