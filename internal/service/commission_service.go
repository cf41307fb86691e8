package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/storage"
)

// CommissionService looks up the commission withheld from a merchant's payments.
type CommissionService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewCommissionService creates a new CommissionService.
func NewCommissionService(store storage.Store, opts ...Option) *CommissionService {
	o := newOptions(opts)
	return &CommissionService{store: store, logger: o.logger}
}

// GetMerchantCommission returns commission rate + GST + withholding tax from
// the merchant's financial terms.
func (s *CommissionService) GetMerchantCommission(ctx context.Context, merchantID int64) (decimal.Decimal, error) {
	if err := requireMerchantID(merchantID); err != nil {
		return decimal.Zero, err
	}
	return merchantCommission(ctx, s.store, merchantID)
}

func merchantCommission(ctx context.Context, q storage.Queries, merchantID int64) (decimal.Decimal, error) {
	terms, err := q.GetFinancialTerms(ctx, merchantID)
	if errors.Is(err, storage.ErrNotFound) {
		return decimal.Zero, apperr.NotFound("Financial terms not found for merchant")
	}
	if err != nil {
		return decimal.Zero, apperr.Internal(err, "Unable to fetch merchant commission")
	}
	return terms.TotalCommission(), nil
}
