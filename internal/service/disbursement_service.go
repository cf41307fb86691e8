package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/calculator"
	"github.com/mmynk/paygate/internal/metrics"
	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/money"
	"github.com/mmynk/paygate/internal/storage"
)

// DisbursementService pays settled balances out to merchants.
type DisbursementService struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDisbursementService creates a new DisbursementService.
func NewDisbursementService(store storage.Store, opts ...Option) *DisbursementService {
	o := newOptions(opts)
	return &DisbursementService{store: store, logger: o.logger, metrics: o.metrics, now: o.now}
}

// DisburseResult is a committed payout and the balances it touched.
type DisburseResult struct {
	Disbursement models.Disbursement
	Updates      []models.BalanceUpdate
}

// GetEligibleTransactions lists the merchant's settled transactions that still
// hold a balance, oldest first.
func (s *DisbursementService) GetEligibleTransactions(ctx context.Context, merchantID int64) ([]models.EligibleTransaction, error) {
	if err := requireMerchantID(merchantID); err != nil {
		return nil, err
	}
	if _, err := getMerchant(ctx, s.store, merchantID); err != nil {
		return nil, apperr.Wrap(err, "Unable to fetch eligible transactions")
	}

	txns, err := s.store.ListEligibleTransactions(ctx, merchantID)
	if err != nil {
		return nil, apperr.Internal(err, "Unable to fetch eligible transactions")
	}
	return txns, nil
}

// Disburse removes amount from the merchant's eligible balances, oldest first,
// and records the payout. Nothing is written unless the whole amount is
// covered.
func (s *DisbursementService) Disburse(ctx context.Context, merchantID int64, amount decimal.Decimal, notes string) (*DisburseResult, error) {
	if err := requireMerchantID(merchantID); err != nil {
		return nil, err
	}
	amount = money.Round(amount)
	if !amount.IsPositive() {
		return nil, apperr.Invalid("Amount must be greater than 0")
	}

	var result *DisburseResult
	err := s.store.Atomic(ctx, func(q storage.Queries) error {
		if err := lockMerchant(ctx, q, merchantID); err != nil {
			return err
		}

		txns, err := q.ListEligibleTransactions(ctx, merchantID)
		if err != nil {
			return err
		}

		calc, err := calculator.CalculateDisbursement(txns, amount)
		if err != nil {
			return err
		}

		if err := q.ApplyBalanceUpdates(ctx, calc.Updates); err != nil {
			return err
		}

		d := models.Disbursement{
			MerchantID:     merchantID,
			Amount:         calc.TotalDisbursed,
			MerchantAmount: calc.TotalDisbursed,
			Notes:          notes,
			CreatedAt:      s.now(),
		}
		terms, err := q.GetFinancialTerms(ctx, merchantID)
		switch {
		case err == nil:
			charges := calculator.CalculateCharges(calc.TotalDisbursed,
				terms.DisbursementRate, terms.DisbursementGST, terms.DisbursementWithholding)
			d.Commission = charges.Commission
			d.GST = charges.GST
			d.WithholdingTax = charges.WithholdingTax
			d.MerchantAmount = charges.Net
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		if err := q.CreateDisbursement(ctx, &d); err != nil {
			return err
		}
		if err := q.AddBalanceToDisburse(ctx, merchantID, calc.TotalDisbursed.Neg()); err != nil {
			return err
		}

		result = &DisburseResult{Disbursement: d, Updates: calc.Updates}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			s.logger.Error("Disbursement failed", "merchant_id", merchantID, "amount", amount.String(), "error", err)
		}
		return nil, apperr.Wrap(err, "Unable to disburse")
	}

	s.metrics.Disbursed(result.Disbursement.Amount)
	s.logger.Info("Disbursed merchant balance",
		"merchant_id", merchantID,
		"disbursement_id", result.Disbursement.ID,
		"amount", result.Disbursement.Amount.String(),
		"transactions", len(result.Updates),
	)
	return result, nil
}

// GetDisbursedTotal sums the merchant's disbursements created within window,
// or over all time when window is nil.
func (s *DisbursementService) GetDisbursedTotal(ctx context.Context, merchantID int64, window *storage.TimeRange) (decimal.Decimal, error) {
	if err := requireMerchantID(merchantID); err != nil {
		return decimal.Zero, err
	}
	if window != nil && window.To.Before(window.From) {
		return decimal.Zero, apperr.Invalid("Invalid date range")
	}
	if _, err := getMerchant(ctx, s.store, merchantID); err != nil {
		return decimal.Zero, apperr.Wrap(err, "Unable to fetch disbursed total")
	}

	total, err := s.store.SumDisbursements(ctx, merchantID, window)
	if err != nil {
		return decimal.Zero, apperr.Internal(err, "Unable to fetch disbursed total")
	}
	return total, nil
}
