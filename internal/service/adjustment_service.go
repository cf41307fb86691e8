package service

import (
	"context"
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

// AdjustmentService forces merchant wallets to an administrator-chosen balance.
type AdjustmentService struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewAdjustmentService creates a new AdjustmentService.
func NewAdjustmentService(store storage.Store, opts ...Option) *AdjustmentService {
	o := newOptions(opts)
	return &AdjustmentService{store: store, logger: o.logger, metrics: o.metrics, now: o.now}
}

// AdjustmentResult describes a committed adjustment.
type AdjustmentResult struct {
	Success         bool                      `json:"success"`
	Type            calculator.AdjustmentType `json:"type"`
	PreviousBalance decimal.Decimal           `json:"previousBalance"`
	NewBalance      decimal.Decimal           `json:"newBalance"`
	Difference      decimal.Decimal           `json:"difference"`
}

// AdjustMerchantWalletBalance scales every eligible balance so the wallet
// equals target. With record set, the difference is also written as a
// settlement report entry (credit) or a disbursement (debit).
func (s *AdjustmentService) AdjustMerchantWalletBalance(ctx context.Context, merchantID int64, target decimal.Decimal, record bool, notes string) (*AdjustmentResult, error) {
	return s.adjust(ctx, merchantID, target, record, notes)
}

// AdjustMerchantWalletBalanceWithoutSettlement scales balances to target
// without writing any audit row.
func (s *AdjustmentService) AdjustMerchantWalletBalanceWithoutSettlement(ctx context.Context, merchantID int64, target decimal.Decimal) (*AdjustmentResult, error) {
	return s.adjust(ctx, merchantID, target, false, "")
}

func (s *AdjustmentService) adjust(ctx context.Context, merchantID int64, target decimal.Decimal, record bool, notes string) (*AdjustmentResult, error) {
	if err := requireMerchantID(merchantID); err != nil {
		return nil, err
	}
	target = money.Round(target)
	if target.IsNegative() {
		return nil, apperr.Invalid("Target balance cannot be negative")
	}

	var result *AdjustmentResult
	err := s.store.Atomic(ctx, func(q storage.Queries) error {
		if err := lockMerchant(ctx, q, merchantID); err != nil {
			return err
		}

		txns, err := q.ListEligibleTransactions(ctx, merchantID)
		if err != nil {
			return err
		}
		current := decimal.Zero
		for _, t := range txns {
			current = current.Add(t.Balance)
		}
		if !current.IsPositive() {
			return apperr.ErrZeroBalance
		}

		kind, diff := calculator.ClassifyAdjustment(current, target)
		updates, err := calculator.ScaleBalances(txns, target)
		if err != nil {
			return err
		}
		if err := q.ApplyBalanceUpdates(ctx, updates); err != nil {
			return err
		}
		if err := q.AddBalanceToDisburse(ctx, merchantID, target.Sub(current)); err != nil {
			return err
		}

		if record && !diff.IsZero() {
			if err := s.recordAdjustment(ctx, q, merchantID, kind, diff, notes); err != nil {
				return err
			}
		}

		result = &AdjustmentResult{
			Success:         true,
			Type:            kind,
			PreviousBalance: current,
			NewBalance:      target,
			Difference:      diff,
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			s.logger.Error("Wallet adjustment failed", "merchant_id", merchantID, "target", target.String(), "error", err)
		}
		return nil, apperr.Wrap(err, "Unable to adjust wallet balance")
	}

	s.metrics.Adjusted(string(result.Type))
	s.logger.Info("Adjusted merchant wallet",
		"merchant_id", merchantID,
		"type", result.Type,
		"previous", result.PreviousBalance.String(),
		"new", result.NewBalance.String(),
		"recorded", record,
	)
	return result, nil
}

// recordAdjustment writes the audit row for a credit or a debit.
func (s *AdjustmentService) recordAdjustment(ctx context.Context, q storage.Queries, merchantID int64, kind calculator.AdjustmentType, diff decimal.Decimal, notes string) error {
	now := s.now()
	if kind == calculator.AdjustmentSettlement {
		return q.UpsertSettlementReport(ctx, &models.SettlementReport{
			MerchantID:        merchantID,
			SettlementDate:    calculator.SettlementDate(now),
			TransactionAmount: diff,
			MerchantAmount:    diff,
		})
	}
	return q.CreateDisbursement(ctx, &models.Disbursement{
		MerchantID:     merchantID,
		Amount:         diff,
		MerchantAmount: diff,
		Notes:          notes,
		CreatedAt:      now,
	})
}
