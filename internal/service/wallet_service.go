package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/calculator"
	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/storage"
)

// WalletService reports merchants' settled, undisbursed balances.
type WalletService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

// NewWalletService creates a new WalletService.
func NewWalletService(store storage.Store, opts ...Option) *WalletService {
	o := newOptions(opts)
	return &WalletService{store: store, logger: o.logger, now: o.now, loc: o.loc}
}

// GetWalletBalance returns the merchant's total and today's settled balance.
func (s *WalletService) GetWalletBalance(ctx context.Context, merchantID int64) (*models.WalletBalance, error) {
	if err := requireMerchantID(merchantID); err != nil {
		return nil, err
	}

	if _, err := getMerchant(ctx, s.store, merchantID); err != nil {
		return nil, apperr.Wrap(err, "Unable to fetch wallet balance")
	}
	return s.balance(ctx, merchantID)
}

// GetWalletBalanceByUID is GetWalletBalance keyed by the merchant's external UID.
func (s *WalletService) GetWalletBalanceByUID(ctx context.Context, uid string) (*models.WalletBalance, error) {
	if uid == "" {
		return nil, apperr.Missing("Merchant UID is required")
	}

	m, err := s.store.GetMerchantByUID(ctx, uid)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Merchant not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Unable to fetch wallet balance")
	}
	return s.balance(ctx, m.ID)
}

func (s *WalletService) balance(ctx context.Context, merchantID int64) (*models.WalletBalance, error) {
	wallet, err := s.store.SumSettledBalances(ctx, merchantID, nil)
	if err != nil {
		s.logger.Error("Failed to sum wallet balance", "merchant_id", merchantID, "error", err)
		return nil, apperr.Internal(err, "Unable to fetch wallet balance")
	}

	from, to := calculator.DayBounds(s.now(), s.loc)
	today, err := s.store.SumSettledBalances(ctx, merchantID, &storage.TimeRange{From: from, To: to})
	if err != nil {
		s.logger.Error("Failed to sum today's balance", "merchant_id", merchantID, "error", err)
		return nil, apperr.Internal(err, "Unable to fetch wallet balance")
	}

	return &models.WalletBalance{WalletBalance: wallet, TodayBalance: today}, nil
}
