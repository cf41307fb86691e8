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
	"github.com/mmynk/paygate/internal/storage"
)

// DefaultBatchSize bounds how many due tasks one RunDue call settles.
const DefaultBatchSize = 500

// SettlementService executes scheduled settlement tasks.
type SettlementService struct {
	store     storage.Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	BatchSize int
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store, opts ...Option) *SettlementService {
	o := newOptions(opts)
	return &SettlementService{
		store:     store,
		logger:    o.logger,
		metrics:   o.metrics,
		now:       o.now,
		BatchSize: DefaultBatchSize,
	}
}

// RunSummary counts what one pass did.
type RunSummary struct {
	Settled int `json:"settled"`
	Skipped int `json:"skipped"`
}

// RunDue settles every pending task scheduled at or before now. Each task is
// settled in its own store transaction; a failing task is logged and left
// pending for the next pass.
func (s *SettlementService) RunDue(ctx context.Context, now time.Time) (RunSummary, error) {
	var summary RunSummary

	tasks, err := s.store.ListDueTasks(ctx, now, s.BatchSize)
	if err != nil {
		return summary, apperr.Internal(err, "Unable to list due settlement tasks")
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		settled, err := s.settle(ctx, task, now)
		if err != nil {
			s.logger.Error("Settlement task failed", "task_id", task.ID, "transaction_id", task.TransactionID, "error", err)
			continue
		}
		if settled {
			summary.Settled++
			s.metrics.TaskClosed("settled")
		} else {
			summary.Skipped++
			s.metrics.TaskClosed("skipped")
		}
	}

	if len(tasks) > 0 {
		s.logger.Info("Settlement pass finished", "due", len(tasks), "settled", summary.Settled, "skipped", summary.Skipped)
	}
	return summary, nil
}

// settle closes one task. It reports whether money was settled; tasks whose
// transaction failed or was already settled are closed without effect.
func (s *SettlementService) settle(ctx context.Context, task models.ScheduledTask, now time.Time) (bool, error) {
	// The merchant row is locked before the transaction row, matching the
	// order Disburse and adjustments take them in.
	var merchantID int64
	pre, err := s.store.GetTransaction(ctx, task.TransactionID)
	switch {
	case err == nil:
		merchantID = pre.MerchantID
	case !errors.Is(err, storage.ErrNotFound):
		return false, err
	}

	var settled bool
	err = s.store.Atomic(ctx, func(q storage.Queries) error {
		settled = false

		merchantLive := false
		if merchantID != 0 {
			err := q.LockMerchant(ctx, merchantID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			merchantLive = err == nil
		}

		txn, err := q.GetTransaction(ctx, task.TransactionID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		closed, err := q.MarkTaskExecuted(ctx, task.ID, now)
		if err != nil {
			return err
		}
		if !closed {
			// Another runner got there first.
			return nil
		}
		if !merchantLive || txn == nil || txn.Status != models.StatusCompleted || txn.Settlement {
			return nil
		}

		flag := true
		if _, err := q.UpdateTransaction(ctx, txn.TransactionID, models.TransactionPatch{Settlement: &flag}); err != nil {
			return err
		}

		report := &models.SettlementReport{
			MerchantID:        txn.MerchantID,
			SettlementDate:    calculator.SettlementDate(now),
			TransactionCount:  1,
			TransactionAmount: txn.OriginalAmount,
			MerchantAmount:    txn.SettledAmount,
		}
		gst, wht := decimal.Zero, decimal.Zero
		terms, err := q.GetFinancialTerms(ctx, txn.MerchantID)
		switch {
		case err == nil:
			gst, wht = terms.CommissionGST, terms.CommissionWithholding
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
		charges := calculator.WithheldCharges(txn.OriginalAmount, txn.SettledAmount, gst, wht)
		report.Commission = charges.Commission
		report.GST = charges.GST
		report.WithholdingTax = charges.WithholdingTax

		if err := q.UpsertSettlementReport(ctx, report); err != nil {
			return err
		}

		if err := q.AddBalanceToDisburse(ctx, txn.MerchantID, txn.SettledAmount); err != nil {
			return err
		}

		settled = true
		return nil
	})
	return settled, err
}

// Run calls RunDue every interval until ctx is cancelled.
func (s *SettlementService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Settlement runner started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Settlement runner stopped")
			return
		case <-ticker.C:
			if _, err := s.RunDue(ctx, s.now()); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Settlement pass failed", "error", err)
			}
		}
	}
}
