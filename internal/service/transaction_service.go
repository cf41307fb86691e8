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
	"github.com/mmynk/paygate/internal/provider"
	"github.com/mmynk/paygate/internal/storage"
	"github.com/mmynk/paygate/internal/txnid"
)

// TransactionService drives payments from creation to a terminal status.
type TransactionService struct {
	store     storage.Store
	providers *provider.Registry
	ids       *txnid.Generator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewTransactionService creates a new TransactionService. providers may be nil
// when only externally recorded transactions are handled.
func NewTransactionService(store storage.Store, providers *provider.Registry, opts ...Option) *TransactionService {
	o := newOptions(opts)
	return &TransactionService{
		store:     store,
		providers: providers,
		ids:       txnid.NewWithClock(o.now),
		logger:    o.logger,
		metrics:   o.metrics,
		now:       o.now,
	}
}

// NewTxn describes a payment to create.
type NewTxn struct {
	MerchantID int64
	Amount     decimal.Decimal
	Type       models.TransactionType
	Provider   string

	// TransactionID is generated when empty.
	TransactionID string
}

// CreateTxn persists a pending transaction whose settled amount is the
// original amount net of the merchant's commission.
func (s *TransactionService) CreateTxn(ctx context.Context, in NewTxn) (*models.Transaction, error) {
	if err := requireMerchantID(in.MerchantID); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperr.Invalid("Invalid transaction type")
	}
	txn, err := s.create(ctx, s.store, in, models.StatusPending, s.now())
	if err != nil {
		return nil, err
	}
	s.metrics.TransactionStatus(string(txn.Status))
	return txn, nil
}

func (s *TransactionService) create(ctx context.Context, q storage.Queries, in NewTxn, status models.TransactionStatus, date time.Time) (*models.Transaction, error) {
	amount := money.Round(in.Amount)
	if !amount.IsPositive() {
		return nil, apperr.Invalid("Amount must be greater than 0")
	}

	if _, err := getMerchant(ctx, q, in.MerchantID); err != nil {
		return nil, apperr.Wrap(err, "Unable to create transaction")
	}
	commission, err := merchantCommission(ctx, q, in.MerchantID)
	if err != nil {
		return nil, err
	}

	id := in.TransactionID
	if id == "" {
		id = s.ids.Next()
	}

	settled := money.Round(calculator.CalculateSettledAmount(amount, commission))
	if settled.IsNegative() {
		return nil, apperr.Invalid("Commission exceeds transaction amount")
	}
	txn := &models.Transaction{
		TransactionID:  id,
		MerchantID:     in.MerchantID,
		OriginalAmount: amount,
		SettledAmount:  settled,
		Balance:        settled,
		Status:         status,
		Type:           in.Type,
		Date:           date,
		Provider:       in.Provider,
	}
	if err := q.CreateTransaction(ctx, txn); err != nil {
		s.logger.Error("Failed to create transaction", "merchant_id", in.MerchantID, "transaction_id", id, "error", err)
		return nil, apperr.Internal(err, "Unable to create transaction")
	}

	s.logger.Debug("Created transaction",
		"transaction_id", txn.TransactionID,
		"merchant_id", txn.MerchantID,
		"original", txn.OriginalAmount.String(),
		"settled", txn.SettledAmount.String(),
	)
	return txn, nil
}

// UpdateTxn applies patch. When the patch completes the transaction, its
// settlement is scheduled settlementDays business days out unless a task
// already exists.
func (s *TransactionService) UpdateTxn(ctx context.Context, transactionID string, patch models.TransactionPatch, settlementDays int) (*models.Transaction, error) {
	if transactionID == "" {
		return nil, apperr.Missing("Transaction ID is required")
	}
	if settlementDays < 0 {
		return nil, apperr.Invalid("Settlement duration cannot be negative")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Invalid("Invalid transaction status %q", *patch.Status)
	}

	var txn *models.Transaction
	err := s.store.Atomic(ctx, func(q storage.Queries) error {
		cur, err := q.GetTransaction(ctx, transactionID)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("Transaction not found")
		}
		if err != nil {
			return err
		}
		if patch.Status != nil && cur.Status.Terminal() && *patch.Status != cur.Status {
			return apperr.Invalid("Transaction is already %s", cur.Status)
		}

		txn, err = q.UpdateTransaction(ctx, transactionID, patch)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("Transaction not found")
		}
		if err != nil {
			return err
		}

		if patch.Status != nil && *patch.Status == models.StatusCompleted {
			return s.scheduleSettlement(ctx, q, transactionID, settlementDays)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to update transaction")
	}

	if patch.Status != nil {
		s.metrics.TransactionStatus(string(*patch.Status))
	}
	return txn, nil
}

func (s *TransactionService) scheduleSettlement(ctx context.Context, q storage.Queries, transactionID string, days int) error {
	_, err := q.GetScheduledTaskByTransaction(ctx, transactionID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	task := &models.ScheduledTask{
		TransactionID: transactionID,
		Status:        models.TaskPending,
		ScheduledAt:   calculator.AddWeekdays(s.now(), days),
	}
	if err := q.CreateScheduledTask(ctx, task); err != nil {
		return err
	}
	s.logger.Debug("Scheduled settlement", "transaction_id", transactionID, "scheduled_at", task.ScheduledAt)
	return nil
}

// Record describes a transaction that originated outside the gateway.
type Record struct {
	MerchantID    int64
	TransactionID string
	Amount        decimal.Decimal
	Type          models.TransactionType
	Status        models.TransactionStatus
	Date          time.Time
}

// CreateTransactionRecord stores an externally originated transaction.
// Records of an unsupported type are ignored: the result and error are both nil.
// A completed record is scheduled for settlement like any other payment.
func (s *TransactionService) CreateTransactionRecord(ctx context.Context, rec Record) (*models.Transaction, error) {
	if !rec.Type.Valid() {
		s.logger.Debug("Ignoring transaction record of unsupported type", "transaction_id", rec.TransactionID, "type", rec.Type)
		return nil, nil
	}
	if err := requireMerchantID(rec.MerchantID); err != nil {
		return nil, err
	}

	status := rec.Status
	switch status {
	case "":
		status = models.StatusPending
	case models.StatusPending, models.StatusCompleted, models.StatusFailed:
	default:
		return nil, apperr.Invalid("Invalid transaction status")
	}
	date := rec.Date
	if date.IsZero() {
		date = s.now()
	}

	var txn *models.Transaction
	err := s.store.Atomic(ctx, func(q storage.Queries) error {
		var err error
		txn, err = s.create(ctx, q, NewTxn{
			MerchantID:    rec.MerchantID,
			Amount:        rec.Amount,
			Type:          rec.Type,
			TransactionID: rec.TransactionID,
		}, status, date)
		if err != nil || status != models.StatusCompleted {
			return err
		}

		days, err := s.settlementDays(ctx, q, rec.MerchantID)
		if err != nil {
			return err
		}
		return s.scheduleSettlement(ctx, q, txn.TransactionID, days)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to record transaction")
	}

	s.metrics.TransactionStatus(string(txn.Status))
	return txn, nil
}

// Payment is a request to charge a customer through a provider.
type Payment struct {
	MerchantID int64
	Amount     decimal.Decimal
	Type       models.TransactionType
	Provider   string
	Phone      string
	Email      string
}

// Initiate creates a pending transaction and hands it to the named provider.
// A captured payment is completed, a declined one failed, and a deferred one
// left pending for HandleCallback. If the provider cannot be reached the
// transaction stays pending and an Internal error is returned.
func (s *TransactionService) Initiate(ctx context.Context, p Payment) (*models.Transaction, error) {
	if p.Provider == "" {
		return nil, apperr.Missing("Provider is required")
	}
	if s.providers == nil {
		return nil, apperr.Invalid("Unknown provider %q", p.Provider)
	}
	prov, err := s.providers.Get(p.Provider)
	if err != nil {
		return nil, apperr.Invalid("Unknown provider %q", p.Provider)
	}

	merchant, err := getMerchant(ctx, s.store, p.MerchantID)
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to initiate payment")
	}

	txn, err := s.CreateTxn(ctx, NewTxn{
		MerchantID: p.MerchantID,
		Amount:     p.Amount,
		Type:       p.Type,
		Provider:   prov.Name(),
	})
	if err != nil {
		return nil, err
	}

	out, err := prov.Initiate(ctx, provider.Request{
		TransactionID: txn.TransactionID,
		MerchantUID:   merchant.UID,
		Amount:        txn.OriginalAmount,
		Type:          string(txn.Type),
		Phone:         p.Phone,
		Email:         p.Email,
	})
	if err != nil {
		s.logger.Error("Provider call failed",
			"provider", prov.Name(),
			"transaction_id", txn.TransactionID,
			"error", err,
		)
		return nil, apperr.Internal(err, "Unable to reach payment provider")
	}

	s.logger.Info("Provider answered",
		"provider", prov.Name(),
		"transaction_id", txn.TransactionID,
		"result", out.Result.String(),
	)
	return s.applyOutcome(ctx, txn.TransactionID, out)
}

// HandleCallback applies a provider's asynchronous outcome. Callbacks for a
// transaction that already reached a terminal status are acknowledged without
// changing anything, so providers may retry freely.
func (s *TransactionService) HandleCallback(ctx context.Context, transactionID string, out provider.Outcome) (*models.Transaction, error) {
	if transactionID == "" {
		return nil, apperr.Missing("Transaction ID is required")
	}
	return s.applyOutcome(ctx, transactionID, out)
}

// applyOutcome moves a pending transaction to the status out implies. The
// status check and the update share one store transaction so concurrent
// callbacks cannot both win.
func (s *TransactionService) applyOutcome(ctx context.Context, transactionID string, out provider.Outcome) (*models.Transaction, error) {
	var txn *models.Transaction
	var moved *models.TransactionStatus

	err := s.store.Atomic(ctx, func(q storage.Queries) error {
		cur, err := q.GetTransaction(ctx, transactionID)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("Transaction not found")
		}
		if err != nil {
			return err
		}
		if cur.Status.Terminal() {
			s.logger.Info("Ignoring outcome for finished transaction", "transaction_id", transactionID, "status", cur.Status)
			txn = cur
			return nil
		}

		var patch models.TransactionPatch
		if out.Reference != "" && out.Reference != cur.ProviderRef {
			patch.ProviderRef = &out.Reference
		}
		switch out.Result {
		case provider.ResultOk:
			status := models.StatusCompleted
			patch.Status = &status
		case provider.ResultErr:
			status := models.StatusFailed
			patch.Status = &status
		}
		if patch.Status == nil && patch.ProviderRef == nil {
			txn = cur
			return nil
		}

		if txn, err = q.UpdateTransaction(ctx, transactionID, patch); err != nil {
			return err
		}
		if patch.Status != nil && *patch.Status == models.StatusCompleted {
			days, err := s.settlementDays(ctx, q, cur.MerchantID)
			if err != nil {
				return err
			}
			if err := s.scheduleSettlement(ctx, q, transactionID, days); err != nil {
				return err
			}
		}
		moved = patch.Status
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to update transaction")
	}

	if moved != nil {
		s.metrics.TransactionStatus(string(*moved))
	}
	return txn, nil
}

func (s *TransactionService) settlementDays(ctx context.Context, q storage.Queries, merchantID int64) (int, error) {
	terms, err := q.GetFinancialTerms(ctx, merchantID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, apperr.NotFound("Financial terms not found for merchant")
	}
	if err != nil {
		return 0, apperr.Internal(err, "Unable to fetch financial terms")
	}
	return terms.SettlementDays, nil
}
