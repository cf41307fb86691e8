// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Queries are the entity operations of the ledger. The same set is available
// on the Store itself and on the transaction-scoped handle passed to Atomic.
type Queries interface {
	// CreateMerchant persists a merchant. ID, UID and CreatedAt are filled in
	// when empty.
	CreateMerchant(ctx context.Context, m *models.Merchant) error

	// GetMerchant returns a non-deleted merchant by ID or ErrNotFound.
	GetMerchant(ctx context.Context, id int64) (*models.Merchant, error)

	// GetMerchantByUID returns a non-deleted merchant by external UID or ErrNotFound.
	GetMerchantByUID(ctx context.Context, uid string) (*models.Merchant, error)

	// LockMerchant takes a write lock on the merchant row for the rest of the
	// enclosing transaction. Returns ErrNotFound if the merchant is absent.
	LockMerchant(ctx context.Context, id int64) error

	// AddBalanceToDisburse adds delta (which may be negative) to the
	// merchant's running balance-to-disburse.
	AddBalanceToDisburse(ctx context.Context, merchantID int64, delta decimal.Decimal) error

	// DeleteMerchant soft-deletes a merchant.
	DeleteMerchant(ctx context.Context, id int64) error

	// UpsertFinancialTerms creates or replaces a merchant's terms.
	UpsertFinancialTerms(ctx context.Context, terms *models.FinancialTerms) error

	// GetFinancialTerms returns a merchant's terms or ErrNotFound.
	GetFinancialTerms(ctx context.Context, merchantID int64) (*models.FinancialTerms, error)

	// CreateTransaction persists a transaction and fills in its row ID.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// GetTransaction returns a transaction by its transaction ID or ErrNotFound.
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)

	// UpdateTransaction applies patch and returns the updated row, or
	// ErrNotFound.
	UpdateTransaction(ctx context.Context, transactionID string, patch models.TransactionPatch) (*models.Transaction, error)

	// SumSettledBalances sums balance over the merchant's transactions with
	// settlement set and a positive balance. A non-nil window restricts the
	// transaction date to [from, to]. Returns zero when nothing qualifies.
	SumSettledBalances(ctx context.Context, merchantID int64, window *TimeRange) (decimal.Decimal, error)

	// ListEligibleTransactions returns settled transactions with a positive
	// balance, oldest first. Inside Atomic the rows are locked.
	ListEligibleTransactions(ctx context.Context, merchantID int64) ([]models.EligibleTransaction, error)

	// ApplyBalanceUpdates writes new balances and disbursed flags.
	ApplyBalanceUpdates(ctx context.Context, updates []models.BalanceUpdate) error

	// CreateScheduledTask persists a task. ID is filled in when empty.
	CreateScheduledTask(ctx context.Context, task *models.ScheduledTask) error

	// GetScheduledTaskByTransaction returns the task for a transaction or ErrNotFound.
	GetScheduledTaskByTransaction(ctx context.Context, transactionID string) (*models.ScheduledTask, error)

	// ListDueTasks returns up to limit pending tasks scheduled at or before now.
	ListDueTasks(ctx context.Context, now time.Time, limit int) ([]models.ScheduledTask, error)

	// MarkTaskExecuted closes a pending task. It reports false when the task
	// was already executed.
	MarkTaskExecuted(ctx context.Context, id string, at time.Time) (bool, error)

	// UpsertSettlementReport adds the report's count and amounts to the row
	// for its merchant and date, creating it if needed. The stored row is
	// written back into report.
	UpsertSettlementReport(ctx context.Context, report *models.SettlementReport) error

	// GetSettlementReports returns the reports with the given IDs that exist.
	GetSettlementReports(ctx context.Context, ids []int64) ([]models.SettlementReport, error)

	// UpdateSettlementReportAmounts overwrites the monetary fields of a report.
	UpdateSettlementReportAmounts(ctx context.Context, report *models.SettlementReport) error

	// CreateDisbursement persists a disbursement. ID and CreatedAt are filled
	// in when empty.
	CreateDisbursement(ctx context.Context, d *models.Disbursement) error

	// SumDisbursements totals a merchant's disbursements created within window
	// (all time when nil).
	SumDisbursements(ctx context.Context, merchantID int64, window *TimeRange) (decimal.Decimal, error)
}

// TimeRange is an inclusive time window.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Store defines the interface for ledger storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	Queries

	// Atomic runs fn inside one database transaction. The transaction commits
	// if fn returns nil and rolls back otherwise, so no partial mutation is
	// ever visible.
	Atomic(ctx context.Context, fn func(q Queries) error) error

	// Close releases any resources held by the store.
	Close() error
}
