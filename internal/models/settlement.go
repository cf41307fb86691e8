package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskStatus is the state of a ScheduledTask.
type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskExecuted TaskStatus = "executed"
)

// ScheduledTask is a deferred settlement job tied 1:1 to a transaction.
type ScheduledTask struct {
	// ID is the unique identifier for the task (UUID format).
	ID string

	TransactionID string
	Status        TaskStatus
	ScheduledAt   time.Time

	// ExecutedAt is nil until the task has run.
	ExecutedAt *time.Time
}

// SettlementReport aggregates one merchant's settled payments for one
// settlement date. Rows are upserted additively.
type SettlementReport struct {
	ID         int64
	MerchantID int64

	// SettlementDate is a calendar date in YYYY-MM-DD format.
	SettlementDate string

	TransactionCount  int64
	TransactionAmount decimal.Decimal
	Commission        decimal.Decimal
	GST               decimal.Decimal
	WithholdingTax    decimal.Decimal
	MerchantAmount    decimal.Decimal
}

// Divide splits every monetary field by factor, rounding to minor units.
func (r SettlementReport) Divide(factor decimal.Decimal) SettlementReport {
	div := func(d decimal.Decimal) decimal.Decimal { return d.Div(factor).Round(2) }
	r.TransactionAmount = div(r.TransactionAmount)
	r.Commission = div(r.Commission)
	r.GST = div(r.GST)
	r.WithholdingTax = div(r.WithholdingTax)
	r.MerchantAmount = div(r.MerchantAmount)
	return r
}

// Disbursement records money paid out to a merchant.
type Disbursement struct {
	// ID is the unique identifier for the disbursement (UUID format).
	ID string

	MerchantID int64

	// Amount is the total removed from transaction balances.
	Amount decimal.Decimal

	// Commission, GST and WithholdingTax are charged on the payout under the
	// merchant's disbursement terms. MerchantAmount is what reaches the bank.
	Commission     decimal.Decimal
	GST            decimal.Decimal
	WithholdingTax decimal.Decimal
	MerchantAmount decimal.Decimal

	Notes     string
	CreatedAt time.Time
}
