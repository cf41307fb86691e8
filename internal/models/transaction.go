package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus tracks where a payment is in its lifecycle.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TransactionType is the rail a payment arrived on.
type TransactionType string

const (
	TypeWallet TransactionType = "wallet"
	TypeCard   TransactionType = "card"
	TypeBank   TransactionType = "bank"
)

// Valid reports whether t is one of the supported rails.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeWallet, TypeCard, TypeBank:
		return true
	}
	return false
}

// Transaction is a single payment event.
//
// Balance starts equal to SettledAmount, shrinks as money is disbursed and
// never leaves [0, SettledAmount]. A zero balance means fully disbursed.
type Transaction struct {
	ID             int64
	TransactionID  string
	MerchantID     int64
	OriginalAmount decimal.Decimal
	SettledAmount  decimal.Decimal
	Balance        decimal.Decimal
	Status         TransactionStatus
	Type           TransactionType

	// Settlement is set once the transaction has been included in a
	// settlement batch. Only settled balances are available to disburse.
	Settlement bool

	// Disbursed is set when the balance has been fully paid out.
	Disbursed bool

	Date time.Time

	// Provider and ProviderRef are optional provider metadata.
	Provider    string
	ProviderRef string
}

// TransactionPatch is a partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	Status      *TransactionStatus
	Settlement  *bool
	Balance     *decimal.Decimal
	ProviderRef *string
}

// EligibleTransaction is the projection used when walking balances for a
// disbursement.
type EligibleTransaction struct {
	TransactionID  string          `json:"transactionId"`
	SettledAmount  decimal.Decimal `json:"settledAmount"`
	Balance        decimal.Decimal `json:"balance"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
}

// BalanceUpdate is the new state of one transaction after a disbursement or
// adjustment.
type BalanceUpdate struct {
	TransactionID string          `json:"transactionId"`
	Disbursed     bool            `json:"disbursed"`
	Balance       decimal.Decimal `json:"balance"`
}
