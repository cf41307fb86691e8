package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant represents an account that receives payments.
type Merchant struct {
	// ID is the internal identifier.
	ID int64

	// UID is the external unique identifier (UUID format) handed to integrators.
	UID string

	// Name is the display name of the merchant.
	Name string

	// BalanceToDisburse is a running total of settled money not yet paid out.
	// It is maintained alongside the ledger, not derived from it.
	BalanceToDisburse decimal.Decimal

	CreatedAt time.Time

	// DeletedAt is set when the merchant's data has been removed.
	DeletedAt *time.Time
}

// FinancialTerms are the rates agreed with a merchant. All rates are
// fractions: 0.025 means 2.5%.
type FinancialTerms struct {
	MerchantID int64

	CommissionRate          decimal.Decimal
	CommissionGST           decimal.Decimal
	CommissionWithholding   decimal.Decimal
	DisbursementRate        decimal.Decimal
	DisbursementGST         decimal.Decimal
	DisbursementWithholding decimal.Decimal

	// SettlementDays is the number of business days between completion and
	// settlement.
	SettlementDays int
}

// TotalCommission is the fraction withheld from every payment.
func (f FinancialTerms) TotalCommission() decimal.Decimal {
	return f.CommissionRate.Add(f.CommissionGST).Add(f.CommissionWithholding)
}

// WalletBalance is a merchant's settled, undisbursed money.
type WalletBalance struct {
	WalletBalance decimal.Decimal `json:"walletBalance"`
	TodayBalance  decimal.Decimal `json:"todayBalance"`
}
