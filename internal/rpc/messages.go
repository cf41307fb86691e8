package rpc

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/models"
)

// MerchantRequest addresses a merchant by internal ID.
type MerchantRequest struct {
	MerchantID int64 `json:"merchantId"`
}

// MerchantUIDRequest addresses a merchant by external UID.
type MerchantUIDRequest struct {
	UID string `json:"uid"`
}

type EligibleTransactionsResponse struct {
	Transactions []models.EligibleTransaction `json:"transactions"`
}

type CommissionResponse struct {
	Commission decimal.Decimal `json:"commission"`
}

type DisburseRequest struct {
	MerchantID int64           `json:"merchantId"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes,omitempty"`
}

type DisburseResponse struct {
	DisbursementID string                 `json:"disbursementId"`
	Amount         decimal.Decimal        `json:"amount"`
	Commission     decimal.Decimal        `json:"commission"`
	GST            decimal.Decimal        `json:"gst"`
	WithholdingTax decimal.Decimal        `json:"withholdingTax"`
	MerchantAmount decimal.Decimal        `json:"merchantAmount"`
	Updates        []models.BalanceUpdate `json:"updates"`
}

// DisbursedTotalRequest sums disbursements over [From, To]. Both bounds must
// be given to restrict the window.
type DisbursedTotalRequest struct {
	MerchantID int64      `json:"merchantId"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

type DisbursedTotalResponse struct {
	Total decimal.Decimal `json:"total"`
}

// AdjustWalletBalanceRequest forces a wallet to TargetBalance. Record writes
// the difference as a settlement or disbursement.
type AdjustWalletBalanceRequest struct {
	MerchantID    int64           `json:"merchantId"`
	TargetBalance decimal.Decimal `json:"targetBalance"`
	Record        bool            `json:"record"`
	Notes         string          `json:"notes,omitempty"`
}

type DivideSettlementRecordsRequest struct {
	IDs    []int64         `json:"ids"`
	Factor decimal.Decimal `json:"factor"`
}

type DivideSettlementRecordsResponse struct {
	Reports []SettlementReport `json:"reports"`
}

// SettlementReport is the wire form of models.SettlementReport.
type SettlementReport struct {
	ID                int64           `json:"id"`
	MerchantID        int64           `json:"merchantId"`
	SettlementDate    string          `json:"settlementDate"`
	TransactionCount  int64           `json:"transactionCount"`
	TransactionAmount decimal.Decimal `json:"transactionAmount"`
	Commission        decimal.Decimal `json:"commission"`
	GST               decimal.Decimal `json:"gst"`
	WithholdingTax    decimal.Decimal `json:"withholdingTax"`
	MerchantAmount    decimal.Decimal `json:"merchantAmount"`
}

func reportFromModel(r models.SettlementReport) SettlementReport {
	return SettlementReport{
		ID:                r.ID,
		MerchantID:        r.MerchantID,
		SettlementDate:    r.SettlementDate,
		TransactionCount:  r.TransactionCount,
		TransactionAmount: r.TransactionAmount,
		Commission:        r.Commission,
		GST:               r.GST,
		WithholdingTax:    r.WithholdingTax,
		MerchantAmount:    r.MerchantAmount,
	}
}

type InitiatePaymentRequest struct {
	MerchantID int64           `json:"merchantId"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
	Provider   string          `json:"provider"`
	Phone      string          `json:"phone,omitempty"`
	Email      string          `json:"email,omitempty"`
}

// ProviderCallbackRequest carries a provider's late answer. Result is one of
// "ok", "err" or "pending".
type ProviderCallbackRequest struct {
	TransactionID string `json:"transactionId"`
	Result        string `json:"result"`
	Reference     string `json:"reference,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Transaction is the wire form of models.Transaction.
type Transaction struct {
	TransactionID  string          `json:"transactionId"`
	MerchantID     int64           `json:"merchantId"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	SettledAmount  decimal.Decimal `json:"settledAmount"`
	Balance        decimal.Decimal `json:"balance"`
	Status         string          `json:"status"`
	Type           string          `json:"type"`
	Settlement     bool            `json:"settlement"`
	Disbursed      bool            `json:"disbursed"`
	Date           time.Time       `json:"date"`
	Provider       string          `json:"provider,omitempty"`
	ProviderRef    string          `json:"providerRef,omitempty"`
}

func transactionFromModel(t *models.Transaction) *Transaction {
	return &Transaction{
		TransactionID:  t.TransactionID,
		MerchantID:     t.MerchantID,
		OriginalAmount: t.OriginalAmount,
		SettledAmount:  t.SettledAmount,
		Balance:        t.Balance,
		Status:         string(t.Status),
		Type:           string(t.Type),
		Settlement:     t.Settlement,
		Disbursed:      t.Disbursed,
		Date:           t.Date,
		Provider:       t.Provider,
		ProviderRef:    t.ProviderRef,
	}
}
