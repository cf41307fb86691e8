package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/models"
)

// AdjustmentType says which way an administrative adjustment moved a wallet.
type AdjustmentType string

const (
	// AdjustmentSettlement credits the merchant.
	AdjustmentSettlement AdjustmentType = "settlement"
	// AdjustmentDisbursement debits the merchant.
	AdjustmentDisbursement AdjustmentType = "disbursement"
)

// ClassifyAdjustment compares target with current. Equal balances count as a
// settlement with zero difference.
func ClassifyAdjustment(current, target decimal.Decimal) (AdjustmentType, decimal.Decimal) {
	diff := target.Sub(current).Abs()
	if target.LessThan(current) {
		return AdjustmentDisbursement, diff
	}
	return AdjustmentSettlement, diff
}

// ScaleFactor is target / current. A zero current balance cannot be scaled.
func ScaleFactor(current, target decimal.Decimal) (decimal.Decimal, error) {
	if current.IsZero() {
		return decimal.Zero, apperr.ErrZeroBalance
	}
	return target.Div(current), nil
}

// ScaleBalances multiplies every balance by target / Σ balances, rounding to
// minor units. The rounding residue goes to the newest rows (the end of the
// slice) so the new balances add up to target exactly; no balance is pushed
// below zero.
func ScaleBalances(txns []models.EligibleTransaction, target decimal.Decimal) ([]models.BalanceUpdate, error) {
	current := decimal.Zero
	for _, t := range txns {
		current = current.Add(t.Balance)
	}
	if current.IsZero() {
		return nil, apperr.ErrZeroBalance
	}

	target = target.Round(2)
	balances := make([]decimal.Decimal, len(txns))
	sum := decimal.Zero
	for i, t := range txns {
		// Multiply before dividing to keep precision.
		balances[i] = t.Balance.Mul(target).Div(current).Round(2)
		sum = sum.Add(balances[i])
	}

	residue := target.Sub(sum)
	for i := len(balances) - 1; i >= 0 && !residue.IsZero(); i-- {
		adj := residue
		if balances[i].Add(adj).IsNegative() {
			adj = balances[i].Neg()
		}
		balances[i] = balances[i].Add(adj)
		residue = residue.Sub(adj)
	}

	updates := make([]models.BalanceUpdate, len(txns))
	for i, t := range txns {
		updates[i] = models.BalanceUpdate{
			TransactionID: t.TransactionID,
			Disbursed:     balances[i].IsZero(),
			Balance:       balances[i],
		}
	}
	return updates, nil
}
