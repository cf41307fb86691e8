package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/models"
)

// DisbursementResult is the outcome of walking balances for one payout.
type DisbursementResult struct {
	Updates        []models.BalanceUpdate
	TotalDisbursed decimal.Decimal
}

// CalculateDisbursement consumes transaction balances in the given order
// until amount is covered. Callers pass transactions oldest first.
//
// A balance no larger than what is still owed is consumed entirely. The first
// larger balance is reduced by the remainder and the walk stops there. If the
// balances run out before amount is covered, ErrInsufficientFunds is returned
// and no updates.
func CalculateDisbursement(txns []models.EligibleTransaction, amount decimal.Decimal) (*DisbursementResult, error) {
	remaining := amount
	total := decimal.Zero
	var updates []models.BalanceUpdate

	for _, txn := range txns {
		if !remaining.IsPositive() {
			break
		}

		if txn.Balance.LessThanOrEqual(remaining) {
			updates = append(updates, models.BalanceUpdate{
				TransactionID: txn.TransactionID,
				Disbursed:     true,
				Balance:       decimal.Zero,
			})
			remaining = remaining.Sub(txn.Balance)
			total = total.Add(txn.Balance)
			continue
		}

		// Partial: this transaction keeps whatever the payout didn't need.
		updates = append(updates, models.BalanceUpdate{
			TransactionID: txn.TransactionID,
			Disbursed:     false,
			Balance:       txn.Balance.Sub(remaining),
		})
		total = total.Add(remaining)
		remaining = decimal.Zero
		break
	}

	if remaining.IsPositive() {
		return nil, apperr.ErrInsufficientFunds
	}

	return &DisbursementResult{Updates: updates, TotalDisbursed: total}, nil
}
