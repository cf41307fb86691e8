package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/money"
	"github.com/mmynk/paygate/internal/storage"
)

const transactionColumns = `id, transaction_id, merchant_id, original_amount, settled_amount, balance,
	status, type, settlement, disbursed, txn_date, provider, provider_ref`

// CreateTransaction persists a new transaction to the database.
func (q *queries) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}

	err := q.queryRow(ctx,
		`INSERT INTO transactions (
			transaction_id, merchant_id, original_amount, settled_amount, balance,
			status, type, settlement, disbursed, txn_date, provider, provider_ref
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		txn.TransactionID, txn.MerchantID,
		money.ToMinor(txn.OriginalAmount), money.ToMinor(txn.SettledAmount), money.ToMinor(txn.Balance),
		string(txn.Status), string(txn.Type), txn.Settlement, txn.Disbursed,
		toMillis(txn.Date), txn.Provider, txn.ProviderRef,
	).Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by its transaction ID.
func (q *queries) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var original, settled, balance, date int64
	var status, typ string

	err := q.queryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE transaction_id = ?"+q.forUpdate(),
		transactionID,
	).Scan(
		&txn.ID, &txn.TransactionID, &txn.MerchantID, &original, &settled, &balance,
		&status, &typ, &txn.Settlement, &txn.Disbursed, &date, &txn.Provider, &txn.ProviderRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.OriginalAmount = money.FromMinor(original)
	txn.SettledAmount = money.FromMinor(settled)
	txn.Balance = money.FromMinor(balance)
	txn.Status = models.TransactionStatus(status)
	txn.Type = models.TransactionType(typ)
	txn.Date = fromMillis(date)
	return txn, nil
}

// UpdateTransaction applies the non-nil fields of patch.
func (q *queries) UpdateTransaction(ctx context.Context, transactionID string, patch models.TransactionPatch) (*models.Transaction, error) {
	var sets []string
	var args []any

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Settlement != nil {
		sets = append(sets, "settlement = ?")
		args = append(args, *patch.Settlement)
	}
	if patch.Balance != nil {
		sets = append(sets, "balance = ?", "disbursed = ?")
		args = append(args, money.ToMinor(*patch.Balance), patch.Balance.Round(money.Places).IsZero())
	}
	if patch.ProviderRef != nil {
		sets = append(sets, "provider_ref = ?")
		args = append(args, *patch.ProviderRef)
	}

	if len(sets) > 0 {
		args = append(args, transactionID)
		res, err := q.exec(ctx,
			"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE transaction_id = ?",
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		if err := requireAffected(res, "transaction "+transactionID); err != nil {
			return nil, err
		}
	}

	return q.GetTransaction(ctx, transactionID)
}

// SumSettledBalances totals the undisbursed settled balances of a merchant.
func (q *queries) SumSettledBalances(ctx context.Context, merchantID int64, window *storage.TimeRange) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(balance), 0) FROM transactions
		WHERE merchant_id = ? AND settlement = ? AND balance > 0`
	args := []any{merchantID, true}
	if window != nil {
		query += " AND txn_date >= ? AND txn_date <= ?"
		args = append(args, toMillis(window.From), toMillis(window.To))
	}

	var total int64
	if err := q.queryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return money.FromMinor(total), nil
}

// ListEligibleTransactions returns disbursable transactions, oldest first.
func (q *queries) ListEligibleTransactions(ctx context.Context, merchantID int64) ([]models.EligibleTransaction, error) {
	rows, err := q.query(ctx,
		`SELECT transaction_id, settled_amount, balance, original_amount
		 FROM transactions
		 WHERE merchant_id = ? AND settlement = ? AND balance > 0
		 ORDER BY txn_date ASC, id ASC`+q.forUpdate(),
		merchantID, true,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.EligibleTransaction
	for rows.Next() {
		var t models.EligibleTransaction
		var settled, balance, original int64
		if err := rows.Scan(&t.TransactionID, &settled, &balance, &original); err != nil {
			return nil, fmt.Errorf("failed to scan eligible transaction: %w", err)
		}
		t.SettledAmount = money.FromMinor(settled)
		t.Balance = money.FromMinor(balance)
		t.OriginalAmount = money.FromMinor(original)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate eligible transactions: %w", err)
	}

	return txns, nil
}

// ApplyBalanceUpdates writes each update's balance and disbursed flag.
func (q *queries) ApplyBalanceUpdates(ctx context.Context, updates []models.BalanceUpdate) error {
	for _, u := range updates {
		res, err := q.exec(ctx,
			"UPDATE transactions SET balance = ?, disbursed = ? WHERE transaction_id = ?",
			money.ToMinor(u.Balance), u.Disbursed, u.TransactionID,
		)
		if err != nil {
			return fmt.Errorf("failed to update balance of %s: %w", u.TransactionID, err)
		}
		if err := requireAffected(res, "transaction "+u.TransactionID); err != nil {
			return err
		}
	}
	return nil
}
