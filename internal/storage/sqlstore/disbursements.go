package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/money"
	"github.com/mmynk/paygate/internal/storage"
)

// CreateDisbursement records a payout to a merchant.
func (q *queries) CreateDisbursement(ctx context.Context, d *models.Disbursement) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := q.exec(ctx,
		`INSERT INTO disbursements (
			id, merchant_id, amount, commission, gst, withholding_tax, merchant_amount, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.MerchantID,
		money.ToMinor(d.Amount), money.ToMinor(d.Commission), money.ToMinor(d.GST),
		money.ToMinor(d.WithholdingTax), money.ToMinor(d.MerchantAmount),
		d.Notes, toMillis(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert disbursement: %w", err)
	}
	return nil
}

// SumDisbursements totals a merchant's payouts, optionally within a window.
func (q *queries) SumDisbursements(ctx context.Context, merchantID int64, window *storage.TimeRange) (decimal.Decimal, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM disbursements WHERE merchant_id = ?"
	args := []any{merchantID}
	if window != nil {
		query += " AND created_at >= ? AND created_at <= ?"
		args = append(args, toMillis(window.From), toMillis(window.To))
	}

	var total int64
	if err := q.queryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum disbursements: %w", err)
	}
	return money.FromMinor(total), nil
}
