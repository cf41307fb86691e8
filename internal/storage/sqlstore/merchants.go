package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/money"
	"github.com/mmynk/paygate/internal/storage"
)

const merchantColumns = `id, uid, name, balance_to_disburse, created_at, deleted_at`

// CreateMerchant persists a new merchant to the database.
func (q *queries) CreateMerchant(ctx context.Context, m *models.Merchant) error {
	// Generate UID if not set
	if m.UID == "" {
		m.UID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	err := q.queryRow(ctx,
		`INSERT INTO merchants (uid, name, balance_to_disburse, created_at)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		m.UID, m.Name, money.ToMinor(m.BalanceToDisburse), toMillis(m.CreatedAt),
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to insert merchant: %w", err)
	}
	return nil
}

// GetMerchant retrieves a merchant by ID.
func (q *queries) GetMerchant(ctx context.Context, id int64) (*models.Merchant, error) {
	return q.scanMerchant(q.queryRow(ctx,
		"SELECT "+merchantColumns+" FROM merchants WHERE id = ? AND deleted_at IS NULL", id,
	), fmt.Sprintf("merchant %d", id))
}

// GetMerchantByUID retrieves a merchant by its external identifier.
func (q *queries) GetMerchantByUID(ctx context.Context, uid string) (*models.Merchant, error) {
	return q.scanMerchant(q.queryRow(ctx,
		"SELECT "+merchantColumns+" FROM merchants WHERE uid = ? AND deleted_at IS NULL", uid,
	), fmt.Sprintf("merchant %s", uid))
}

func (q *queries) scanMerchant(row *sql.Row, what string) (*models.Merchant, error) {
	m := &models.Merchant{}
	var balance, created int64
	var deleted sql.NullInt64

	err := row.Scan(&m.ID, &m.UID, &m.Name, &balance, &created, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}

	m.BalanceToDisburse = money.FromMinor(balance)
	m.CreatedAt = fromMillis(created)
	m.DeletedAt = timePtr(deleted)
	return m, nil
}

// LockMerchant locks the merchant row until the enclosing transaction ends.
func (q *queries) LockMerchant(ctx context.Context, id int64) error {
	var got int64
	err := q.queryRow(ctx,
		"SELECT id FROM merchants WHERE id = ? AND deleted_at IS NULL"+q.forUpdate(), id,
	).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("merchant %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock merchant: %w", err)
	}
	return nil
}

// AddBalanceToDisburse moves the merchant's running balance by delta.
func (q *queries) AddBalanceToDisburse(ctx context.Context, merchantID int64, delta decimal.Decimal) error {
	res, err := q.exec(ctx,
		"UPDATE merchants SET balance_to_disburse = balance_to_disburse + ? WHERE id = ?",
		money.ToMinor(delta), merchantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance to disburse: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("merchant %d", merchantID))
}

// DeleteMerchant marks a merchant as removed. Its rows stay in place.
func (q *queries) DeleteMerchant(ctx context.Context, id int64) error {
	res, err := q.exec(ctx,
		"UPDATE merchants SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		toMillis(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete merchant: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("merchant %d", id))
}

// UpsertFinancialTerms creates or replaces a merchant's financial terms.
func (q *queries) UpsertFinancialTerms(ctx context.Context, t *models.FinancialTerms) error {
	_, err := q.exec(ctx,
		`INSERT INTO financial_terms (
			merchant_id, commission_rate, commission_gst, commission_withholding,
			disbursement_rate, disbursement_gst, disbursement_withholding, settlement_days
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (merchant_id) DO UPDATE SET
			commission_rate = excluded.commission_rate,
			commission_gst = excluded.commission_gst,
			commission_withholding = excluded.commission_withholding,
			disbursement_rate = excluded.disbursement_rate,
			disbursement_gst = excluded.disbursement_gst,
			disbursement_withholding = excluded.disbursement_withholding,
			settlement_days = excluded.settlement_days`,
		t.MerchantID,
		t.CommissionRate.String(), t.CommissionGST.String(), t.CommissionWithholding.String(),
		t.DisbursementRate.String(), t.DisbursementGST.String(), t.DisbursementWithholding.String(),
		t.SettlementDays,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert financial terms: %w", err)
	}
	return nil
}

// GetFinancialTerms retrieves a merchant's financial terms.
func (q *queries) GetFinancialTerms(ctx context.Context, merchantID int64) (*models.FinancialTerms, error) {
	t := &models.FinancialTerms{MerchantID: merchantID}
	err := q.queryRow(ctx,
		`SELECT commission_rate, commission_gst, commission_withholding,
		        disbursement_rate, disbursement_gst, disbursement_withholding, settlement_days
		 FROM financial_terms WHERE merchant_id = ?`,
		merchantID,
	).Scan(
		&t.CommissionRate, &t.CommissionGST, &t.CommissionWithholding,
		&t.DisbursementRate, &t.DisbursementGST, &t.DisbursementWithholding,
		&t.SettlementDays,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("financial terms for merchant %d: %w", merchantID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get financial terms: %w", err)
	}
	return t, nil
}
