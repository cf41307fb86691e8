package sqlstore

import (
	"context"
	"fmt"

	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/money"
	"github.com/mmynk/paygate/internal/storage"
)

const reportColumns = `id, merchant_id, settlement_date, transaction_count,
	transaction_amount, commission, gst, withholding_tax, merchant_amount`

// UpsertSettlementReport accumulates a settlement into its merchant/date row.
func (q *queries) UpsertSettlementReport(ctx context.Context, r *models.SettlementReport) error {
	row := q.queryRow(ctx,
		`INSERT INTO settlement_reports (
			merchant_id, settlement_date, transaction_count,
			transaction_amount, commission, gst, withholding_tax, merchant_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (merchant_id, settlement_date) DO UPDATE SET
			transaction_count = settlement_reports.transaction_count + excluded.transaction_count,
			transaction_amount = settlement_reports.transaction_amount + excluded.transaction_amount,
			commission = settlement_reports.commission + excluded.commission,
			gst = settlement_reports.gst + excluded.gst,
			withholding_tax = settlement_reports.withholding_tax + excluded.withholding_tax,
			merchant_amount = settlement_reports.merchant_amount + excluded.merchant_amount
		RETURNING `+reportColumns,
		r.MerchantID, r.SettlementDate, r.TransactionCount,
		money.ToMinor(r.TransactionAmount), money.ToMinor(r.Commission), money.ToMinor(r.GST),
		money.ToMinor(r.WithholdingTax), money.ToMinor(r.MerchantAmount),
	)

	stored, err := scanReport(row)
	if err != nil {
		return fmt.Errorf("failed to upsert settlement report: %w", err)
	}
	*r = *stored
	return nil
}

// GetSettlementReports fetches the reports with the given IDs, ordered by ID.
func (q *queries) GetSettlementReports(ctx context.Context, ids []int64) ([]models.SettlementReport, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.query(ctx,
		"SELECT "+reportColumns+" FROM settlement_reports WHERE id IN ("+placeholders(len(ids))+") ORDER BY id"+q.forUpdate(),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement reports: %w", err)
	}
	defer rows.Close()

	var reports []models.SettlementReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement report: %w", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement reports: %w", err)
	}

	return reports, nil
}

// UpdateSettlementReportAmounts overwrites a report's monetary columns.
func (q *queries) UpdateSettlementReportAmounts(ctx context.Context, r *models.SettlementReport) error {
	res, err := q.exec(ctx,
		`UPDATE settlement_reports SET
			transaction_amount = ?, commission = ?, gst = ?, withholding_tax = ?, merchant_amount = ?
		 WHERE id = ?`,
		money.ToMinor(r.TransactionAmount), money.ToMinor(r.Commission), money.ToMinor(r.GST),
		money.ToMinor(r.WithholdingTax), money.ToMinor(r.MerchantAmount), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement report: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("settlement report %d", r.ID))
}

func scanReport(s scanner) (*models.SettlementReport, error) {
	r := &models.SettlementReport{}
	var amount, commission, gst, wht, merchant int64

	err := s.Scan(&r.ID, &r.MerchantID, &r.SettlementDate, &r.TransactionCount,
		&amount, &commission, &gst, &wht, &merchant)
	if err != nil {
		return nil, err
	}
	r.TransactionAmount = money.FromMinor(amount)
	r.Commission = money.FromMinor(commission)
	r.GST = money.FromMinor(gst)
	r.WithholdingTax = money.FromMinor(wht)
	r.MerchantAmount = money.FromMinor(merchant)
	return r, nil
}

var _ storage.Queries = (*queries)(nil)
