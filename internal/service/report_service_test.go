package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/models"
)

func TestDivideSettlementRecords(t *testing.T) {
	store := newTestStore(t)
	svc := NewReportService(store, testOptions()...)
	ctx := context.Background()
	m := seedMerchant(t, store)

	report := &models.SettlementReport{
		MerchantID: m.ID, SettlementDate: "2026-10-15", TransactionCount: 4,
		TransactionAmount: d("1000"), Commission: d("25"), GST: d("4"),
		WithholdingTax: d("1"), MerchantAmount: d("970"),
	}
	require.NoError(t, store.UpsertSettlementReport(ctx, report))

	t.Run("validates the body", func(t *testing.T) {
		for _, tc := range []struct {
			name   string
			ids    []int64
			factor string
		}{
			{"no ids", nil, "2"},
			{"zero factor", []int64{1, 2}, "0"},
			{"negative factor", []int64{report.ID}, "-2"},
		} {
			_, err := svc.DivideSettlementRecords(ctx, tc.ids, d(tc.factor))
			assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err), tc.name)
			assert.Equal(t, 404, apperr.StatusOf(err), tc.name)
			assert.Equal(t, "Invalid Body Values", apperr.MessageOf(err), tc.name)
		}
	})

	t.Run("unknown ids", func(t *testing.T) {
		_, err := svc.DivideSettlementRecords(ctx, []int64{999}, d("2"))
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
		assert.Equal(t, 400, apperr.StatusOf(err))
		assert.Equal(t, "Invalid Settlement IDs", apperr.MessageOf(err))
	})

	t.Run("divides money and keeps the count", func(t *testing.T) {
		divided, err := svc.DivideSettlementRecords(ctx, []int64{report.ID, 999}, d("3"))
		require.NoError(t, err)
		require.Len(t, divided, 1)
		assertDecimal(t, "333.33", divided[0].TransactionAmount)
		assertDecimal(t, "8.33", divided[0].Commission)
		assertDecimal(t, "323.33", divided[0].MerchantAmount)
		assert.Equal(t, int64(4), divided[0].TransactionCount)

		stored, err := store.GetSettlementReports(ctx, []int64{report.ID})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assertDecimal(t, "333.33", stored[0].TransactionAmount)
		assertDecimal(t, "1.33", stored[0].GST)
	})
}
