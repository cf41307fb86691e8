package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedMerchant(t *testing.T, store *Store) *models.Merchant {
	t.Helper()
	m := &models.Merchant{Name: "Corner Shop"}
	require.NoError(t, store.CreateMerchant(context.Background(), m))
	return m
}

func seedTxn(t *testing.T, store *Store, merchantID int64, id, balance string, settled bool, at time.Time) {
	t.Helper()
	require.NoError(t, store.CreateTransaction(context.Background(), &models.Transaction{
		TransactionID:  id,
		MerchantID:     merchantID,
		OriginalAmount: d(balance),
		SettledAmount:  d(balance),
		Balance:        d(balance),
		Status:         models.StatusCompleted,
		Type:           models.TypeCard,
		Settlement:     settled,
		Date:           at,
	}))
}

func TestMerchants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateMerchant generates ID and UID", func(t *testing.T) {
		m := seedMerchant(t, store)
		assert.NotZero(t, m.ID)
		assert.NotEmpty(t, m.UID)
		assert.False(t, m.CreatedAt.IsZero())

		byUID, err := store.GetMerchantByUID(ctx, m.UID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, byUID.ID)
		assert.Equal(t, "Corner Shop", byUID.Name)
	})

	t.Run("GetMerchant returns ErrNotFound for missing merchant", func(t *testing.T) {
		_, err := store.GetMerchant(ctx, 9999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteMerchant hides the merchant", func(t *testing.T) {
		m := seedMerchant(t, store)
		require.NoError(t, store.DeleteMerchant(ctx, m.ID))

		_, err := store.GetMerchant(ctx, m.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteMerchant(ctx, m.ID), storage.ErrNotFound)
	})

	t.Run("AddBalanceToDisburse accumulates", func(t *testing.T) {
		m := seedMerchant(t, store)
		require.NoError(t, store.AddBalanceToDisburse(ctx, m.ID, d("120.50")))
		require.NoError(t, store.AddBalanceToDisburse(ctx, m.ID, d("-20.25")))

		got, err := store.GetMerchant(ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, got.BalanceToDisburse.Equal(d("100.25")), "got %s", got.BalanceToDisburse)
	})

	t.Run("UpsertFinancialTerms replaces existing terms", func(t *testing.T) {
		m := seedMerchant(t, store)
		terms := &models.FinancialTerms{
			MerchantID:            m.ID,
			CommissionRate:        d("0.025"),
			CommissionGST:         d("0.004"),
			CommissionWithholding: d("0.001"),
			SettlementDays:        2,
		}
		require.NoError(t, store.UpsertFinancialTerms(ctx, terms))

		terms.CommissionRate = d("0.03")
		terms.SettlementDays = 3
		require.NoError(t, store.UpsertFinancialTerms(ctx, terms))

		got, err := store.GetFinancialTerms(ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, got.CommissionRate.Equal(d("0.03")))
		assert.True(t, got.TotalCommission().Equal(d("0.035")))
		assert.Equal(t, 3, got.SettlementDays)
	})

	t.Run("GetFinancialTerms returns ErrNotFound without terms", func(t *testing.T) {
		m := seedMerchant(t, store)
		_, err := store.GetFinancialTerms(ctx, m.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := seedMerchant(t, store)
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	seedTxn(t, store, m.ID, "t-new", "30.00", true, base.Add(2*time.Hour))
	seedTxn(t, store, m.ID, "t-old", "50.00", true, base)
	seedTxn(t, store, m.ID, "t-unsettled", "70.00", false, base)
	seedTxn(t, store, m.ID, "t-empty", "0", true, base)

	t.Run("GetTransaction round-trips amounts", func(t *testing.T) {
		txn, err := store.GetTransaction(ctx, "t-old")
		require.NoError(t, err)
		assert.True(t, txn.Balance.Equal(d("50")))
		assert.Equal(t, models.StatusCompleted, txn.Status)
		assert.Equal(t, models.TypeCard, txn.Type)
		assert.True(t, txn.Settlement)
		assert.Equal(t, base.UnixMilli(), txn.Date.UnixMilli())
	})

	t.Run("GetTransaction returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetTransaction(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListEligibleTransactions orders oldest first and skips ineligible rows", func(t *testing.T) {
		txns, err := store.ListEligibleTransactions(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, "t-old", txns[0].TransactionID)
		assert.Equal(t, "t-new", txns[1].TransactionID)
	})

	t.Run("SumSettledBalances honours the window", func(t *testing.T) {
		total, err := store.SumSettledBalances(ctx, m.ID, nil)
		require.NoError(t, err)
		assert.True(t, total.Equal(d("80")), "got %s", total)

		window := &storage.TimeRange{From: base.Add(time.Hour), To: base.Add(3 * time.Hour)}
		total, err = store.SumSettledBalances(ctx, m.ID, window)
		require.NoError(t, err)
		assert.True(t, total.Equal(d("30")), "got %s", total)
	})

	t.Run("UpdateTransaction applies only set fields", func(t *testing.T) {
		settled := true
		zero := decimal.Zero
		txn, err := store.UpdateTransaction(ctx, "t-unsettled", models.TransactionPatch{
			Settlement: &settled,
			Balance:    &zero,
		})
		require.NoError(t, err)
		assert.True(t, txn.Settlement)
		assert.True(t, txn.Disbursed)
		assert.True(t, txn.SettledAmount.Equal(d("70")))
	})

	t.Run("UpdateTransaction returns ErrNotFound", func(t *testing.T) {
		status := models.StatusFailed
		_, err := store.UpdateTransaction(ctx, "missing", models.TransactionPatch{Status: &status})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ApplyBalanceUpdates writes balances", func(t *testing.T) {
		require.NoError(t, store.ApplyBalanceUpdates(ctx, []models.BalanceUpdate{
			{TransactionID: "t-old", Balance: d("12.34")},
		}))
		txn, err := store.GetTransaction(ctx, "t-old")
		require.NoError(t, err)
		assert.True(t, txn.Balance.Equal(d("12.34")))
		assert.False(t, txn.Disbursed)
	})

	t.Run("negative balance violates the check constraint", func(t *testing.T) {
		err := store.ApplyBalanceUpdates(ctx, []models.BalanceUpdate{
			{TransactionID: "t-new", Balance: d("-1")},
		})
		assert.Error(t, err)
	})
}

func TestAtomicRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := seedMerchant(t, store)

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(q storage.Queries) error {
		if err := q.LockMerchant(ctx, m.ID); err != nil {
			return err
		}
		if err := q.AddBalanceToDisburse(ctx, m.ID, d("10")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.GetMerchant(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.BalanceToDisburse.IsZero(), "rolled back balance should be zero, got %s", got.BalanceToDisburse)

	err = store.Atomic(ctx, func(q storage.Queries) error {
		return q.AddBalanceToDisburse(ctx, m.ID, d("10"))
	})
	require.NoError(t, err)
	got, err = store.GetMerchant(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.BalanceToDisburse.Equal(d("10")))
}

func TestScheduledTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := seedMerchant(t, store)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	seedTxn(t, store, m.ID, "due", "10", false, now)
	seedTxn(t, store, m.ID, "later", "10", false, now)

	due := &models.ScheduledTask{TransactionID: "due", ScheduledAt: now.Add(-time.Hour)}
	later := &models.ScheduledTask{TransactionID: "later", ScheduledAt: now.Add(time.Hour)}
	require.NoError(t, store.CreateScheduledTask(ctx, due))
	require.NoError(t, store.CreateScheduledTask(ctx, later))
	assert.NotEmpty(t, due.ID)

	t.Run("a transaction has at most one task", func(t *testing.T) {
		err := store.CreateScheduledTask(ctx, &models.ScheduledTask{TransactionID: "due", ScheduledAt: now})
		assert.Error(t, err)
	})

	t.Run("ListDueTasks returns only pending tasks in the past", func(t *testing.T) {
		tasks, err := store.ListDueTasks(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "due", tasks[0].TransactionID)
		assert.Equal(t, models.TaskPending, tasks[0].Status)
		assert.Nil(t, tasks[0].ExecutedAt)
	})

	t.Run("MarkTaskExecuted runs once", func(t *testing.T) {
		ok, err := store.MarkTaskExecuted(ctx, due.ID, now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.MarkTaskExecuted(ctx, due.ID, now)
		require.NoError(t, err)
		assert.False(t, ok)

		task, err := store.GetScheduledTaskByTransaction(ctx, "due")
		require.NoError(t, err)
		assert.Equal(t, models.TaskExecuted, task.Status)
		require.NotNil(t, task.ExecutedAt)

		tasks, err := store.ListDueTasks(ctx, now, 10)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("GetScheduledTaskByTransaction returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetScheduledTaskByTransaction(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestSettlementReports(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := seedMerchant(t, store)

	first := &models.SettlementReport{
		MerchantID: m.ID, SettlementDate: "2026-10-15", TransactionCount: 1,
		TransactionAmount: d("100"), Commission: d("2.5"), GST: d("0.4"),
		WithholdingTax: d("0.1"), MerchantAmount: d("97"),
	}
	require.NoError(t, store.UpsertSettlementReport(ctx, first))
	assert.NotZero(t, first.ID)

	second := &models.SettlementReport{
		MerchantID: m.ID, SettlementDate: "2026-10-15", TransactionCount: 1,
		TransactionAmount: d("50"), Commission: d("1.25"), GST: d("0.2"),
		WithholdingTax: d("0.05"), MerchantAmount: d("48.5"),
	}
	require.NoError(t, store.UpsertSettlementReport(ctx, second))

	t.Run("upsert accumulates into one row", func(t *testing.T) {
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(2), second.TransactionCount)
		assert.True(t, second.TransactionAmount.Equal(d("150")))
		assert.True(t, second.MerchantAmount.Equal(d("145.5")))
	})

	t.Run("GetSettlementReports skips unknown IDs", func(t *testing.T) {
		reports, err := store.GetSettlementReports(ctx, []int64{first.ID, 4242})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "2026-10-15", reports[0].SettlementDate)

		reports, err = store.GetSettlementReports(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("UpdateSettlementReportAmounts overwrites money fields", func(t *testing.T) {
		halved := second.Divide(d("2"))
		require.NoError(t, store.UpdateSettlementReportAmounts(ctx, &halved))

		reports, err := store.GetSettlementReports(ctx, []int64{first.ID})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].TransactionAmount.Equal(d("75")))
		assert.True(t, reports[0].Commission.Equal(d("1.88")), "got %s", reports[0].Commission)
		assert.Equal(t, int64(2), reports[0].TransactionCount)
	})
}

func TestDisbursements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := seedMerchant(t, store)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateDisbursement(ctx, &models.Disbursement{
		MerchantID: m.ID, Amount: d("40"), MerchantAmount: d("40"), CreatedAt: now.Add(-48 * time.Hour),
	}))
	recent := &models.Disbursement{MerchantID: m.ID, Amount: d("15.5"), MerchantAmount: d("15.5"), CreatedAt: now}
	require.NoError(t, store.CreateDisbursement(ctx, recent))
	assert.NotEmpty(t, recent.ID)

	total, err := store.SumDisbursements(ctx, m.ID, nil)
	require.NoError(t, err)
	assert.True(t, total.Equal(d("55.5")), "got %s", total)

	total, err = store.SumDisbursements(ctx, m.ID, &storage.TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.True(t, total.Equal(d("15.5")), "got %s", total)
}

func TestRebind(t *testing.T) {
	pg := &queries{driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)",
		pg.rebind("SELECT * FROM t WHERE a = ? AND b IN ("+placeholders(2)+")"))

	lite := &queries{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
	assert.Equal(t, "", (&queries{driver: DriverPostgres, inTx: false}).forUpdate())
	assert.Equal(t, " FOR UPDATE", (&queries{driver: DriverPostgres, inTx: true}).forUpdate())
}
