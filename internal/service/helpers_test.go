package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paygate/internal/calculator"
	"github.com/mmynk/paygate/internal/models"
	"github.com/mmynk/paygate/internal/storage/sqlstore"
)

// testNow is a Thursday morning in the business zone.
var testNow = time.Date(2026, 10, 15, 10, 30, 0, 0, calculator.BusinessLocation)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func testOptions() []Option {
	return []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return testNow }),
		WithLocation(calculator.BusinessLocation),
	}
}

// seedMerchant creates a merchant with 2.5% + 0.4% + 0.1% commission and a
// two-day settlement delay.
func seedMerchant(t *testing.T, store *sqlstore.Store) *models.Merchant {
	t.Helper()
	ctx := context.Background()

	m := &models.Merchant{Name: "Test Merchant", CreatedAt: testNow}
	require.NoError(t, store.CreateMerchant(ctx, m))
	require.NoError(t, store.UpsertFinancialTerms(ctx, &models.FinancialTerms{
		MerchantID:              m.ID,
		CommissionRate:          d("0.025"),
		CommissionGST:           d("0.004"),
		CommissionWithholding:   d("0.001"),
		DisbursementRate:        d("0.01"),
		DisbursementGST:         d("0"),
		DisbursementWithholding: d("0"),
		SettlementDays:          2,
	}))
	return m
}

// seedSettled stores a completed, settled transaction holding balance.
func seedSettled(t *testing.T, store *sqlstore.Store, merchantID int64, id, balance string, at time.Time) {
	t.Helper()
	require.NoError(t, store.CreateTransaction(context.Background(), &models.Transaction{
		TransactionID:  id,
		MerchantID:     merchantID,
		OriginalAmount: d(balance),
		SettledAmount:  d(balance),
		Balance:        d(balance),
		Status:         models.StatusCompleted,
		Type:           models.TypeWallet,
		Settlement:     true,
		Date:           at,
	}))
}

func balanceOf(t *testing.T, store *sqlstore.Store, transactionID string) decimal.Decimal {
	t.Helper()
	txn, err := store.GetTransaction(context.Background(), transactionID)
	require.NoError(t, err)
	return txn.Balance
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, got.Equal(d(want)), "want %s, got %s %v", want, got, msgAndArgs)
}
