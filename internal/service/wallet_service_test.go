package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paygate/internal/apperr"
	"github.com/mmynk/paygate/internal/models"
)

func TestGetWalletBalance(t *testing.T) {
	store := newTestStore(t)
	svc := NewWalletService(store, testOptions()...)
	ctx := context.Background()

	t.Run("defaults to zero", func(t *testing.T) {
		m := seedMerchant(t, store)
		got, err := svc.GetWalletBalance(ctx, m.ID)
		require.NoError(t, err)
		assertDecimal(t, "0", got.WalletBalance)
		assertDecimal(t, "0", got.TodayBalance)
	})

	t.Run("separates today from the rest", func(t *testing.T) {
		m := seedMerchant(t, store)
		seedSettled(t, store, m.ID, "w-old", "100", testNow.AddDate(0, 0, -3))
		seedSettled(t, store, m.ID, "w-today", "40.50", testNow.Add(-time.Hour))
		seedSettled(t, store, m.ID, "w-empty", "0", testNow)
		require.NoError(t, store.CreateTransaction(ctx, &models.Transaction{
			TransactionID: "w-unsettled", MerchantID: m.ID,
			OriginalAmount: d("70"), SettledAmount: d("70"), Balance: d("70"),
			Status: models.StatusCompleted, Type: models.TypeCard, Date: testNow,
		}))

		got, err := svc.GetWalletBalance(ctx, m.ID)
		require.NoError(t, err)
		assertDecimal(t, "140.50", got.WalletBalance)
		assertDecimal(t, "40.50", got.TodayBalance)

		byUID, err := svc.GetWalletBalanceByUID(ctx, m.UID)
		require.NoError(t, err)
		assert.True(t, byUID.WalletBalance.Equal(got.WalletBalance))
	})

	t.Run("midnight boundaries are inclusive", func(t *testing.T) {
		m := seedMerchant(t, store)
		start := time.Date(2026, 10, 15, 0, 0, 0, 0, testNow.Location())
		seedSettled(t, store, m.ID, "w-start", "1", start)
		seedSettled(t, store, m.ID, "w-end", "2", start.AddDate(0, 0, 1).Add(-time.Millisecond))
		seedSettled(t, store, m.ID, "w-next", "4", start.AddDate(0, 0, 1))

		got, err := svc.GetWalletBalance(ctx, m.ID)
		require.NoError(t, err)
		assertDecimal(t, "7", got.WalletBalance)
		assertDecimal(t, "3", got.TodayBalance)
	})

	t.Run("missing merchant is NotFound", func(t *testing.T) {
		_, err := svc.GetWalletBalance(ctx, 424242)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		_, err = svc.GetWalletBalanceByUID(ctx, "nonexistent")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("store failure is Internal", func(t *testing.T) {
		broken := newTestStore(t)
		m := seedMerchant(t, broken)
		require.NoError(t, broken.Close())

		_, err := NewWalletService(broken, testOptions()...).GetWalletBalance(ctx, m.ID)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
		assert.Equal(t, "Unable to fetch wallet balance", apperr.MessageOf(err))
	})
}
