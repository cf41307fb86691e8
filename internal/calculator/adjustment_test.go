package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/paygate/internal/apperr"
)

func TestClassifyAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		target   string
		wantType AdjustmentType
		wantDiff string
	}{
		{name: "decrease is a disbursement", current: "300", target: "200", wantType: AdjustmentDisbursement, wantDiff: "100"},
		{name: "increase is a settlement", current: "100", target: "200", wantType: AdjustmentSettlement, wantDiff: "100"},
		{name: "equal counts as settlement", current: "200", target: "200", wantType: AdjustmentSettlement, wantDiff: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, diff := ClassifyAdjustment(d(tt.current), d(tt.target))
			assert.Equal(t, tt.wantType, typ)
			assert.True(t, diff.Equal(d(tt.wantDiff)))
		})
	}
}

func TestScaleFactor(t *testing.T) {
	f, err := ScaleFactor(d("300"), d("200"))
	require.NoError(t, err)
	assert.Equal(t, "0.6666666666666667", f.String())

	_, err = ScaleFactor(decimal.Zero, d("200"))
	assert.ErrorIs(t, err, apperr.ErrZeroBalance)
}

func TestScaleBalances(t *testing.T) {
	t.Run("proportional decrease", func(t *testing.T) {
		updates, err := ScaleBalances(eligible("100", "200"), d("150"))
		require.NoError(t, err)
		assert.True(t, updates[0].Balance.Equal(d("50")))
		assert.True(t, updates[1].Balance.Equal(d("100")))
	})

	t.Run("rounding residue lands on newest row", func(t *testing.T) {
		updates, err := ScaleBalances(eligible("100", "100", "100"), d("200"))
		require.NoError(t, err)
		// 66.67 + 66.67 + 66.66
		assert.True(t, updates[0].Balance.Equal(d("66.67")))
		assert.True(t, updates[1].Balance.Equal(d("66.67")))
		assert.True(t, updates[2].Balance.Equal(d("66.66")))
	})

	t.Run("sum always equals target", func(t *testing.T) {
		txns := eligible("0.01", "33.33", "1000", "7.77", "0.02")
		for _, target := range []string{"0", "0.01", "1", "99.99", "1041.13", "5000"} {
			updates, err := ScaleBalances(txns, d(target))
			require.NoError(t, err)
			sum := decimal.Zero
			for _, u := range updates {
				assert.False(t, u.Balance.IsNegative())
				sum = sum.Add(u.Balance)
			}
			assert.True(t, sum.Equal(d(target)), "target %s, sum %s", target, sum)
		}
	})

	t.Run("zero target disburses everything", func(t *testing.T) {
		updates, err := ScaleBalances(eligible("10", "20"), decimal.Zero)
		require.NoError(t, err)
		for _, u := range updates {
			assert.True(t, u.Disbursed)
			assert.True(t, u.Balance.IsZero())
		}
	})

	t.Run("empty wallet", func(t *testing.T) {
		_, err := ScaleBalances(nil, d("10"))
		assert.ErrorIs(t, err, apperr.ErrZeroBalance)
	})
}
