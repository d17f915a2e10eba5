package trading

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(price string, qty int64, comm string) Fill {
	return Fill{
		Price:      decimal.RequireFromString(price),
		Quantity:   qty,
		Commission: decimal.RequireFromString(comm),
	}
}

func TestWeightedPriceSingleFill(t *testing.T) {
	t.Parallel()

	acc := &FillAccumulator{}
	acc.Append(fill("5.00", 10, "1.00"))

	price, err := acc.WeightedPrice()
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("5.00")), "got %s", price)
	assert.Equal(t, int64(10), acc.Quantity())
	assert.True(t, acc.Commission().Equal(decimal.RequireFromString("1.00")))
}

func TestWeightedPriceMultipleFills(t *testing.T) {
	t.Parallel()

	acc := &FillAccumulator{}
	acc.Append(fill("10.00", 5, "0.50"))
	acc.Append(fill("20.00", 5, "0.75"))

	price, err := acc.WeightedPrice()
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("15.00")), "got %s", price)
	assert.Equal(t, int64(10), acc.Quantity())
	assert.True(t, acc.Commission().Equal(decimal.RequireFromString("1.25")))
}

func TestWeightedPriceInvariantUnderReordering(t *testing.T) {
	t.Parallel()

	fills := []Fill{
		fill("1.25", 3, "0.10"),
		fill("1.50", 7, "0.20"),
		fill("1.10", 2, "0.05"),
	}
	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	var want decimal.Decimal
	for i, perm := range permutations {
		acc := &FillAccumulator{}
		for _, j := range perm {
			acc.Append(fills[j])
		}
		price, err := acc.WeightedPrice()
		require.NoError(t, err)
		if i == 0 {
			want = price
			continue
		}
		assert.True(t, price.Equal(want), "permutation %v: got %s, want %s", perm, price, want)
	}
}

func TestWeightedPriceEmptyAccumulator(t *testing.T) {
	t.Parallel()

	acc := &FillAccumulator{}
	_, err := acc.WeightedPrice()
	assert.ErrorIs(t, err, ErrNoFills)
}

func TestOrderLifecycleFlags(t *testing.T) {
	t.Parallel()

	o := &Order{BrokerOrderID: 100}
	assert.False(t, o.Persisted())
	assert.False(t, o.Assigned())

	o.ID = 7
	o.TradeID = 3
	assert.True(t, o.Persisted())
	assert.True(t, o.Assigned())
}
