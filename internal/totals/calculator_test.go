package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWithoutGST(t *testing.T) {
	got := Compute([]Line{{PricePerUnit: 500, Qty: 4}, {PricePerUnit: 200, Qty: 10}}, 0, 0, 0)

	assert.Equal(t, []float64{2000, 2000}, got.LineTotals)
	assert.Equal(t, 4000.0, got.Subtotal)
	assert.Equal(t, 0.0, got.GSTAmount)
	assert.Equal(t, 4000.0, got.GrandTotal)
	assert.Equal(t, 4000.0, got.BalanceDue)
}

func TestComputeWithGST(t *testing.T) {
	got := Compute([]Line{{PricePerUnit: 1500, Qty: 2}, {PricePerUnit: 300, Qty: 5}}, 18, 0, 0)

	assert.Equal(t, 4500.0, got.Subtotal)
	assert.Equal(t, 810.0, got.GSTAmount)
	assert.Equal(t, 5310.0, got.GrandTotal)
}

func TestComputeIdentityAcrossRates(t *testing.T) {
	lines := []Line{{PricePerUnit: 99.99, Qty: 3}, {PricePerUnit: 0.1, Qty: 7}, {PricePerUnit: 1234.56, Qty: 1.5}}
	for _, rate := range GSTRates {
		for _, discount := range []float64{0, 10, 250.5} {
			got := Compute(lines, rate, discount, 0)

			sum := decimal.Zero
			for _, lt := range got.LineTotals {
				sum = sum.Add(decimal.NewFromFloat(lt))
			}
			require.True(t, sum.Equal(decimal.NewFromFloat(got.Subtotal)), "rate %d", rate)

			want := decimal.NewFromFloat(got.Subtotal).
				Add(decimal.NewFromFloat(got.GSTAmount)).
				Sub(decimal.NewFromFloat(discount))
			require.True(t, want.Equal(decimal.NewFromFloat(got.GrandTotal)), "rate %d discount %v", rate, discount)
		}
	}
}

func TestComputeRecomputesLineTotals(t *testing.T) {
	got := Compute([]Line{{PricePerUnit: 0.1, Qty: 3}}, 0, 0, 0)
	assert.Equal(t, []float64{0.3}, got.LineTotals)
	assert.Equal(t, 0.3, got.Subtotal)
}

func TestComputeBalanceClamp(t *testing.T) {
	lines := []Line{{PricePerUnit: 1000, Qty: 1}}

	partial := Compute(lines, 0, 0, 400)
	assert.Equal(t, 600.0, partial.BalanceDue)
	assert.True(t, partial.PartiallyPaid())

	exact := Compute(lines, 0, 0, 1000)
	assert.Equal(t, 0.0, exact.BalanceDue)
	assert.False(t, exact.PartiallyPaid())

	over := Compute(lines, 0, 0, 5000)
	assert.Equal(t, 0.0, over.BalanceDue)
	assert.Equal(t, 5000.0, over.Received)
}

func TestComputeNegativeGrandTotalPassesThrough(t *testing.T) {
	got := Compute([]Line{{PricePerUnit: 100, Qty: 1}}, 5, 200, 0)
	assert.Equal(t, 105.0-200.0, got.GrandTotal)
	assert.Equal(t, 0.0, got.BalanceDue)
}

func TestComputeRoundsGST(t *testing.T) {
	got := Compute([]Line{{PricePerUnit: 33.33, Qty: 1}}, 18, 0, 0)
	assert.Equal(t, 6.0, got.GSTAmount)
	assert.Equal(t, 39.33, got.GrandTotal)
}

func TestValidGSTPercent(t *testing.T) {
	for _, rate := range []int{0, 5, 12, 18, 28} {
		assert.True(t, ValidGSTPercent(rate))
	}
	assert.False(t, ValidGSTPercent(10))
	assert.False(t, ValidGSTPercent(-5))
}

func TestComputeMultipliesRawUnitPrice(t *testing.T) {
	got := Compute([]Line{{PricePerUnit: 0.125, Qty: 8}}, 0, 0, 0)
	assert.Equal(t, []float64{1}, got.LineTotals)
	assert.Equal(t, 1.0, got.Subtotal)
	assert.Equal(t, 1.0, got.GrandTotal)

	got = Compute([]Line{{PricePerUnit: 2.345, Qty: 1000}}, 18, 0, 0)
	assert.Equal(t, 2345.0, got.Subtotal)
	assert.Equal(t, 422.1, got.GSTAmount)
	assert.Equal(t, 2767.1, got.GrandTotal)
}

func TestComputeKeepsDiscountAndReceivedAsEntered(t *testing.T) {
	got := Compute([]Line{{PricePerUnit: 100, Qty: 1}}, 0, 0.125, 50.005)
	assert.Equal(t, 0.125, got.Discount)
	assert.Equal(t, 50.005, got.Received)
	assert.Equal(t, 99.875, got.GrandTotal)
	assert.Equal(t, 49.87, got.BalanceDue)
}
