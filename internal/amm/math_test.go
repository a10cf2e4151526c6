package amm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputAmount_KnownScenario(t *testing.T) {
	// 100 in against 1000/1000 reserves: 100*1000/1100
	out := OutputAmount(100, 1000, 1000)
	assert.InDelta(t, 90.9090909, out, 1e-6)
}

func TestOutputAmount_NeverDrainsPool(t *testing.T) {
	cases := []struct {
		amountIn, reserveIn, reserveOut float64
	}{
		{1, 1000, 1000},
		{1000, 1000, 1000},
		{1e12, 1000, 1000},
		{1e18, 1, 2000},
		{0.0001, 5, 5},
	}
	for _, c := range cases {
		out := OutputAmount(c.amountIn, c.reserveIn, c.reserveOut)
		assert.Less(t, out, c.reserveOut,
			"output must stay below reserveOut for in=%v r=%v/%v", c.amountIn, c.reserveIn, c.reserveOut)
	}
}

func TestOutputAmount_MonotonicInAmountIn(t *testing.T) {
	prev := 0.0
	for in := 1.0; in <= 1e6; in *= 3 {
		out := OutputAmount(in, 50_000, 75_000)
		require.GreaterOrEqual(t, out, prev, "amountIn=%v", in)
		prev = out
	}
}

func TestOutputAmount_DegenerateInputs(t *testing.T) {
	assert.Zero(t, OutputAmount(0, 1000, 1000))
	assert.Zero(t, OutputAmount(-5, 1000, 1000))
	assert.Zero(t, OutputAmount(100, 0, 1000))
	assert.Zero(t, OutputAmount(100, 1000, 0))
	assert.Zero(t, OutputAmount(100, -1, -1))
}

func TestPriceImpactPercent(t *testing.T) {
	// 1000/1000 pool, 100 in: out ~= 90.909, current price 1, new price
	// (1000-90.909)/(1000+100) ~= 0.82645, so the marginal price moves
	// ~17.355% against the trader.
	amountIn, rIn, rOut := 100.0, 1000.0, 1000.0
	out := OutputAmount(amountIn, rIn, rOut)
	got := PriceImpactPercent(amountIn, rIn, rOut)
	assert.InDelta(t, 17.3554, got, 1e-3)

	// For this pool geometry the executed-price degradation is ~9.09% when
	// measured as out/in vs spot.
	execRate := out / amountIn
	assert.InDelta(t, 9.0909090, 100*(1-execRate), 1e-4)
}

func TestPriceImpactPercent_NonNegative(t *testing.T) {
	for _, in := range []float64{0.001, 1, 50, 999, 1e6} {
		for _, r := range []float64{10, 1000, 1e9} {
			impact := PriceImpactPercent(in, r, r*2)
			assert.GreaterOrEqual(t, impact, 0.0, "in=%v reserve=%v", in, r)
		}
	}
}

func TestPriceImpactPercent_DegenerateInputs(t *testing.T) {
	assert.Zero(t, PriceImpactPercent(0, 1000, 1000))
	assert.Zero(t, PriceImpactPercent(100, 0, 1000))
	assert.Zero(t, PriceImpactPercent(100, 1000, 0))
}

func TestMinOutputWithSlippage(t *testing.T) {
	assert.InDelta(t, 99.0, MinOutputWithSlippage(100, 1), 1e-9)
	assert.Equal(t, 100.0, MinOutputWithSlippage(100, 0))
	assert.InDelta(t, 95.0, MinOutputWithSlippage(100, 5), 1e-9)
}

func TestExchangeRate(t *testing.T) {
	assert.Equal(t, 2.0, ExchangeRate(1000, 2000))
	assert.Equal(t, 0.0, ExchangeRate(0, 2000))
	assert.Equal(t, 0.0, ExchangeRate(-1, 2000))
	assert.False(t, math.IsInf(ExchangeRate(0, 1), 0))
}

func TestIsValidSwap(t *testing.T) {
	assert.True(t, IsValidSwap(100, 1000, 1000))
	assert.False(t, IsValidSwap(0, 1000, 1000))
	assert.False(t, IsValidSwap(-10, 1000, 1000))
	assert.False(t, IsValidSwap(100, 0, 1000), "empty input reserve is not tradable")
	assert.False(t, IsValidSwap(100, 1000, 0), "empty output reserve is not tradable")
}

// Validity must depend on the real input-side reserve: the same trade size
// against a thinner input reserve produces a larger output, and the check
// has to see that. A fixed placeholder reserve would pass both cases with
// the same answer.
func TestIsValidSwap_UsesActualInputReserve(t *testing.T) {
	deepIn := OutputAmount(500, 1_000_000, 1000)
	thinIn := OutputAmount(500, 10, 1000)
	require.Greater(t, thinIn, deepIn)

	assert.True(t, IsValidSwap(500, 1_000_000, 1000))
	// Against a 10-unit input reserve the output approaches the full output
	// reserve; it is still < reserveOut, so the swap remains technically
	// valid, but the computed outputs must differ.
	assert.NotEqual(t,
		OutputAmount(500, 1_000_000, 1000),
		OutputAmount(500, 10, 1000),
	)
}

func TestClassifyImpact(t *testing.T) {
	assert.Equal(t, SeverityNone, ClassifyImpact(0.5))
	assert.Equal(t, SeverityLow, ClassifyImpact(2))
	assert.Equal(t, SeverityModerate, ClassifyImpact(4))
	assert.Equal(t, SeverityHigh, ClassifyImpact(7))
	assert.Equal(t, SeverityExtreme, ClassifyImpact(15))
}
