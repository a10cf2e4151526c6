package amm

// Constant-product pricing for a two-reserve pool. All functions are pure
// and total: degenerate inputs (empty pool, non-positive amounts) return a
// zero sentinel instead of panicking, so callers never have to guard a quote
// path against division by zero.

// OutputAmount computes the swap output for amountIn against the given
// reserves using x*y=k (no fee):
//
//	amountOut = amountIn * reserveOut / (reserveIn + amountIn)
//
// Returns 0 when amountIn, reserveIn or reserveOut is not positive. For any
// finite positive amountIn the result is strictly less than reserveOut; the
// pool can only be drained asymptotically.
func OutputAmount(amountIn, reserveIn, reserveOut float64) float64 {
	if amountIn <= 0 || reserveIn <= 0 || reserveOut <= 0 {
		return 0
	}
	return amountIn * reserveOut / (reserveIn + amountIn)
}

// PriceImpactPercent computes how much the marginal price moves against the
// trader for a swap of amountIn, as a percentage of the current price:
//
//	100 * (currentPrice - newPrice) / currentPrice
//
// where currentPrice = reserveOut/reserveIn and newPrice is the rate after
// the swap settles. Returns 0 on the same degenerate inputs as OutputAmount.
// The result is >= 0 for any valid positive swap; the effective price never
// improves with size.
func PriceImpactPercent(amountIn, reserveIn, reserveOut float64) float64 {
	if amountIn <= 0 || reserveIn <= 0 || reserveOut <= 0 {
		return 0
	}

	amountOut := OutputAmount(amountIn, reserveIn, reserveOut)
	currentPrice := reserveOut / reserveIn
	newPrice := (reserveOut - amountOut) / (reserveIn + amountIn)

	return 100 * (currentPrice - newPrice) / currentPrice
}

// MinOutputWithSlippage applies a slippage tolerance to an expected output:
//
//	expectedOutput * (1 - slippagePercent/100)
//
// No clamping is performed here; rejecting negative tolerances or values
// above 100 is the caller's contract (see engine.Guard).
func MinOutputWithSlippage(expectedOutput, slippagePercent float64) float64 {
	return expectedOutput * (1 - slippagePercent/100)
}

// ExchangeRate returns the spot price of token A in units of token B
// (reserveB / reserveA). Returns 0 when reserveA <= 0 so an empty pool never
// propagates Inf or NaN into display code.
func ExchangeRate(reserveA, reserveB float64) float64 {
	if reserveA <= 0 {
		return 0
	}
	return reserveB / reserveA
}

// IsValidSwap reports whether a swap of amountIn can execute against the
// given reserves. The input must be positive, and the computed output must
// stay strictly below the output-side reserve. Validity is derived from the
// pool's actual input-side reserve, never a placeholder value.
func IsValidSwap(amountIn, reserveIn, reserveOut float64) bool {
	if amountIn <= 0 {
		return false
	}
	out := OutputAmount(amountIn, reserveIn, reserveOut)
	if out <= 0 {
		return false
	}
	return out < reserveOut
}
