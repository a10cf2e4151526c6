package engine

import (
	"time"

	"github.com/omer-farooq/pairswap/internal/amm"
	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/pool"
)

// SwapRequest is the ephemeral input for one swap execution, derived from a
// quote plus the user's chosen slippage tolerance. Amounts are in the pool's
// base units; fractional values are floored at the build step.
type SwapRequest struct {
	Direction    contract.Direction
	AmountIn     float64
	MinAmountOut float64 // slippage floor; must be <= the quoted output
}

// SwapQuote is a derived, read-only view computed from exactly one reserve
// snapshot and one input amount. Never persisted; recomputed whenever the
// inputs change.
type SwapQuote struct {
	Direction          contract.Direction  `json:"direction"`
	AmountIn           float64             `json:"amount_in"`
	AmountOut          float64             `json:"amount_out"`
	MinAmountOut       float64             `json:"min_amount_out"`
	PriceImpactPercent float64             `json:"price_impact_percent"`
	ImpactSeverity     amm.ImpactSeverity  `json:"impact_severity"`
	ExchangeRate       float64             `json:"exchange_rate"`
	Snapshot           pool.ReserveSnapshot `json:"snapshot"`
	QuotedAt           time.Time           `json:"quoted_at"`
}

// SwapResult is the final result of an executed swap.
type SwapResult struct {
	Signature string `json:"signature"`
	// AmountOut is the observed output in base units. When the chain's
	// return value could not be decoded this falls back to the requested
	// minimum and AmountOutDecoded is false.
	AmountOut        float64       `json:"amount_out"`
	AmountOutDecoded bool          `json:"amount_out_decoded"`
	PollCount        int           `json:"poll_count"`
	Duration         time.Duration `json:"duration"`
	// Snapshot is a fresh fetch taken after the swap settled.
	Snapshot pool.ReserveSnapshot `json:"snapshot"`
}

// InitializeResult is the final result of seeding the pool.
type InitializeResult struct {
	Signature string               `json:"signature"`
	Duration  time.Duration        `json:"duration"`
	Snapshot  pool.ReserveSnapshot `json:"snapshot"`
}
