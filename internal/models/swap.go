package models

import "time"

// SwapEvent records one executed swap (or pool initialization) for the
// recent-swaps cache and the history store.
type SwapEvent struct {
	Signature        string    `json:"signature"`
	Timestamp        time.Time `json:"timestamp"`
	EntryPoint       string    `json:"entry_point"`
	Direction        string    `json:"direction"`
	AmountIn         float64   `json:"amount_in"`
	AmountOut        float64   `json:"amount_out"`
	MinAmountOut     float64   `json:"min_amount_out"`
	PriceImpactPct   float64   `json:"price_impact_pct"`
	ExchangeRate     float64   `json:"exchange_rate"`
	AmountOutDecoded bool      `json:"amount_out_decoded"`
	PollCount        int       `json:"poll_count"`
	DurationMS       int64     `json:"duration_ms"`
}
