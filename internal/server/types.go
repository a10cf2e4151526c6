package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Failure string `json:"failure,omitempty"` // Lifecycle failure code, when the error came from an attempt
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Cluster string `json:"cluster"`
}

// QuoteRequest carries the swap parameters to price against current reserves
type QuoteRequest struct {
	Direction       string  `json:"direction"`        // "a_to_b" or "b_to_a"
	AmountIn        float64 `json:"amount_in"`        // base units
	SlippagePercent float64 `json:"slippage_percent"` // tolerance used for min_amount_out
}

// SwapExecRequest carries the parameters for an executed swap
type SwapExecRequest struct {
	Direction    string  `json:"direction"`
	AmountIn     float64 `json:"amount_in"`
	MinAmountOut float64 `json:"min_amount_out"` // explicit floor; takes precedence over slippage_percent
	// SlippagePercent derives min_amount_out from a fresh quote when
	// min_amount_out is zero.
	SlippagePercent float64 `json:"slippage_percent"`
}

// InitializeRequest seeds an empty pool with starting reserves
type InitializeRequest struct {
	ReserveA uint64 `json:"reserve_a"`
	ReserveB uint64 `json:"reserve_b"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}
