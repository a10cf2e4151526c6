package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/engine"
	"github.com/omer-farooq/pairswap/internal/flags"
	"github.com/omer-farooq/pairswap/internal/lifecycle"
	"github.com/omer-farooq/pairswap/internal/storage"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Engine  *engine.Engine    // Swap quoting and execution
	Cache   storage.SwapCache // Redis-backed swap event cache
	Flags   *flags.Store      // Redis-backed feature flags store
	Cluster string            // Cluster name, reported by /health
	DevMode bool              // Enable detailed error responses in development
	Logger  *logrus.Logger    // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// attemptErr renders an error from the engine. Lifecycle failures carry a
// code, an entry point, and sometimes a signature; all of that reaches the
// caller so an ambiguous outcome can be investigated.
func (h *Handlers) attemptErr(c echo.Context, err error) error {
	var f *lifecycle.Failure
	if errors.As(err, &f) {
		code, msg := failureStatus(f.Code)
		resp := ErrorResponse{Error: msg, Code: code, Failure: string(f.Code)}
		details := map[string]any{"entry_point": f.EntryPoint}
		if f.Signature != "" {
			details["signature"] = f.Signature
		}
		if f.LastStatus != "" {
			details["last_status"] = f.LastStatus
		}
		if h.DevMode && f.Err != nil {
			details["err"] = f.Err.Error()
		}
		resp.Details = details
		return c.JSON(code, resp)
	}

	switch {
	case errors.Is(err, engine.ErrPoolUninitialized):
		return h.err(c, http.StatusConflict, "pool is not initialized", nil)
	case errors.Is(err, engine.ErrPoolAlreadyInitialized):
		return h.err(c, http.StatusConflict, "pool is already initialized", nil)
	case errors.Is(err, engine.ErrInvalidSwap):
		return h.err(c, http.StatusBadRequest, "swap is not executable", map[string]any{"err": err.Error()})
	}
	return h.err(c, http.StatusBadRequest, err.Error(), nil)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true, Cluster: h.Cluster})
}

// Pool returns the current reserve snapshot read from the chain
func (h *Handlers) Pool(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	snap, err := h.Engine.Snapshot(ctx)
	if err != nil {
		return h.attemptErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"reserve_a":   snap.ReserveA,
		"reserve_b":   snap.ReserveB,
		"total_swaps": snap.TotalSwaps,
		"initialized": !snap.Uninitialized(),
	})
}

// Quote prices a swap against the current reserves without executing it
func (h *Handlers) Quote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	dir, err := contract.ParseDirection(req.Direction)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid direction", map[string]any{"direction": "must be a_to_b or b_to_a"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	quote, err := h.Engine.Quote(ctx, dir, req.AmountIn, req.SlippagePercent)
	if err != nil {
		return h.attemptErr(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// Swap executes a swap through the full lifecycle and blocks until the
// transaction settles, times out, or fails. Gated by the swaps.enabled flag.
func (h *Handlers) Swap(c echo.Context) error {
	if !h.Flags.Enabled(c.Request().Context(), flags.KeySwapsEnabled, true) {
		return h.err(c, http.StatusServiceUnavailable, "swaps are disabled", nil)
	}

	var req SwapExecRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	dir, err := contract.ParseDirection(req.Direction)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid direction", map[string]any{"direction": "must be a_to_b or b_to_a"})
	}

	// The confirmation cycle alone can take PollInterval*MaxPolls; leave
	// room for build and submit on top.
	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	minOut := req.MinAmountOut
	if minOut <= 0 {
		quote, err := h.Engine.Quote(ctx, dir, req.AmountIn, req.SlippagePercent)
		if err != nil {
			return h.attemptErr(c, err)
		}
		minOut = quote.MinAmountOut
	}

	res, err := h.Engine.ExecuteSwap(ctx, engine.SwapRequest{
		Direction:    dir,
		AmountIn:     req.AmountIn,
		MinAmountOut: minOut,
	})
	if err != nil {
		return h.attemptErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Initialize seeds an empty pool with starting reserves. Gated by the
// init.enabled flag and disabled by default outside dev mode.
func (h *Handlers) Initialize(c echo.Context) error {
	if !h.Flags.Enabled(c.Request().Context(), flags.KeyInitEnabled, h.DevMode) {
		return h.err(c, http.StatusServiceUnavailable, "initialization is disabled", nil)
	}

	var req InitializeRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	res, err := h.Engine.InitializePool(ctx, req.ReserveA, req.ReserveB)
	if err != nil {
		return h.attemptErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// RecentSwaps returns the most recent swap events with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentSwaps(c echo.Context) error {
	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentSwaps(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get swaps", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsUpsert creates or updates a feature flag with the given key and value
// Validates key format and returns the created/updated flag
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing feature flag with the given key
// Validates key format and returns the updated flag
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) FlagsGet(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all feature flags in the system
func (h *Handlers) FlagsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
// Returns 204 No Content on successful deletion
func (h *Handlers) FlagsDelete(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
