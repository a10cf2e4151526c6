package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/amm"
	"github.com/omer-farooq/pairswap/internal/chain"
	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/lifecycle"
	"github.com/omer-farooq/pairswap/internal/models"
	"github.com/omer-farooq/pairswap/internal/pool"
	"github.com/omer-farooq/pairswap/internal/storage"
)

// ErrPoolUninitialized is returned when a swap is attempted against a pool
// that has never been seeded. Initialization is the only valid next action.
var ErrPoolUninitialized = errors.New("pool is not initialized")

// ErrPoolAlreadyInitialized is returned when initialization is attempted
// against a pool that already holds reserves. The contract is the final
// authority; this is a cheap client-side pre-check of the same rule.
var ErrPoolAlreadyInitialized = errors.New("pool is already initialized")

// ErrInvalidSwap is returned when the requested size cannot execute against
// the current reserves.
var ErrInvalidSwap = errors.New("swap is not executable against current reserves")

// Config assembles an Engine.
type Config struct {
	Chain   chain.Client
	Signer  lifecycle.Signer // nil => quotes only, execution fails at signing
	Builder *contract.Builder
	Guard   GuardConfig
	Logger  *logrus.Logger

	PollInterval time.Duration
	MaxPolls     int
	Clock        lifecycle.Clock

	// Optional best-effort sinks for executed swaps.
	Cache storage.SwapCache
	Store storage.SwapStore
}

// Engine orchestrates quoting and execution against one pool. Attempts
// against the shared signing credential are serialized with an explicit
// lock: two transactions racing on the same payer would contend on fees and
// blockhash validity, so only one runs at a time.
type Engine struct {
	chain   chain.Client
	signer  lifecycle.Signer
	builder *contract.Builder
	reader  *pool.Reader
	manager *lifecycle.Manager
	guard   *Guard
	cache   storage.SwapCache
	store   storage.SwapStore
	logger  *logrus.Logger

	mu sync.Mutex // one in-flight attempt per engine/signer
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Chain == nil {
		return nil, fmt.Errorf("engine: chain client is required")
	}
	if cfg.Builder == nil {
		return nil, fmt.Errorf("engine: contract builder is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	payer := cfg.Builder.PoolAccount
	if cfg.Signer != nil {
		payer = cfg.Signer.PublicKey()
	}

	mgr, err := lifecycle.NewManager(lifecycle.Config{
		Chain:        cfg.Chain,
		Signer:       cfg.Signer,
		Clock:        cfg.Clock,
		Logger:       cfg.Logger,
		PollInterval: cfg.PollInterval,
		MaxPolls:     cfg.MaxPolls,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		chain:   cfg.Chain,
		signer:  cfg.Signer,
		builder: cfg.Builder,
		reader:  pool.NewReader(cfg.Chain, cfg.Builder, payer, cfg.Logger),
		manager: mgr,
		guard:   NewGuard(cfg.Guard),
		cache:   cfg.Cache,
		store:   cfg.Store,
		logger:  cfg.Logger,
	}, nil
}

// Snapshot fetches the current reserve snapshot.
func (e *Engine) Snapshot(ctx context.Context) (pool.ReserveSnapshot, error) {
	return e.reader.FetchReserves(ctx)
}

// Quote computes a swap quote from one fresh snapshot. The quote is derived
// state: callers re-quote whenever the input or the pool changes.
func (e *Engine) Quote(ctx context.Context, dir contract.Direction, amountIn, slippagePercent float64) (*SwapQuote, error) {
	if amountIn <= 0 {
		return nil, fmt.Errorf("amount_in must be positive, got %v", amountIn)
	}
	if err := e.guard.CheckSlippage(slippagePercent); err != nil {
		return nil, err
	}

	snap, err := e.reader.FetchReserves(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Uninitialized() {
		return nil, ErrPoolUninitialized
	}

	reserveIn, reserveOut := snap.Reserves(dir == contract.AToB)
	if !amm.IsValidSwap(amountIn, float64(reserveIn), float64(reserveOut)) {
		return nil, fmt.Errorf("%w: amount_in=%v reserves=%d/%d",
			ErrInvalidSwap, amountIn, reserveIn, reserveOut)
	}

	amountOut := amm.OutputAmount(amountIn, float64(reserveIn), float64(reserveOut))
	impact := amm.PriceImpactPercent(amountIn, float64(reserveIn), float64(reserveOut))

	return &SwapQuote{
		Direction:          dir,
		AmountIn:           amountIn,
		AmountOut:          amountOut,
		MinAmountOut:       amm.MinOutputWithSlippage(amountOut, slippagePercent),
		PriceImpactPercent: impact,
		ImpactSeverity:     amm.ClassifyImpact(impact),
		ExchangeRate:       amm.ExchangeRate(float64(snap.ReserveA), float64(snap.ReserveB)),
		Snapshot:           snap,
		QuotedAt:           time.Now(),
	}, nil
}

// ExecuteSwap drives one swap request through the full lifecycle and
// returns the observed output, or a structured failure. After completion
// (either way the funds question is settled) the caller should display a
// fresh snapshot; the returned result carries one.
func (e *Engine) ExecuteSwap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	if req.AmountIn <= 0 {
		return nil, fmt.Errorf("amount_in must be positive, got %v", req.AmountIn)
	}
	if req.MinAmountOut < 0 {
		return nil, fmt.Errorf("min_amount_out must not be negative, got %v", req.MinAmountOut)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-check against the pool as it is now, not as it was when the caller
	// quoted.
	snap, err := e.reader.FetchReserves(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Uninitialized() {
		return nil, ErrPoolUninitialized
	}
	reserveIn, reserveOut := snap.Reserves(req.Direction == contract.AToB)
	if !amm.IsValidSwap(req.AmountIn, float64(reserveIn), float64(reserveOut)) {
		return nil, fmt.Errorf("%w: amount_in=%v reserves=%d/%d",
			ErrInvalidSwap, req.AmountIn, reserveIn, reserveOut)
	}
	impact := amm.PriceImpactPercent(req.AmountIn, float64(reserveIn), float64(reserveOut))
	if err := e.guard.CheckImpact(impact); err != nil {
		return nil, err
	}

	payer := e.payer()
	amountIn := contract.BaseUnits(req.AmountIn)
	ix, err := e.builder.BuildSwap(req.Direction, amountIn, payer)
	if err != nil {
		return nil, err
	}

	minOut := contract.BaseUnits(req.MinAmountOut)
	outcome, err := e.manager.Execute(ctx, &lifecycle.Operation{
		EntryPoint:   req.Direction.EntryPoint(),
		Instructions: []solana.Instruction{ix},
		Payer:        payer,
		MinAmountOut: minOut,
	})
	if err != nil {
		return nil, err
	}

	after, ferr := e.reader.FetchReserves(ctx)
	if ferr != nil {
		// The swap already settled; a failed refresh only degrades display.
		e.logger.WithError(ferr).Warn("post-swap snapshot refresh failed")
		after = snap
	}

	res := &SwapResult{
		Signature:        outcome.Signature,
		AmountOut:        bigToFloat(outcome.AmountOut),
		AmountOutDecoded: outcome.AmountOutDecoded,
		PollCount:        outcome.PollCount,
		Duration:         outcome.Duration,
		Snapshot:         after,
	}

	e.record(ctx, &models.SwapEvent{
		Signature:        res.Signature,
		Timestamp:        time.Now().UTC(),
		EntryPoint:       req.Direction.EntryPoint(),
		Direction:        req.Direction.String(),
		AmountIn:         req.AmountIn,
		AmountOut:        res.AmountOut,
		MinAmountOut:     req.MinAmountOut,
		PriceImpactPct:   impact,
		ExchangeRate:     amm.ExchangeRate(float64(after.ReserveA), float64(after.ReserveB)),
		AmountOutDecoded: res.AmountOutDecoded,
		PollCount:        res.PollCount,
		DurationMS:       res.Duration.Milliseconds(),
	})

	return res, nil
}

// InitializePool seeds the pool once with two positive reserve amounts. The
// engine pre-checks that the pool looks uninitialized, but the contract is
// the authority: a losing race surfaces as a simulation or on-chain failure.
func (e *Engine) InitializePool(ctx context.Context, reserveA, reserveB uint64) (*InitializeResult, error) {
	if reserveA == 0 || reserveB == 0 {
		return nil, fmt.Errorf("both reserve amounts must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.reader.FetchReserves(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Uninitialized() {
		return nil, ErrPoolAlreadyInitialized
	}

	payer := e.payer()
	ix, err := e.builder.BuildInitialize(
		new(big.Int).SetUint64(reserveA),
		new(big.Int).SetUint64(reserveB),
		payer,
	)
	if err != nil {
		return nil, err
	}

	outcome, err := e.manager.Execute(ctx, &lifecycle.Operation{
		EntryPoint:   contract.EntryInitializePool,
		Instructions: []solana.Instruction{ix},
		Payer:        payer,
	})
	if err != nil {
		return nil, err
	}

	after, ferr := e.reader.FetchReserves(ctx)
	if ferr != nil {
		e.logger.WithError(ferr).Warn("post-initialize snapshot refresh failed")
	}

	e.record(ctx, &models.SwapEvent{
		Signature:  outcome.Signature,
		Timestamp:  time.Now().UTC(),
		EntryPoint: contract.EntryInitializePool,
		AmountIn:   float64(reserveA),
		AmountOut:  float64(reserveB),
		PollCount:  outcome.PollCount,
		DurationMS: outcome.Duration.Milliseconds(),
	})

	return &InitializeResult{
		Signature: outcome.Signature,
		Duration:  outcome.Duration,
		Snapshot:  after,
	}, nil
}

// PayerAccount looks up the payer's account state, for pre-flight display.
func (e *Engine) PayerAccount(ctx context.Context) (*chain.AccountState, error) {
	return e.chain.GetAccount(ctx, e.payer())
}

func (e *Engine) payer() solana.PublicKey {
	if e.signer != nil {
		return e.signer.PublicKey()
	}
	return e.builder.PoolAccount
}

// record publishes an executed swap to the configured sinks, best-effort.
func (e *Engine) record(ctx context.Context, ev *models.SwapEvent) {
	if e.cache != nil {
		if err := e.cache.AddRecentSwap(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to cache swap event")
		}
		if err := e.cache.PublishSwap(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to publish swap event")
		}
	}
	if e.store != nil {
		if err := e.store.InsertSwap(ctx, ev); err != nil {
			e.logger.WithError(err).Warn("failed to store swap event")
		}
	}
}

func bigToFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
