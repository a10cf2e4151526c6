package engine

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omer-farooq/pairswap/internal/amm"
	"github.com/omer-farooq/pairswap/internal/chain"
	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/lifecycle"
	"github.com/omer-farooq/pairswap/internal/models"
)

// fakeChain answers pool probes from a scripted reserve state and drives
// every submitted swap to confirmed success. The view entry point is
// recognized by its discriminator so the same fake serves both the reader
// and the lifecycle manager.
type fakeChain struct {
	reserveA, reserveB, totalSwaps int64

	swapReturn []byte // return data served on swap confirmation
	submits    int
}

func (f *fakeChain) GetGenesisHash(ctx context.Context) (string, error) { return "", nil }

func (f *fakeChain) GetAccount(ctx context.Context, pubkey solana.PublicKey) (*chain.AccountState, error) {
	return &chain.AccountState{Exists: true, Lamports: 1_000_000}, nil
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context) (*chain.BlockhashInfo, error) {
	return &chain.BlockhashInfo{Blockhash: solana.Hash{1}, LastValidBlockHeight: 1000}, nil
}

func (f *fakeChain) Simulate(ctx context.Context, tx *solana.Transaction) (*chain.SimulationOutcome, error) {
	if len(tx.Message.Instructions) == 0 {
		return nil, fmt.Errorf("empty transaction")
	}
	data := tx.Message.Instructions[0].Data
	if len(data) > 0 && data[0] == 3 { // view_pool probe
		var state []byte
		for _, v := range []int64{f.reserveA, f.reserveB, f.totalSwaps} {
			enc, err := contract.AppendI128(state, big.NewInt(v))
			if err != nil {
				return nil, err
			}
			state = enc
		}
		return &chain.SimulationOutcome{Ok: true, ReturnData: state}, nil
	}
	return &chain.SimulationOutcome{Ok: true, UnitsConsumed: 40_000}, nil
}

func (f *fakeChain) Submit(ctx context.Context, tx *solana.Transaction) (string, error) {
	f.submits++
	return fmt.Sprintf("sig-%d", f.submits), nil
}

func (f *fakeChain) GetTransactionStatus(ctx context.Context, signature string) (*chain.TxStatus, error) {
	return &chain.TxStatus{State: chain.TxSuccess, ReturnData: f.swapReturn}, nil
}

// instantClock keeps engine tests free of real polling delay.
type instantClock struct{ now time.Time }

func (c *instantClock) Now() time.Time { return c.now }

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

type testSigner struct{ priv solana.PrivateKey }

func newTestSigner(t *testing.T) *testSigner {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return &testSigner{priv: priv}
}

func (s *testSigner) PublicKey() solana.PublicKey { return s.priv.PublicKey() }

func (s *testSigner) Sign(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.priv.PublicKey()) {
			return &s.priv
		}
		return nil
	})
	return err
}

// recordingCache captures events without Redis.
type recordingCache struct {
	events []*models.SwapEvent
}

func (c *recordingCache) AddRecentSwap(ctx context.Context, swap *models.SwapEvent) error {
	c.events = append(c.events, swap)
	return nil
}

func (c *recordingCache) GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapEvent, error) {
	return c.events, nil
}

func (c *recordingCache) PublishSwap(ctx context.Context, swap *models.SwapEvent) error { return nil }

func (c *recordingCache) SubscribeSwaps(ctx context.Context) (<-chan *models.SwapEvent, error) {
	return nil, nil
}

func (c *recordingCache) Ping(ctx context.Context) error { return nil }
func (c *recordingCache) Close() error                   { return nil }

func newTestEngine(t *testing.T, fc *fakeChain, signer lifecycle.Signer, cache *recordingCache) *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := Config{
		Chain:        fc,
		Signer:       signer,
		Builder:      contract.NewBuilder(solana.PublicKey{2}, solana.PublicKey{3}),
		Logger:       logger,
		PollInterval: time.Millisecond,
		MaxPolls:     3,
		Clock:        &instantClock{now: time.Unix(1_700_000_000, 0)},
	}
	if cache != nil {
		cfg.Cache = cache
	}
	eng, err := New(cfg)
	require.NoError(t, err)
	return eng
}

func swapReturnData(t *testing.T, v int64) []byte {
	data, err := contract.AppendI128(nil, big.NewInt(v))
	require.NoError(t, err)
	return data
}

func TestQuote(t *testing.T) {
	fc := &fakeChain{reserveA: 1000, reserveB: 2000, totalSwaps: 5}
	eng := newTestEngine(t, fc, nil, nil)

	q, err := eng.Quote(context.Background(), contract.AToB, 100, 1)
	require.NoError(t, err)

	// 100 * 2000 / 1100
	assert.InDelta(t, 181.8181, q.AmountOut, 0.001)
	assert.InDelta(t, q.AmountOut*0.99, q.MinAmountOut, 0.001)
	assert.Equal(t, 2.0, q.ExchangeRate)
	assert.Greater(t, q.PriceImpactPercent, 0.0)
	assert.Equal(t, uint64(1000), q.Snapshot.ReserveA)
	assert.False(t, q.QuotedAt.IsZero())
}

func TestQuote_ReverseDirection(t *testing.T) {
	fc := &fakeChain{reserveA: 1000, reserveB: 2000}
	eng := newTestEngine(t, fc, nil, nil)

	q, err := eng.Quote(context.Background(), contract.BToA, 100, 0)
	require.NoError(t, err)

	// 100 * 1000 / 2100
	assert.InDelta(t, 47.619, q.AmountOut, 0.001)
	assert.Equal(t, q.AmountOut, q.MinAmountOut) // zero tolerance
}

func TestQuote_UninitializedPool(t *testing.T) {
	fc := &fakeChain{}
	eng := newTestEngine(t, fc, nil, nil)

	_, err := eng.Quote(context.Background(), contract.AToB, 100, 1)
	assert.ErrorIs(t, err, ErrPoolUninitialized)
}

func TestQuote_InvalidInputs(t *testing.T) {
	fc := &fakeChain{reserveA: 1000, reserveB: 2000}
	eng := newTestEngine(t, fc, nil, nil)

	_, err := eng.Quote(context.Background(), contract.AToB, 0, 1)
	assert.Error(t, err)

	_, err = eng.Quote(context.Background(), contract.AToB, -5, 1)
	assert.Error(t, err)

	// Tolerance above the guard ceiling.
	_, err = eng.Quote(context.Background(), contract.AToB, 100, 50)
	assert.Error(t, err)
}

func TestQuote_ImpactSeverity(t *testing.T) {
	fc := &fakeChain{reserveA: 1000, reserveB: 2000}
	eng := newTestEngine(t, fc, nil, nil)

	small, err := eng.Quote(context.Background(), contract.AToB, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, amm.SeverityNone, small.ImpactSeverity)

	large, err := eng.Quote(context.Background(), contract.AToB, 100, 0)
	require.NoError(t, err)
	assert.NotEqual(t, amm.SeverityNone, large.ImpactSeverity)
}

func TestExecuteSwap(t *testing.T) {
	signer := newTestSigner(t)
	cache := &recordingCache{}
	fc := &fakeChain{reserveA: 1000, reserveB: 2000, swapReturn: swapReturnData(t, 19)}
	eng := newTestEngine(t, fc, signer, cache)

	// 10 in against 1000/2000 quotes ~19.8 out at ~2% impact, well inside
	// the default guard.
	res, err := eng.ExecuteSwap(context.Background(), SwapRequest{
		Direction:    contract.AToB,
		AmountIn:     10,
		MinAmountOut: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "sig-1", res.Signature)
	assert.Equal(t, 19.0, res.AmountOut)
	assert.True(t, res.AmountOutDecoded)
	assert.Equal(t, 1, fc.submits)

	require.Len(t, cache.events, 1)
	ev := cache.events[0]
	assert.Equal(t, "sig-1", ev.Signature)
	assert.Equal(t, contract.EntrySwapAForB, ev.EntryPoint)
	assert.Equal(t, 10.0, ev.AmountIn)
}

func TestExecuteSwap_SlippageExceeded(t *testing.T) {
	signer := newTestSigner(t)
	fc := &fakeChain{reserveA: 1000, reserveB: 2000, swapReturn: swapReturnData(t, 18)}
	eng := newTestEngine(t, fc, signer, nil)

	_, err := eng.ExecuteSwap(context.Background(), SwapRequest{
		Direction:    contract.AToB,
		AmountIn:     10,
		MinAmountOut: 19,
	})
	require.True(t, lifecycle.IsCode(err, lifecycle.SlippageExceeded))
	// The transaction went out; only the acceptance check failed.
	assert.Equal(t, 1, fc.submits)
}

func TestExecuteSwap_UninitializedPool(t *testing.T) {
	signer := newTestSigner(t)
	fc := &fakeChain{}
	eng := newTestEngine(t, fc, signer, nil)

	_, err := eng.ExecuteSwap(context.Background(), SwapRequest{
		Direction: contract.AToB,
		AmountIn:  100,
	})
	assert.ErrorIs(t, err, ErrPoolUninitialized)
	assert.Equal(t, 0, fc.submits)
}

func TestExecuteSwap_ImpactGuard(t *testing.T) {
	signer := newTestSigner(t)
	fc := &fakeChain{reserveA: 1000, reserveB: 2000}
	eng := newTestEngine(t, fc, signer, nil)

	// An order the size of the pool moves the price far past any ceiling.
	_, err := eng.ExecuteSwap(context.Background(), SwapRequest{
		Direction:    contract.AToB,
		AmountIn:     900,
		MinAmountOut: 1,
	})
	require.Error(t, err)
	assert.Equal(t, 0, fc.submits)
}

func TestExecuteSwap_NoSigner(t *testing.T) {
	fc := &fakeChain{reserveA: 1000, reserveB: 2000}
	eng := newTestEngine(t, fc, nil, nil)

	_, err := eng.ExecuteSwap(context.Background(), SwapRequest{
		Direction:    contract.AToB,
		AmountIn:     10,
		MinAmountOut: 1,
	})
	assert.True(t, lifecycle.IsCode(err, lifecycle.SigningFailed))
}

func TestInitializePool(t *testing.T) {
	signer := newTestSigner(t)
	fc := &fakeChain{}
	eng := newTestEngine(t, fc, signer, nil)

	// The fake keeps serving zero reserves after the call; only the
	// submission itself is asserted here.
	res, err := eng.InitializePool(context.Background(), 1000, 2000)
	require.NoError(t, err)
	assert.Equal(t, "sig-1", res.Signature)
	assert.Equal(t, 1, fc.submits)
}

func TestInitializePool_AlreadyInitialized(t *testing.T) {
	signer := newTestSigner(t)
	fc := &fakeChain{reserveA: 1000, reserveB: 2000}
	eng := newTestEngine(t, fc, signer, nil)

	_, err := eng.InitializePool(context.Background(), 500, 500)
	assert.ErrorIs(t, err, ErrPoolAlreadyInitialized)
	assert.Equal(t, 0, fc.submits)
}

func TestInitializePool_ZeroReserves(t *testing.T) {
	signer := newTestSigner(t)
	eng := newTestEngine(t, &fakeChain{}, signer, nil)

	_, err := eng.InitializePool(context.Background(), 0, 2000)
	assert.Error(t, err)

	_, err = eng.InitializePool(context.Background(), 1000, 0)
	assert.Error(t, err)
}

func TestGuard(t *testing.T) {
	g := NewGuard(GuardConfig{MaxSlippagePercent: 5, MaxPriceImpactPercent: 8})

	assert.NoError(t, g.CheckSlippage(0))
	assert.NoError(t, g.CheckSlippage(5))
	assert.Error(t, g.CheckSlippage(5.1))
	assert.Error(t, g.CheckSlippage(-1))

	assert.NoError(t, g.CheckImpact(8))
	assert.Error(t, g.CheckImpact(8.5))
}
