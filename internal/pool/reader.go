package pool

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/chain"
	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/lifecycle"
)

// Reader fetches reserve snapshots by simulating the read-only pool-query
// entry point. No transaction is ever submitted; the read has no side
// effects and is safe to run arbitrarily often and concurrently.
type Reader struct {
	chain   chain.Client
	builder *contract.Builder
	payer   solana.PublicKey
	logger  *logrus.Logger
}

// NewReader creates a reader. The payer key only shapes the simulated
// message; it never signs anything.
func NewReader(c chain.Client, b *contract.Builder, payer solana.PublicKey, logger *logrus.Logger) *Reader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Reader{chain: c, builder: b, payer: payer, logger: logger}
}

// FetchReserves returns the current reserve snapshot. A zero-valued snapshot
// is a valid uninitialized pool; only a failing simulation or a malformed
// return value is an error.
func (r *Reader) FetchReserves(ctx context.Context) (ReserveSnapshot, error) {
	ix := r.builder.BuildViewPool()

	// The simulation replaces the blockhash server-side, so a zero hash is
	// fine for a read probe.
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{},
		solana.TransactionPayer(r.payer),
	)
	if err != nil {
		return ReserveSnapshot{}, lifecycle.NewFailure(lifecycle.QueryFailed, contract.EntryViewPool,
			fmt.Errorf("build pool query: %w", err))
	}

	sim, err := r.chain.Simulate(ctx, tx)
	if err != nil {
		return ReserveSnapshot{}, lifecycle.NewFailure(lifecycle.QueryFailed, contract.EntryViewPool, err)
	}
	if !sim.Ok {
		return ReserveSnapshot{}, lifecycle.NewFailure(lifecycle.QueryFailed, contract.EntryViewPool,
			fmt.Errorf("pool query simulation failed: %s", sim.Err))
	}

	if len(sim.ReturnData) == 0 {
		// A pool that has never been seeded returns nothing.
		return ReserveSnapshot{}, nil
	}

	state, err := contract.DecodePoolState(sim.ReturnData)
	if err != nil {
		return ReserveSnapshot{}, lifecycle.NewFailure(lifecycle.DecodeFailed, contract.EntryViewPool, err)
	}

	reserveA, reserveB, totalSwaps, err := contract.PoolStateValues(state)
	if err != nil {
		return ReserveSnapshot{}, lifecycle.NewFailure(lifecycle.DecodeFailed, contract.EntryViewPool, err)
	}

	snap := ReserveSnapshot{ReserveA: reserveA, ReserveB: reserveB, TotalSwaps: totalSwaps}
	r.logger.WithFields(logrus.Fields{
		"reserve_a":   snap.ReserveA,
		"reserve_b":   snap.ReserveB,
		"total_swaps": snap.TotalSwaps,
	}).Debug("fetched pool reserves")
	return snap, nil
}
