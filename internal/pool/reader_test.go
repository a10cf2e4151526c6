package pool

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omer-farooq/pairswap/internal/chain"
	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/lifecycle"
)

type fakeChain struct {
	simOutcome *chain.SimulationOutcome
	simErr     error
	simulated  int
}

func (f *fakeChain) GetGenesisHash(ctx context.Context) (string, error) { return "", nil }

func (f *fakeChain) GetAccount(ctx context.Context, pubkey solana.PublicKey) (*chain.AccountState, error) {
	return nil, nil
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context) (*chain.BlockhashInfo, error) {
	return nil, nil
}

func (f *fakeChain) Simulate(ctx context.Context, tx *solana.Transaction) (*chain.SimulationOutcome, error) {
	f.simulated++
	if f.simErr != nil {
		return nil, f.simErr
	}
	return f.simOutcome, nil
}

func (f *fakeChain) Submit(ctx context.Context, tx *solana.Transaction) (string, error) {
	return "", fmt.Errorf("reader must never submit")
}

func (f *fakeChain) GetTransactionStatus(ctx context.Context, signature string) (*chain.TxStatus, error) {
	return nil, fmt.Errorf("reader must never poll")
}

func poolStateBytes(t *testing.T, reserveA, reserveB, totalSwaps int64) []byte {
	var data []byte
	var err error
	for _, v := range []int64{reserveA, reserveB, totalSwaps} {
		data, err = contract.AppendI128(data, big.NewInt(v))
		require.NoError(t, err)
	}
	return data
}

func newTestReader(fc *fakeChain) *Reader {
	builder := contract.NewBuilder(solana.PublicKey{2}, solana.PublicKey{3})
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewReader(fc, builder, solana.PublicKey{4}, logger)
}

func TestFetchReserves(t *testing.T) {
	fc := &fakeChain{
		simOutcome: &chain.SimulationOutcome{
			Ok:         true,
			ReturnData: poolStateBytes(t, 1000, 2000, 7),
		},
	}
	r := newTestReader(fc)

	snap, err := r.FetchReserves(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), snap.ReserveA)
	assert.Equal(t, uint64(2000), snap.ReserveB)
	assert.Equal(t, uint64(7), snap.TotalSwaps)
	assert.False(t, snap.Uninitialized())
	assert.Equal(t, 1, fc.simulated)
}

func TestFetchReserves_ZeroStateIsValid(t *testing.T) {
	fc := &fakeChain{
		simOutcome: &chain.SimulationOutcome{
			Ok:         true,
			ReturnData: poolStateBytes(t, 0, 0, 0),
		},
	}
	r := newTestReader(fc)

	snap, err := r.FetchReserves(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Uninitialized())
}

func TestFetchReserves_EmptyReturnDataIsUninitialized(t *testing.T) {
	fc := &fakeChain{simOutcome: &chain.SimulationOutcome{Ok: true}}
	r := newTestReader(fc)

	snap, err := r.FetchReserves(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Uninitialized())
}

func TestFetchReserves_SimulationError(t *testing.T) {
	fc := &fakeChain{simErr: fmt.Errorf("rpc down")}
	r := newTestReader(fc)

	_, err := r.FetchReserves(context.Background())
	assert.True(t, lifecycle.IsCode(err, lifecycle.QueryFailed))
}

func TestFetchReserves_SimulationReportsFailure(t *testing.T) {
	fc := &fakeChain{simOutcome: &chain.SimulationOutcome{Ok: false, Err: "program error"}}
	r := newTestReader(fc)

	_, err := r.FetchReserves(context.Background())
	assert.True(t, lifecycle.IsCode(err, lifecycle.QueryFailed))
}

func TestFetchReserves_MalformedState(t *testing.T) {
	fc := &fakeChain{
		simOutcome: &chain.SimulationOutcome{Ok: true, ReturnData: []byte{1, 2, 3}},
	}
	r := newTestReader(fc)

	_, err := r.FetchReserves(context.Background())
	assert.True(t, lifecycle.IsCode(err, lifecycle.DecodeFailed))
}

func TestReserves_Direction(t *testing.T) {
	snap := ReserveSnapshot{ReserveA: 10, ReserveB: 20}

	in, out := snap.Reserves(true)
	assert.Equal(t, uint64(10), in)
	assert.Equal(t, uint64(20), out)

	in, out = snap.Reserves(false)
	assert.Equal(t, uint64(20), in)
	assert.Equal(t, uint64(10), out)
}
