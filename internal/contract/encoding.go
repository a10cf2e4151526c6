package contract

import (
	"errors"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
)

// ErrDecodeFailed marks a malformed or unexpectedly shaped contract return
// value. Callers match it with errors.Is.
var ErrDecodeFailed = errors.New("decode failed")

// i128Bytes is the wire size of the program's integer argument and return
// type: 16-byte little-endian two's complement.
const i128Bytes = 16

var (
	i128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	i128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// AppendI128 appends v encoded as a little-endian i128 to dst.
// Values outside the i128 range are rejected.
func AppendI128(dst []byte, v *big.Int) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("i128 value is nil")
	}
	if v.Cmp(i128Min) < 0 || v.Cmp(i128Max) > 0 {
		return nil, fmt.Errorf("value %s out of i128 range", v)
	}

	tc := new(big.Int).Set(v)
	if tc.Sign() < 0 {
		// two's complement: v + 2^128
		tc.Add(tc, new(big.Int).Lsh(big.NewInt(1), 128))
	}

	buf := make([]byte, i128Bytes)
	raw := tc.Bytes() // big-endian, minimal
	for i, b := range raw {
		buf[len(raw)-1-i] = b
	}
	return append(dst, buf...), nil
}

// DecodeI128 decodes a little-endian i128 from data. The slice must be
// exactly 16 bytes; anything else is a shape mismatch and reported as
// ErrDecodeFailed.
func DecodeI128(data []byte) (*big.Int, error) {
	if len(data) != i128Bytes {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrDecodeFailed, i128Bytes, len(data))
	}

	be := make([]byte, i128Bytes)
	for i, b := range data {
		be[i128Bytes-1-i] = b
	}

	v := new(big.Int).SetBytes(be)
	if data[i128Bytes-1]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return v, nil
}

// PoolStateLayout mirrors the pool-query return value: three i128 fields in
// declaration order.
type PoolStateLayout struct {
	ReserveA   bin.Int128
	ReserveB   bin.Int128
	TotalSwaps bin.Int128
}

// DecodePoolState decodes the Borsh-encoded view_pool return value.
func DecodePoolState(data []byte) (*PoolStateLayout, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty pool-query return value", ErrDecodeFailed)
	}

	var state PoolStateLayout
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: pool state: %s", ErrDecodeFailed, err)
	}
	return &state, nil
}

// fieldUint64 converts a decoded i128 field to uint64, rejecting negatives
// and overflow. Reserves and the swap counter always fit u64 on a healthy
// pool; anything else means we decoded garbage.
func fieldUint64(name string, v bin.Int128) (uint64, error) {
	b := v.BigInt()
	if b.Sign() < 0 || !b.IsUint64() {
		return 0, fmt.Errorf("%w: %s %s does not fit uint64", ErrDecodeFailed, name, b)
	}
	return b.Uint64(), nil
}

// PoolStateValues extracts the three counters from a decoded layout.
func PoolStateValues(s *PoolStateLayout) (reserveA, reserveB, totalSwaps uint64, err error) {
	if reserveA, err = fieldUint64("reserve_a", s.ReserveA); err != nil {
		return 0, 0, 0, err
	}
	if reserveB, err = fieldUint64("reserve_b", s.ReserveB); err != nil {
		return 0, 0, 0, err
	}
	if totalSwaps, err = fieldUint64("total_swaps", s.TotalSwaps); err != nil {
		return 0, 0, 0, err
	}
	return reserveA, reserveB, totalSwaps, nil
}
