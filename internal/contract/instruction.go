package contract

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Entry point names of the deployed pool program. Wire identifiers and error
// context both use these; they must match the program byte-for-byte.
const (
	EntryInitializePool = "initialize_pool"
	EntrySwapAForB      = "swap_a_for_b"
	EntrySwapBForA      = "swap_b_for_a"
	EntryViewPool       = "view_pool"
)

// Instruction discriminators, one byte, matching the program's dispatch
// table.
const (
	ixInitializePool byte = 0
	ixSwapAForB      byte = 1
	ixSwapBForA      byte = 2
	ixViewPool       byte = 3
)

// Direction selects which side of the pair is being sold.
type Direction uint8

const (
	AToB Direction = iota
	BToA
)

func (d Direction) String() string {
	if d == AToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// ParseDirection maps a wire string ("a_to_b" or "b_to_a") to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "a_to_b":
		return AToB, nil
	case "b_to_a":
		return BToA, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// EntryPoint returns the contract entry point a swap direction maps to.
func (d Direction) EntryPoint() string {
	if d == AToB {
		return EntrySwapAForB
	}
	return EntrySwapBForA
}

// Builder constructs unsigned instructions against one deployed pool.
type Builder struct {
	ProgramID   solana.PublicKey
	PoolAccount solana.PublicKey
}

// NewBuilder creates a builder for the given program and pool state account.
func NewBuilder(programID, poolAccount solana.PublicKey) *Builder {
	return &Builder{ProgramID: programID, PoolAccount: poolAccount}
}

// BaseUnits floors a fractional base-unit amount to a whole integer. The
// ledger amount type is integral, so fractional user input is truncated
// here, never rounded; the shaved remainder is an accepted lossy step.
func BaseUnits(amount float64) *big.Int {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return big.NewInt(0)
	}
	f := new(big.Float).SetFloat64(math.Floor(amount))
	v, _ := f.Int(nil)
	return v
}

// BuildSwap constructs the unsigned swap instruction for the given direction
// and input amount (already floored to base units). The amount must be a
// positive i128.
func (b *Builder) BuildSwap(dir Direction, amountIn *big.Int, user solana.PublicKey) (solana.Instruction, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("%s: amount_in must be positive, got %v", dir.EntryPoint(), amountIn)
	}

	disc := ixSwapAForB
	if dir == BToA {
		disc = ixSwapBForA
	}

	data := []byte{disc}
	data, err := AppendI128(data, amountIn)
	if err != nil {
		return nil, fmt.Errorf("%s: encode amount_in: %w", dir.EntryPoint(), err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: b.PoolAccount, IsWritable: true, IsSigner: false},
		{PublicKey: user, IsWritable: true, IsSigner: true},
	}

	return solana.NewInstruction(b.ProgramID, accounts, data), nil
}

// BuildInitialize constructs the one-shot pool seeding instruction. Both
// reserve amounts must be positive; the program is the final authority and
// rejects a second initialization on-chain.
func (b *Builder) BuildInitialize(reserveA, reserveB *big.Int, user solana.PublicKey) (solana.Instruction, error) {
	if reserveA == nil || reserveA.Sign() <= 0 || reserveB == nil || reserveB.Sign() <= 0 {
		return nil, fmt.Errorf("%s: both reserve amounts must be positive", EntryInitializePool)
	}

	data := []byte{ixInitializePool}
	data, err := AppendI128(data, reserveA)
	if err != nil {
		return nil, fmt.Errorf("%s: encode reserve_a: %w", EntryInitializePool, err)
	}
	data, err = AppendI128(data, reserveB)
	if err != nil {
		return nil, fmt.Errorf("%s: encode reserve_b: %w", EntryInitializePool, err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: b.PoolAccount, IsWritable: true, IsSigner: false},
		{PublicKey: user, IsWritable: true, IsSigner: true},
	}

	return solana.NewInstruction(b.ProgramID, accounts, data), nil
}

// BuildViewPool constructs the read-only pool-query instruction. It takes no
// arguments and is only ever simulated, never submitted.
func (b *Builder) BuildViewPool() solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: b.PoolAccount, IsWritable: false, IsSigner: false},
	}
	return solana.NewInstruction(b.ProgramID, accounts, []byte{ixViewPool})
}

// ComputeBudgetProgramID is the native compute-budget program.
var ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// NewComputeUnitLimitInstruction builds a SetComputeUnitLimit instruction.
// Instruction data layout: [0]=2 discriminator, [1:5]=units (u32 LE).
func NewComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = 2
	binary.LittleEndian.PutUint32(data[1:5], units)
	return solana.NewInstruction(ComputeBudgetProgramID, []*solana.AccountMeta{}, data)
}
