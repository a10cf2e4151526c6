package lifecycle

import (
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/omer-farooq/pairswap/internal/chain"
)

// Status is the state of one transaction attempt.
type Status string

const (
	StatusBuilt     Status = "built"
	StatusSimulated Status = "simulated"
	StatusAssembled Status = "assembled"
	StatusSigned    Status = "signed"
	StatusSubmitted Status = "submitted"
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// Operation describes one contract invocation to drive through the
// lifecycle.
type Operation struct {
	// EntryPoint names the contract entry point, for logs and failures.
	EntryPoint string
	// Instructions to execute, in order, excluding compute-budget metadata
	// (the manager merges that in after simulation).
	Instructions []solana.Instruction
	Payer        solana.PublicKey

	// MinAmountOut, when non-nil, enables output decoding and the slippage
	// floor on the decoded result. Nil for entry points without a return
	// value (pool initialization).
	MinAmountOut *big.Int
}

// Attempt is the mutable state of one submission, owned exclusively by the
// manager for the duration of the call and discarded afterwards. It is never
// shared across concurrent attempts.
type attempt struct {
	op        *Operation
	status    Status
	tx        *solana.Transaction
	sim       *chain.SimulationOutcome
	blockhash *chain.BlockhashInfo
	signature string
	pollCount int
	started   time.Time
}

// Outcome is the successful result of an attempt.
type Outcome struct {
	Signature string
	// AmountOut is the decoded entry-point return value, or the request's
	// minimum when the chain produced no decodable value (degraded path).
	// Nil for operations without a return value.
	AmountOut *big.Int
	// AmountOutDecoded is false on the degraded fallback path.
	AmountOutDecoded bool
	PollCount        int
	Duration         time.Duration
}
