package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountState is the subset of account data the swap flow needs.
type AccountState struct {
	Exists   bool
	Lamports uint64
	Owner    string
}

// BlockhashInfo bounds a transaction's validity window: the transaction
// expires once the chain passes LastValidBlockHeight, so a stale unsigned
// transaction cannot be resurrected later.
type BlockhashInfo struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// SimulationOutcome is the result of a dry-run execution against current
// chain state.
type SimulationOutcome struct {
	Ok            bool
	Err           string
	Logs          []string
	UnitsConsumed uint64
	// ReturnData holds the raw entry-point return value, when one was
	// produced. Empty for entry points that return nothing.
	ReturnData []byte
}

// TxState is the confirmation state of a submitted transaction.
type TxState string

const (
	TxNotFound TxState = "not_found"
	TxPending  TxState = "pending"
	TxSuccess  TxState = "success"
	TxFailed   TxState = "failed"
)

// TxStatus is one observation of a submitted transaction.
type TxStatus struct {
	State TxState
	Err   string
	Slot  uint64
	// ReturnData is populated on success when the entry point returned a
	// value; nil otherwise.
	ReturnData []byte
}

// Client is the chain-RPC collaborator. Everything above the wire depends on
// this interface so tests can stand in fakes for simulate/submit/poll
// without a live network.
type Client interface {
	// GetGenesisHash identifies the cluster the endpoint serves.
	GetGenesisHash(ctx context.Context) (string, error)

	// GetAccount looks up basic account state for a public key.
	GetAccount(ctx context.Context, pubkey solana.PublicKey) (*AccountState, error)

	// GetLatestBlockhash fetches the blockhash used to bound a
	// transaction's validity window.
	GetLatestBlockhash(ctx context.Context) (*BlockhashInfo, error)

	// Simulate dry-runs an unsigned transaction. A non-nil error means the
	// call itself failed; a contract-level failure comes back with Ok=false.
	Simulate(ctx context.Context, tx *solana.Transaction) (*SimulationOutcome, error)

	// Submit sends a signed transaction and returns its signature.
	Submit(ctx context.Context, tx *solana.Transaction) (string, error)

	// GetTransactionStatus reports the current confirmation state of a
	// submitted transaction.
	GetTransactionStatus(ctx context.Context, signature string) (*TxStatus, error)
}
