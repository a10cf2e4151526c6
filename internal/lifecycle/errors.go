package lifecycle

import (
	"errors"
	"fmt"
)

// FailureCode classifies why an attempt (or a read) ended. All codes are
// terminal for the attempt that raised them; retrying means the caller
// starts a fresh attempt.
type FailureCode string

const (
	// QueryFailed is a read-side simulation or lookup error.
	QueryFailed FailureCode = "query_failed"
	// SimulationFailed means the dry run reported the transaction would not
	// succeed (insufficient liquidity, contract assertion, ...).
	SimulationFailed FailureCode = "simulation_failed"
	// SigningFailed means no usable signing credential was available.
	SigningFailed FailureCode = "signing_failed"
	// SubmissionRejected is an immediate error status from the network on
	// send. The transaction never entered the ledger.
	SubmissionRejected FailureCode = "submission_rejected"
	// OnChainExecutionFailed means the transaction landed and failed.
	OnChainExecutionFailed FailureCode = "onchain_execution_failed"
	// ConfirmationTimeout means polling exhausted its attempt ceiling while
	// the transaction was still unobserved. The outcome is UNKNOWN: the
	// transaction may confirm later, so callers must re-query rather than
	// assume the funds did not move.
	ConfirmationTimeout FailureCode = "confirmation_timeout"
	// SlippageExceeded means the transaction SUCCEEDED on-chain but the
	// decoded output came in below the requested minimum. Funds have moved;
	// this is a client-side acceptance check, not a transaction failure.
	SlippageExceeded FailureCode = "slippage_exceeded"
	// DecodeFailed marks a malformed or unexpectedly shaped return value.
	DecodeFailed FailureCode = "decode_failed"
)

// Failure carries enough context for the caller to decide whether to
// re-query or start a new attempt.
type Failure struct {
	Code       FailureCode
	EntryPoint string
	Signature  string // set once submission assigned one
	LastStatus string // last observed chain status, when polling was involved
	Err        error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Code, f.EntryPoint)
	if f.Signature != "" {
		msg += " sig=" + f.Signature
	}
	if f.LastStatus != "" {
		msg += " last_status=" + f.LastStatus
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure builds a Failure for an entry point.
func NewFailure(code FailureCode, entryPoint string, err error) *Failure {
	return &Failure{Code: code, EntryPoint: entryPoint, Err: err}
}

// CodeOf extracts the failure code from err, or "" if err is not a Failure.
func CodeOf(err error) FailureCode {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}

// IsCode reports whether err is a Failure with the given code.
func IsCode(err error, code FailureCode) bool {
	return CodeOf(err) == code
}
