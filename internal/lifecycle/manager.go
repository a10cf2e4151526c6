package lifecycle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/chain"
	"github.com/omer-farooq/pairswap/internal/constants"
	"github.com/omer-farooq/pairswap/internal/contract"
)

// Signer applies a signing credential to an assembled transaction.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(tx *solana.Transaction) error
}

// Manager drives a built operation through
//
//	built -> simulated -> assembled -> signed -> submitted -> pending
//	      -> {success | failed | timed_out}
//
// One attempt per Execute call, strictly sequential: each transition waits
// for the prior network response before issuing the next. Nothing is retried
// automatically; every failure is terminal for the attempt, and the caller
// decides whether re-querying or a fresh attempt is appropriate.
type Manager struct {
	chain        chain.Client
	signer       Signer
	clock        Clock
	logger       *logrus.Logger
	pollInterval time.Duration
	maxPolls     int
}

// Config tunes a Manager. Zero values take the package defaults.
type Config struct {
	Chain        chain.Client
	Signer       Signer // nil is allowed; signing then fails
	Clock        Clock
	Logger       *logrus.Logger
	PollInterval time.Duration
	MaxPolls     int
}

// NewManager creates a lifecycle manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Chain == nil {
		return nil, fmt.Errorf("lifecycle: chain client is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = constants.PollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = constants.MaxPollAttempts
	}

	return &Manager{
		chain:        cfg.Chain,
		signer:       cfg.Signer,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
	}, nil
}

// Execute runs one operation to a terminal state. On success it returns the
// outcome; on any failure it returns a *Failure whose code tells the caller
// what is known about the on-chain state.
func (m *Manager) Execute(ctx context.Context, op *Operation) (*Outcome, error) {
	if op == nil || len(op.Instructions) == 0 {
		return nil, NewFailure(SimulationFailed, "", fmt.Errorf("empty operation"))
	}

	a := &attempt{op: op, started: m.clock.Now()}
	log := m.logger.WithFields(logrus.Fields{
		"entry_point": op.EntryPoint,
		"payer":       op.Payer.String(),
	})

	if err := m.build(ctx, a); err != nil {
		return nil, err
	}
	log.WithField("status", a.status).Debug("operation built")

	if err := m.simulate(ctx, a); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"status":         a.status,
		"units_consumed": a.sim.UnitsConsumed,
	}).Debug("simulation succeeded")

	if err := m.assemble(a); err != nil {
		return nil, err
	}

	if err := m.sign(a); err != nil {
		return nil, err
	}

	if err := m.submit(ctx, a); err != nil {
		return nil, err
	}
	log.WithField("signature", a.signature).Info("transaction submitted")

	out, err := m.poll(ctx, a)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"signature":  out.Signature,
		"poll_count": out.PollCount,
		"duration":   out.Duration,
	}).Info("transaction confirmed")
	return out, nil
}

// build fetches the validity window and assembles the unsigned transaction.
// The blockhash bounds the window: the transaction expires if not finalized
// before LastValidBlockHeight, so a stale build cannot be resurrected.
func (m *Manager) build(ctx context.Context, a *attempt) error {
	bh, err := m.chain.GetLatestBlockhash(ctx)
	if err != nil {
		return m.fail(a, QueryFailed, fmt.Errorf("fetch validity window: %w", err))
	}
	a.blockhash = bh

	tx, err := solana.NewTransaction(
		a.op.Instructions,
		bh.Blockhash,
		solana.TransactionPayer(a.op.Payer),
	)
	if err != nil {
		return m.fail(a, SimulationFailed, fmt.Errorf("build transaction: %w", err))
	}

	a.tx = tx
	a.status = StatusBuilt
	return nil
}

func (m *Manager) simulate(ctx context.Context, a *attempt) error {
	sim, err := m.chain.Simulate(ctx, a.tx)
	if err != nil {
		return m.fail(a, SimulationFailed, err)
	}
	if !sim.Ok {
		return m.fail(a, SimulationFailed, fmt.Errorf("simulation reported failure: %s", sim.Err))
	}

	a.sim = sim
	a.status = StatusSimulated
	return nil
}

// assemble merges simulation-derived resource metadata into the operation:
// a compute-unit limit with headroom is prepended and the transaction is
// rebuilt against the same validity window. Deterministic; cannot fail once
// simulation succeeded.
func (m *Manager) assemble(a *attempt) error {
	units := uint64(constants.DefaultComputeUnits)
	if a.sim.UnitsConsumed > 0 {
		units = uint64(float64(a.sim.UnitsConsumed) * constants.ComputeUnitHeadroom)
	}
	if units > constants.MaxComputeUnitsLimit {
		units = constants.MaxComputeUnitsLimit
	}

	ixs := make([]solana.Instruction, 0, len(a.op.Instructions)+1)
	ixs = append(ixs, contract.NewComputeUnitLimitInstruction(uint32(units)))
	ixs = append(ixs, a.op.Instructions...)

	tx, err := solana.NewTransaction(
		ixs,
		a.blockhash.Blockhash,
		solana.TransactionPayer(a.op.Payer),
	)
	if err != nil {
		// Unreachable in practice: the same instruction set built once
		// already.
		return m.fail(a, SimulationFailed, fmt.Errorf("assemble transaction: %w", err))
	}

	a.tx = tx
	a.status = StatusAssembled
	return nil
}

func (m *Manager) sign(a *attempt) error {
	if m.signer == nil {
		return m.fail(a, SigningFailed, fmt.Errorf("no signing credential configured"))
	}
	if err := m.signer.Sign(a.tx); err != nil {
		return m.fail(a, SigningFailed, err)
	}
	a.status = StatusSigned
	return nil
}

func (m *Manager) submit(ctx context.Context, a *attempt) error {
	sig, err := m.chain.Submit(ctx, a.tx)
	if err != nil {
		return m.fail(a, SubmissionRejected, err)
	}
	a.signature = sig
	a.status = StatusSubmitted
	return nil
}

// poll checks transaction status at a fixed interval until a terminal status
// is observed or the attempt ceiling is exhausted. Exhaustion is reported as
// ConfirmationTimeout: the outcome is unknown and the transaction may still
// confirm later.
func (m *Manager) poll(ctx context.Context, a *attempt) (*Outcome, error) {
	a.status = StatusPending
	lastState := chain.TxNotFound

	for a.pollCount < m.maxPolls {
		a.pollCount++

		st, err := m.chain.GetTransactionStatus(ctx, a.signature)
		if err != nil {
			// A flaky status lookup does not decide the attempt; the
			// transaction may be confirming regardless.
			m.logger.WithError(err).WithFields(logrus.Fields{
				"signature": a.signature,
				"poll":      a.pollCount,
			}).Warn("status poll failed")
		} else {
			lastState = st.State
			switch st.State {
			case chain.TxSuccess:
				return m.finish(a, st)
			case chain.TxFailed:
				a.status = StatusFailed
				return nil, m.failWithStatus(a, OnChainExecutionFailed,
					fmt.Errorf("transaction failed on-chain: %s", st.Err), string(st.State))
			}
		}

		if a.pollCount >= m.maxPolls {
			break
		}
		if err := m.clock.Sleep(ctx, m.pollInterval); err != nil {
			return nil, m.failWithStatus(a, ConfirmationTimeout, err, string(lastState))
		}
	}

	a.status = StatusTimedOut
	return nil, m.failWithStatus(a, ConfirmationTimeout,
		fmt.Errorf("no terminal status after %d polls", a.pollCount), string(lastState))
}

// finish decodes the entry point's return value and enforces the slippage
// floor.
func (m *Manager) finish(a *attempt, st *chain.TxStatus) (*Outcome, error) {
	a.status = StatusSuccess
	out := &Outcome{
		Signature: a.signature,
		PollCount: a.pollCount,
		Duration:  m.clock.Now().Sub(a.started),
	}

	if a.op.MinAmountOut == nil {
		return out, nil
	}

	if len(st.ReturnData) == 0 {
		// Degraded path, not an error: the chain produced no decodable
		// value, so treat the requested minimum as the observed result.
		m.logger.WithField("signature", a.signature).
			Warn("no return value on confirmed swap, falling back to requested minimum")
		out.AmountOut = new(big.Int).Set(a.op.MinAmountOut)
		out.AmountOutDecoded = false
		return out, nil
	}

	amount, err := contract.DecodeI128(st.ReturnData)
	if err != nil {
		return nil, m.failWithStatus(a, DecodeFailed, err, string(st.State))
	}
	out.AmountOut = amount
	out.AmountOutDecoded = true

	if amount.Cmp(a.op.MinAmountOut) < 0 {
		// The transaction SUCCEEDED on-chain; funds have moved. This is a
		// client-side acceptance check, surfaced distinctly so callers can
		// report "succeeded below requested minimum".
		return nil, m.failWithStatus(a, SlippageExceeded,
			fmt.Errorf("output %s below requested minimum %s", amount, a.op.MinAmountOut),
			string(st.State))
	}

	return out, nil
}

func (m *Manager) fail(a *attempt, code FailureCode, err error) error {
	if a.status != StatusTimedOut {
		a.status = StatusFailed
	}
	return &Failure{
		Code:       code,
		EntryPoint: a.op.EntryPoint,
		Signature:  a.signature,
		Err:        err,
	}
}

func (m *Manager) failWithStatus(a *attempt, code FailureCode, err error, lastStatus string) error {
	f := m.fail(a, code, err).(*Failure)
	f.LastStatus = lastStatus
	return f
}
