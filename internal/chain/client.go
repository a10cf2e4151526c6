package chain

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/rpc"
)

// RPCClient implements Client over the project's JSON-RPC transport.
type RPCClient struct {
	rpc    *rpc.Client
	logger *logrus.Logger
}

// NewRPCClient creates a chain client over the given transport config.
func NewRPCClient(cfg rpc.ClientConfig) *RPCClient {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &RPCClient{rpc: rpc.NewClient(cfg), logger: logger}
}

// VerifyCluster checks the endpoint's genesis hash against the hash expected
// for the configured cluster. Called once at process start; a mismatch means
// every signed transaction would be silently rejected, so fail loudly here.
func (c *RPCClient) VerifyCluster(ctx context.Context, expectedGenesisHash string) error {
	if expectedGenesisHash == "" {
		return nil
	}
	got, err := c.GetGenesisHash(ctx)
	if err != nil {
		return fmt.Errorf("verify cluster: %w", err)
	}
	if got != expectedGenesisHash {
		return fmt.Errorf("cluster mismatch: endpoint genesis hash %s, expected %s", got, expectedGenesisHash)
	}
	return nil
}

func (c *RPCClient) GetGenesisHash(ctx context.Context) (string, error) {
	var resp struct {
		Result string        `json:"result"`
		Error  *rpc.RPCError `json:"error"`
	}
	if err := c.rpc.Call(ctx, "getGenesisHash", []any{}, &resp); err != nil {
		return "", fmt.Errorf("getGenesisHash failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("getGenesisHash error: %s", resp.Error.Message)
	}
	return resp.Result, nil
}

func (c *RPCClient) GetAccount(ctx context.Context, pubkey solana.PublicKey) (*AccountState, error) {
	var resp struct {
		Result struct {
			Value *struct {
				Lamports uint64 `json:"lamports"`
				Owner    string `json:"owner"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		pubkey.String(),
		map[string]any{"encoding": "base64", "commitment": "confirmed"},
	}
	if err := c.rpc.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return nil, fmt.Errorf("getAccountInfo failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getAccountInfo error: %s", resp.Error.Message)
	}

	if resp.Result.Value == nil {
		return &AccountState{Exists: false}, nil
	}
	return &AccountState{
		Exists:   true,
		Lamports: resp.Result.Value.Lamports,
		Owner:    resp.Result.Value.Owner,
	}, nil
}

func (c *RPCClient) GetLatestBlockhash(ctx context.Context) (*BlockhashInfo, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{map[string]any{"commitment": "confirmed"}}
	if err := c.rpc.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return nil, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getLatestBlockhash error: %s", resp.Error.Message)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return nil, fmt.Errorf("invalid blockhash format: %w", err)
	}

	return &BlockhashInfo{
		Blockhash:            hash,
		LastValidBlockHeight: resp.Result.Value.LastValidBlockHeight,
	}, nil
}

func (c *RPCClient) Simulate(ctx context.Context, tx *solana.Transaction) (*SimulationOutcome, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	encodedTx := base64.StdEncoding.EncodeToString(txBytes)

	var resp struct {
		Result struct {
			Value struct {
				Err           any      `json:"err"`
				Logs          []string `json:"logs"`
				UnitsConsumed uint64   `json:"unitsConsumed,omitempty"`
				ReturnData    *struct {
					ProgramID string   `json:"programId"`
					Data      []string `json:"data"` // [payload, encoding]
				} `json:"returnData,omitempty"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	// Reads simulate against current state with a synthetic blockhash and no
	// signatures, so the same path serves both pool queries and pre-flight
	// checks of real swaps.
	params := []any{
		encodedTx,
		map[string]any{
			"encoding":               "base64",
			"commitment":             "confirmed",
			"sigVerify":              false,
			"replaceRecentBlockhash": true,
		},
	}

	if err := c.rpc.Call(ctx, "simulateTransaction", params, &resp); err != nil {
		return nil, fmt.Errorf("simulateTransaction failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("simulateTransaction error: %s", resp.Error.Message)
	}

	out := &SimulationOutcome{
		Logs:          resp.Result.Value.Logs,
		UnitsConsumed: resp.Result.Value.UnitsConsumed,
	}

	if rd := resp.Result.Value.ReturnData; rd != nil && len(rd.Data) > 0 {
		decoded, err := base64.StdEncoding.DecodeString(rd.Data[0])
		if err != nil {
			return nil, fmt.Errorf("invalid returnData encoding: %w", err)
		}
		out.ReturnData = decoded
	}

	if resp.Result.Value.Err != nil {
		out.Ok = false
		out.Err = fmt.Sprintf("%v", resp.Result.Value.Err)
		return out, nil
	}

	out.Ok = true
	return out, nil
}

func (c *RPCClient) Submit(ctx context.Context, tx *solana.Transaction) (string, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	encodedTx := base64.StdEncoding.EncodeToString(txBytes)

	var resp struct {
		Result string        `json:"result"`
		Error  *rpc.RPCError `json:"error"`
	}

	params := []any{
		encodedTx,
		map[string]any{
			"encoding":            "base64",
			"skipPreflight":       true, // the lifecycle already simulated
			"preflightCommitment": "processed",
		},
	}

	if err := c.rpc.Call(ctx, "sendTransaction", params, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction error: code=%d, message=%s",
			resp.Error.Code, resp.Error.Message)
	}

	return resp.Result, nil
}

func (c *RPCClient) GetTransactionStatus(ctx context.Context, signature string) (*TxStatus, error) {
	var resp struct {
		Result struct {
			Value []*struct {
				Slot               uint64 `json:"slot"`
				Err                any    `json:"err"`
				ConfirmationStatus string `json:"confirmationStatus"`
			} `json:"value"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}
	if err := c.rpc.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return nil, fmt.Errorf("getSignatureStatuses failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getSignatureStatuses error: %s", resp.Error.Message)
	}

	if len(resp.Result.Value) == 0 || resp.Result.Value[0] == nil {
		return &TxStatus{State: TxNotFound}, nil
	}

	st := resp.Result.Value[0]
	if st.Err != nil {
		return &TxStatus{State: TxFailed, Err: fmt.Sprintf("%v", st.Err), Slot: st.Slot}, nil
	}

	switch st.ConfirmationStatus {
	case "confirmed", "finalized":
		status := &TxStatus{State: TxSuccess, Slot: st.Slot}
		// Only getTransaction carries the entry point's return value.
		ret, err := c.fetchReturnData(ctx, signature)
		if err != nil {
			c.logger.WithError(err).WithField("signature", signature).
				Warn("confirmed transaction, return value unavailable")
		} else {
			status.ReturnData = ret
		}
		return status, nil
	default:
		return &TxStatus{State: TxPending, Slot: st.Slot}, nil
	}
}

// fetchReturnData pulls meta.returnData for a confirmed transaction.
func (c *RPCClient) fetchReturnData(ctx context.Context, signature string) ([]byte, error) {
	var resp struct {
		Result *struct {
			Meta *struct {
				Err        any `json:"err"`
				ReturnData *struct {
					ProgramID string   `json:"programId"`
					Data      []string `json:"data"`
				} `json:"returnData"`
			} `json:"meta"`
		} `json:"result"`
		Error *rpc.RPCError `json:"error"`
	}

	params := []any{
		signature,
		map[string]any{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}
	if err := c.rpc.Call(ctx, "getTransaction", params, &resp); err != nil {
		return nil, fmt.Errorf("getTransaction failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getTransaction error: %s", resp.Error.Message)
	}
	if resp.Result == nil || resp.Result.Meta == nil || resp.Result.Meta.ReturnData == nil {
		return nil, nil
	}
	if len(resp.Result.Meta.ReturnData.Data) == 0 {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(resp.Result.Meta.ReturnData.Data[0])
	if err != nil {
		return nil, fmt.Errorf("invalid returnData encoding: %w", err)
	}
	return decoded, nil
}
