package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/chain"
	"github.com/omer-farooq/pairswap/internal/config"
	"github.com/omer-farooq/pairswap/internal/constants"
	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/engine"
	"github.com/omer-farooq/pairswap/internal/lifecycle"
	"github.com/omer-farooq/pairswap/internal/rpc"
	"github.com/omer-farooq/pairswap/internal/wallet"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// engineFromEnv wires a standalone engine from environment configuration.
// The CLI skips Redis and ClickHouse; results go to stdout only.
func engineFromEnv(ctx context.Context, logger *logrus.Logger) (*engine.Engine, string, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	chainClient := chain.NewRPCClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	if err := chainClient.VerifyCluster(ctx, constants.ClusterGenesisHashes[cfg.Cluster]); err != nil {
		return nil, "", err
	}

	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return nil, "", fmt.Errorf("invalid POOL_PROGRAM_ID: %w", err)
	}
	poolAccount, err := solana.PublicKeyFromBase58(cfg.PoolAccount)
	if err != nil {
		return nil, "", fmt.Errorf("invalid POOL_ACCOUNT: %w", err)
	}

	var signer lifecycle.Signer
	if cfg.WalletPrivateKey != "" {
		w, err := wallet.New(cfg.WalletPrivateKey)
		if err != nil {
			return nil, "", err
		}
		signer = w
	}

	eng, err := engine.New(engine.Config{
		Chain:   chainClient,
		Signer:  signer,
		Builder: contract.NewBuilder(programID, poolAccount),
		Guard: engine.GuardConfig{
			MaxSlippagePercent:    cfg.MaxSlippagePercent,
			MaxPriceImpactPercent: cfg.MaxPriceImpactPercent,
		},
		Logger:       logger,
		PollInterval: cfg.PollInterval,
		MaxPolls:     cfg.MaxPolls,
	})
	return eng, cfg.Cluster, err
}

func main() {
	loadEnv()

	mode := flag.String("mode", "quote", "quote | execute | init | pool")
	dirStr := flag.String("dir", "a_to_b", "swap direction: a_to_b | b_to_a")
	amt := flag.Float64("amt", 0, "input amount in base units")
	slippage := flag.Float64("slippage", 1, "slippage tolerance in percent")
	minOut := flag.Float64("min-out", 0, "explicit output floor, overrides -slippage")
	reserveA := flag.Uint64("reserve-a", 0, "initial reserve of token A (init mode)")
	reserveB := flag.Uint64("reserve-b", 0, "initial reserve of token B (init mode)")
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel) // keep stdout for results

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	eng, cluster, err := engineFromEnv(ctx, logger)
	if err != nil {
		fmt.Println("failed to init engine:", err)
		os.Exit(1)
	}

	dir, err := contract.ParseDirection(*dirStr)
	if err != nil && (*mode == "quote" || *mode == "execute") {
		fmt.Println("invalid -dir (use a_to_b|b_to_a)")
		os.Exit(2)
	}

	switch *mode {
	case "pool":
		snap, err := eng.Snapshot(ctx)
		if err != nil {
			fmt.Println("pool read failed:", err)
			os.Exit(1)
		}
		fmt.Printf("cluster=%s reserve_a=%d reserve_b=%d total_swaps=%d initialized=%v\n",
			cluster, snap.ReserveA, snap.ReserveB, snap.TotalSwaps, !snap.Uninitialized())

	case "quote":
		if *amt <= 0 {
			fmt.Println("missing -amt (must be > 0)")
			os.Exit(2)
		}
		q, err := eng.Quote(ctx, dir, *amt, *slippage)
		if err != nil {
			fmt.Println("quote failed:", err)
			os.Exit(1)
		}
		fmt.Printf("direction=%s amount_in=%.2f amount_out=%.6f min_out=%.6f impact=%.4f%% (%s) rate=%.6f\n",
			q.Direction, q.AmountIn, q.AmountOut, q.MinAmountOut,
			q.PriceImpactPercent, q.ImpactSeverity, q.ExchangeRate)

	case "execute":
		if *amt <= 0 {
			fmt.Println("missing -amt (must be > 0)")
			os.Exit(2)
		}
		floor := *minOut
		if floor <= 0 {
			q, err := eng.Quote(ctx, dir, *amt, *slippage)
			if err != nil {
				fmt.Println("quote failed:", err)
				os.Exit(1)
			}
			floor = q.MinAmountOut
			fmt.Printf("quoted amount_out=%.6f min_out=%.6f impact=%.4f%%\n",
				q.AmountOut, q.MinAmountOut, q.PriceImpactPercent)
		}
		res, err := eng.ExecuteSwap(ctx, engine.SwapRequest{
			Direction:    dir,
			AmountIn:     *amt,
			MinAmountOut: floor,
		})
		if err != nil {
			fmt.Println("execute failed:", err)
			os.Exit(1)
		}
		fmt.Printf("sig=%s amount_out=%.6f decoded=%v polls=%d duration=%s\n",
			res.Signature, res.AmountOut, res.AmountOutDecoded, res.PollCount, res.Duration)
		fmt.Printf("pool now reserve_a=%d reserve_b=%d total_swaps=%d\n",
			res.Snapshot.ReserveA, res.Snapshot.ReserveB, res.Snapshot.TotalSwaps)

	case "init":
		if *reserveA == 0 || *reserveB == 0 {
			fmt.Println("missing -reserve-a/-reserve-b (must be > 0)")
			os.Exit(2)
		}
		res, err := eng.InitializePool(ctx, *reserveA, *reserveB)
		if err != nil {
			fmt.Println("init failed:", err)
			os.Exit(1)
		}
		fmt.Printf("sig=%s duration=%s reserve_a=%d reserve_b=%d\n",
			res.Signature, res.Duration, res.Snapshot.ReserveA, res.Snapshot.ReserveB)

	default:
		fmt.Println("invalid -mode (use quote|execute|init|pool)")
		os.Exit(2)
	}
}
