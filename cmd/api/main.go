package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/cache"
	"github.com/omer-farooq/pairswap/internal/chain"
	"github.com/omer-farooq/pairswap/internal/config"
	"github.com/omer-farooq/pairswap/internal/constants"
	"github.com/omer-farooq/pairswap/internal/contract"
	"github.com/omer-farooq/pairswap/internal/engine"
	"github.com/omer-farooq/pairswap/internal/flags"
	"github.com/omer-farooq/pairswap/internal/lifecycle"
	"github.com/omer-farooq/pairswap/internal/rpc"
	"github.com/omer-farooq/pairswap/internal/server"
	"github.com/omer-farooq/pairswap/internal/wallet"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Initialize the chain client and verify we are talking to the expected
	// cluster before doing anything else
	chainClient := chain.NewRPCClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	if err := chainClient.VerifyCluster(ctx, constants.ClusterGenesisHashes[cfg.Cluster]); err != nil {
		logger.WithError(err).Fatal("cluster verification failed")
	}
	logger.WithField("cluster", cfg.Cluster).Info("cluster verified")

	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		logger.WithError(err).Fatal("invalid POOL_PROGRAM_ID")
	}
	poolAccount, err := solana.PublicKeyFromBase58(cfg.PoolAccount)
	if err != nil {
		logger.WithError(err).Fatal("invalid POOL_ACCOUNT")
	}

	// Wallet is optional for the API: without it the server still quotes,
	// and execution fails at the signing step
	var signer lifecycle.Signer
	if cfg.WalletPrivateKey != "" {
		w, err := wallet.New(cfg.WalletPrivateKey)
		if err != nil {
			logger.WithError(err).Fatal("invalid WALLET_PRIVATE_KEY")
		}
		signer = w
		logger.WithField("address", w.Address()).Info("wallet loaded")
	} else {
		logger.Warn("no wallet configured, swap execution will be unavailable")
	}

	// Initialize Redis client for caching and feature flags
	rclient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0, // Use default database for main application
	})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	// Initialize swap cache for recent swaps and the live event channel
	swapCache := cache.NewRedisCacheFromClient(rclient, logger)

	// Initialize feature flags store for runtime configuration
	flagStore, err := flags.NewStore(rclient)
	if err != nil {
		logger.WithError(err).Fatal("failed to create flags store")
	}

	// ClickHouse history store is optional; swaps still execute without it
	var store *cache.ClickHouseStore
	ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		logger.WithError(err).Warn("clickhouse unavailable, swap history disabled")
	} else {
		store = ch
		defer func() {
			_ = store.Close()
		}()
	}

	engCfg := engine.Config{
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
		Cache:        swapCache,
	}
	if store != nil {
		engCfg.Store = store
	}
	eng, err := engine.New(engCfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to create engine")
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Engine:  eng,
		Cache:   swapCache,
		Flags:   flagStore,
		Cluster: cfg.Cluster,
		DevMode: cfg.DevMode,
		Logger:  logger,
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
