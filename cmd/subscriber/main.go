package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/omer-farooq/pairswap/internal/cache"
	"github.com/omer-farooq/pairswap/internal/config"
)

// Example consumer of the live swap feed. Anything published by an executing
// engine shows up here, across processes.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer rc.Close()

	events, err := rc.SubscribeSwaps(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe")
	}

	logger.Info("subscriber running, press Ctrl+C to stop")

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down subscriber")
			return
		case ev, ok := <-events:
			if !ok {
				logger.Info("subscription closed")
				return
			}
			logger.WithFields(logrus.Fields{
				"sig":       ev.Signature,
				"entry":     ev.EntryPoint,
				"direction": ev.Direction,
				"in":        ev.AmountIn,
				"out":       ev.AmountOut,
				"impact":    ev.PriceImpactPct,
				"polls":     ev.PollCount,
			}).Info("swap settled")
		}
	}
}
