package engine

import (
	"fmt"

	"github.com/omer-farooq/pairswap/internal/amm"
)

// GuardConfig bounds what the engine will accept before touching the chain.
type GuardConfig struct {
	// MaxSlippagePercent caps the caller-chosen slippage tolerance.
	MaxSlippagePercent float64
	// MaxPriceImpactPercent rejects quotes that would move the pool price
	// more than this.
	MaxPriceImpactPercent float64
}

// DefaultGuardConfig returns conservative limits.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxSlippagePercent:    10,
		MaxPriceImpactPercent: amm.ImpactExtremePct,
	}
}

// Guard validates caller inputs against configured bounds. The AMM math
// itself does no clamping, so upstream validation lives here.
type Guard struct {
	cfg GuardConfig
}

// NewGuard creates a guard; zero limits take the defaults.
func NewGuard(cfg GuardConfig) *Guard {
	def := DefaultGuardConfig()
	if cfg.MaxSlippagePercent <= 0 {
		cfg.MaxSlippagePercent = def.MaxSlippagePercent
	}
	if cfg.MaxPriceImpactPercent <= 0 {
		cfg.MaxPriceImpactPercent = def.MaxPriceImpactPercent
	}
	return &Guard{cfg: cfg}
}

// CheckSlippage validates a slippage tolerance in percent.
func (g *Guard) CheckSlippage(slippagePercent float64) error {
	if slippagePercent < 0 {
		return fmt.Errorf("slippage %.2f%% is negative", slippagePercent)
	}
	if slippagePercent > g.cfg.MaxSlippagePercent {
		return fmt.Errorf("slippage %.2f%% exceeds max %.2f%%",
			slippagePercent, g.cfg.MaxSlippagePercent)
	}
	return nil
}

// CheckImpact validates a quoted price impact in percent.
func (g *Guard) CheckImpact(impactPercent float64) error {
	if impactPercent > g.cfg.MaxPriceImpactPercent {
		return fmt.Errorf("price impact %.2f%% exceeds max %.2f%%",
			impactPercent, g.cfg.MaxPriceImpactPercent)
	}
	return nil
}
