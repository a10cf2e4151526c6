package amm

// Price impact severity bands, in percent.
const (
	ImpactLowPct      = 1.0
	ImpactModeratePct = 3.0
	ImpactHighPct     = 5.0
	ImpactExtremePct  = 10.0
)

// ImpactSeverity classifies a price impact for UI display and guard checks.
type ImpactSeverity string

const (
	SeverityNone     ImpactSeverity = "none"     // < 1%
	SeverityLow      ImpactSeverity = "low"      // 1-3%
	SeverityModerate ImpactSeverity = "moderate" // 3-5%
	SeverityHigh     ImpactSeverity = "high"     // 5-10%
	SeverityExtreme  ImpactSeverity = "extreme"  // > 10%
)

// ClassifyImpact returns the severity band for a price impact percentage.
func ClassifyImpact(impactPercent float64) ImpactSeverity {
	switch {
	case impactPercent < ImpactLowPct:
		return SeverityNone
	case impactPercent < ImpactModeratePct:
		return SeverityLow
	case impactPercent < ImpactHighPct:
		return SeverityModerate
	case impactPercent < ImpactExtremePct:
		return SeverityHigh
	default:
		return SeverityExtreme
	}
}
