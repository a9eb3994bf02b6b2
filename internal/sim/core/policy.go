package core

// Policy holds the mutable levers the host may change between ticks.
// Values are coerced into safe ranges by Normalize rather than rejected;
// the simulation keeps running with degraded parameters instead of failing.
type Policy struct {
	// Tax is the transaction-tax fraction; it drags every agent's order size.
	Tax float64
	// SpreadFloor is the minimum Maker quote width, in bins.
	SpreadFloor float64
	// BreakerPct is the fractional price move over the breaker window that
	// trips a halt.
	BreakerPct float64
	// BreakerWindow is how many seconds of price samples the breaker retains.
	BreakerWindow float64
	// BreakerCooldown is the halt duration and the re-arm delay, in seconds.
	BreakerCooldown float64
	// Rebate is the liquidity rebate; it boosts Maker size and the pull of
	// price toward integer bins.
	Rebate float64
	// NewsRate is the per-frame-normalized arrival probability of a pulse.
	NewsRate float64
	// NewsStrength scales the belief bias an active pulse exerts.
	NewsStrength float64
	// NoiseScale scales each agent's idiosyncratic belief noise.
	NoiseScale float64
	// Population is the number of agents.
	Population int
	// ReducedWorkload halves the imbalance-window radius for cheaper ticks.
	ReducedWorkload bool
}

// DefaultPolicy returns the levers at their default positions.
func DefaultPolicy() Policy {
	return Policy{
		Tax:             0,
		SpreadFloor:     1,
		BreakerPct:      0.08,
		BreakerWindow:   3,
		BreakerCooldown: 4,
		Rebate:          0,
		NewsRate:        0.015,
		NewsStrength:    1,
		NoiseScale:      1,
		Population:      1200,
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize coerces every lever into its documented range.
func (p Policy) Normalize() Policy {
	p.Tax = clampF(p.Tax, 0, 0.05)
	p.SpreadFloor = clampF(p.SpreadFloor, 0, 6)
	p.BreakerPct = clampF(p.BreakerPct, 0.01, 0.5)
	p.BreakerWindow = clampF(p.BreakerWindow, 0.5, 30)
	p.BreakerCooldown = clampF(p.BreakerCooldown, 0.5, 60)
	p.Rebate = clampF(p.Rebate, 0, 1)
	p.NewsRate = clampF(p.NewsRate, 0, 1)
	p.NewsStrength = clampF(p.NewsStrength, 0, 3)
	p.NoiseScale = clampF(p.NoiseScale, 0, 3)
	p.Population = clampI(p.Population, 1, 20000)
	return p
}
