package core

import (
	"math"
	"math/rand"
)

const (
	newsPeak      = 1.0
	newsStartFrac = 0.4 // intensity a fresh pulse starts at, as a fraction of peak
	newsRampRate  = 4.0
	newsDecayRate = 8.0 // steeper than the ramp: pulses vanish faster than they build
	newsEps       = 1e-3
	newsTTLMin    = 2.0
	newsTTLSpan   = 3.0
	newsBiasScale = 0.9
)

// News is the exogenous belief-shock process. A pulse ramps Active toward
// the peak while TTL runs, then Active decays back to exactly zero, faster
// than it ramped. A new pulse can only start once TTL has expired.
type News struct {
	Active float64
	Dir    float64
	TTL    float64
}

// Step advances the pulse and, when idle, runs the frame-rate-normalized
// Bernoulli arrival trial.
func (n *News) Step(dt float64, pol Policy, rng *rand.Rand) {
	if n.TTL > 0 {
		n.TTL -= dt
		if n.TTL < 0 {
			n.TTL = 0
		}
		n.Active += (newsPeak - n.Active) * math.Min(1, newsRampRate*dt)
		return
	}

	if n.Active > 0 {
		n.Active -= n.Active * math.Min(1, newsDecayRate*dt)
		if n.Active < newsEps {
			n.Active = 0
		}
	}

	prob := 1 - math.Pow(1-pol.NewsRate, 60*dt)
	if rng.Float64() < prob {
		dir := 1.0
		if rng.Float64() < 0.5 {
			dir = -1
		}
		n.start(dir, rng)
	}
}

// Trigger starts a pulse manually, bypassing the arrival trial. It obeys the
// same mechanics: a pulse cannot start while one is still active.
func (n *News) Trigger(dir float64, rng *rand.Rand) bool {
	if n.TTL > 0 {
		return false
	}
	if dir >= 0 {
		dir = 1
	} else {
		dir = -1
	}
	n.start(dir, rng)
	return true
}

func (n *News) start(dir float64, rng *rand.Rand) {
	n.Dir = dir
	n.TTL = newsTTLMin + newsTTLSpan*rng.Float64()
	if n.Active < newsStartFrac*newsPeak {
		n.Active = newsStartFrac * newsPeak
	}
}

// Bias is the signed per-agent belief shift the current pulse exerts.
func (n News) Bias(pol Policy) float64 {
	return n.Active * n.Dir * pol.NewsStrength * newsBiasScale
}

// Reset clears any active pulse.
func (n *News) Reset() {
	n.Active, n.Dir, n.TTL = 0, 0, 0
}
