package core

import "math"

const (
	breakerMaxSamples = 600
	breakerFearBump   = 0.35
	breakerEps        = 1e-6
)

// PriceSample is one entry of the breaker's rolling window.
type PriceSample struct {
	Age   float64
	Price float64
}

// Breaker halts price formation after an excessive move. Frozen counts down
// the halt, Cooldown the re-arm delay; both run every tick regardless of
// state. Evaluation only happens when both are zero.
type Breaker struct {
	Frozen   float64
	Cooldown float64
	Window   []PriceSample
}

// Halted reports whether price updates are currently suspended.
func (b *Breaker) Halted() bool { return b.Frozen > 0 }

// Step ages the window, records the current price, and evaluates the trigger
// condition against the oldest retained sample. It returns true when a halt
// was just triggered this tick.
func (b *Breaker) Step(dt, price float64, pol Policy) bool {
	b.Frozen = math.Max(0, b.Frozen-dt)
	b.Cooldown = math.Max(0, b.Cooldown-dt)

	for i := range b.Window {
		b.Window[i].Age += dt
	}
	b.Window = append(b.Window, PriceSample{Age: 0, Price: price})

	// Evict from the front: too old first, then over count.
	drop := 0
	for drop < len(b.Window) && b.Window[drop].Age > pol.BreakerWindow {
		drop++
	}
	if over := len(b.Window) - breakerMaxSamples; over > drop {
		drop = over
	}
	if drop > 0 {
		b.Window = append(b.Window[:0], b.Window[drop:]...)
	}

	if b.Frozen > 0 || b.Cooldown > 0 {
		return false
	}

	oldest := b.Window[0]
	move := math.Abs(price-oldest.Price) / math.Max(breakerEps, oldest.Price)
	if move >= pol.BreakerPct {
		b.Frozen = pol.BreakerCooldown
		b.Cooldown = pol.BreakerCooldown
		return true
	}
	return false
}

// Reset clears counters and the rolling window.
func (b *Breaker) Reset() {
	b.Frozen = 0
	b.Cooldown = 0
	b.Window = b.Window[:0]
}
