package core

import (
	"math/rand"
	"testing"
)

func TestNewsManualTrigger(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var n News

	if !n.Trigger(1, rng) {
		t.Fatal("trigger on idle process should start a pulse")
	}
	if n.Active <= 0 {
		t.Errorf("Active = %v after trigger, want > 0", n.Active)
	}
	if n.Dir != 1 {
		t.Errorf("Dir = %v, want 1", n.Dir)
	}
	if n.TTL <= 0 {
		t.Errorf("TTL = %v, want > 0", n.TTL)
	}

	// A second trigger while the pulse is active must be refused.
	if n.Trigger(-1, rng) {
		t.Error("trigger during an active pulse should be refused")
	}
	if n.Dir != 1 {
		t.Errorf("Dir changed to %v by refused trigger", n.Dir)
	}
}

func TestNewsRampsTowardPeak(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var n News
	pol := DefaultPolicy()

	n.Trigger(1, rng)
	start := n.Active

	dt := 1.0 / 60
	for i := 0; i < 30; i++ { // half a second
		n.Step(dt, pol, rng)
	}
	if n.Active <= start {
		t.Errorf("Active = %v after 0.5s, want rising from %v", n.Active, start)
	}
	if n.Active > newsPeak {
		t.Errorf("Active = %v exceeds peak %v", n.Active, newsPeak)
	}
}

func TestNewsDecayOutpacesRamp(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pol := DefaultPolicy()
	pol.NewsRate = 0

	var n News
	n.Trigger(1, rng)

	dt := 1.0 / 60
	rampTicks := 0
	for n.Active < 0.9*newsPeak {
		n.Step(dt, pol, rng)
		rampTicks++
		if rampTicks > 600 {
			t.Fatal("ramp never reached 90% of peak")
		}
	}

	n.TTL = 0
	n.Active = newsPeak
	decayTicks := 0
	for n.Active > 0.1*newsPeak {
		n.Step(dt, pol, rng)
		decayTicks++
		if decayTicks > 600 {
			t.Fatal("decay never reached 10% of peak")
		}
	}

	if decayTicks >= rampTicks {
		t.Errorf("decay took %d ticks, ramp %d; decay must be the faster leg", decayTicks, rampTicks)
	}
}

func TestNewsDecaysToExactZero(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var n News
	pol := DefaultPolicy()
	pol.NewsRate = 0 // no re-trigger

	n.Trigger(-1, rng)
	ttl := n.TTL

	dt := 1.0 / 60
	steps := int(ttl/dt) + 1
	for i := 0; i < steps; i++ {
		n.Step(dt, pol, rng)
	}
	if n.TTL > 0 {
		t.Fatalf("TTL = %v after %d steps, want 0", n.TTL, steps)
	}

	// Bounded number of further ticks until Active snaps to exactly 0.
	for i := 0; i < 600; i++ {
		if n.Active == 0 {
			return
		}
		n.Step(dt, pol, rng)
	}
	t.Errorf("Active = %v never reached 0", n.Active)
}

func TestNewsBiasSign(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pol := DefaultPolicy()

	var n News
	n.Trigger(-1, rng)
	if b := n.Bias(pol); b >= 0 {
		t.Errorf("Bias = %v for a negative pulse, want < 0", b)
	}
}
