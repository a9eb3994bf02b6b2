package core

import "testing"

func TestTradeTapeCapAndDecay(t *testing.T) {
	var tape TradeTape

	for i := 0; i < tapeCap+20; i++ {
		tape.Append(Print{Bin: i, Qty: 1, Side: SideBuy, Life: printLife})
	}
	if tape.Len() != tapeCap {
		t.Fatalf("tape length = %d, want cap %d", tape.Len(), tapeCap)
	}

	// Oldest were dropped first.
	prints := tape.Prints()
	if prints[0].Bin != 20 {
		t.Errorf("oldest retained print bin = %d, want 20", prints[0].Bin)
	}

	tape.Decay(printLife + 1)
	if tape.Len() != 0 {
		t.Errorf("tape length = %d after full decay, want 0", tape.Len())
	}
}

func TestTradeTapePartialDecay(t *testing.T) {
	var tape TradeTape
	tape.Append(Print{Bin: 1, Qty: 1, Side: SideSell, Life: 0.1})
	tape.Append(Print{Bin: 2, Qty: 1, Side: SideBuy, Life: 1.0})

	tape.Decay(0.5)

	prints := tape.Prints()
	if len(prints) != 1 || prints[0].Bin != 2 {
		t.Fatalf("expected only the long-lived print to survive, got %v", prints)
	}
}

func TestPriceHistoryRing(t *testing.T) {
	h := NewPriceHistory(4)

	for i := 1; i <= 6; i++ {
		h.Append(float64(i))
	}
	if h.Count() != 4 {
		t.Fatalf("count = %d, want 4", h.Count())
	}

	got := h.Last(4)
	want := []float64{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Last(4) = %v, want %v", got, want)
		}
	}

	if h.Last(0) != nil {
		t.Error("Last(0) should be nil")
	}

	h.Reset()
	if h.Count() != 0 {
		t.Errorf("count = %d after reset, want 0", h.Count())
	}
}

func TestPolicyNormalize(t *testing.T) {
	p := Policy{
		Tax:             -1,
		SpreadFloor:     100,
		BreakerPct:      0,
		BreakerWindow:   0,
		BreakerCooldown: 1e6,
		Rebate:          2,
		NewsRate:        -0.5,
		NewsStrength:    99,
		NoiseScale:      -3,
		Population:      -10,
	}.Normalize()

	if p.Tax != 0 || p.SpreadFloor != 6 || p.BreakerPct != 0.01 ||
		p.BreakerWindow != 0.5 || p.BreakerCooldown != 60 || p.Rebate != 1 ||
		p.NewsRate != 0 || p.NewsStrength != 3 || p.NoiseScale != 0 ||
		p.Population != 1 {
		t.Errorf("Normalize produced out-of-range policy: %+v", p)
	}
}
