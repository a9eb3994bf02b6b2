package view

import (
	"math"
	"sync"

	"github.com/zappabad/marketlab/internal/sim/core"
)

// Stats are display statistics derived from the retained price history.
type Stats struct {
	// LastReturn is the fractional change over the last two samples.
	LastReturn float64
	// High is the maximum retained price.
	High float64
	// Low is the minimum retained price.
	Low float64
	// Volatility is the standard deviation of per-sample returns.
	Volatility float64
}

// FrameView holds the latest simulation frame and statistics derived from it.
// It is thread-safe and returns copies (not internal references).
type FrameView struct {
	mu    sync.RWMutex
	last  core.Snapshot
	stats Stats
}

// NewFrameView creates an empty FrameView.
func NewFrameView() *FrameView {
	return &FrameView{}
}

// Apply replaces the latest frame and recomputes derived stats.
func (v *FrameView) Apply(snap core.Snapshot) {
	stats := deriveStats(snap.History)

	v.mu.Lock()
	v.last = snap
	v.stats = stats
	v.mu.Unlock()
}

// Latest returns the most recent frame.
func (v *FrameView) Latest() core.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.last
}

// Stats returns the derived statistics for the most recent frame.
func (v *FrameView) Stats() Stats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stats
}

func deriveStats(history []float64) Stats {
	var st Stats
	if len(history) == 0 {
		return st
	}

	st.High = history[0]
	st.Low = history[0]
	for _, p := range history {
		if p > st.High {
			st.High = p
		}
		if p < st.Low {
			st.Low = p
		}
	}

	if len(history) < 2 {
		return st
	}

	prevLast := history[len(history)-2]
	if prevLast != 0 {
		st.LastReturn = (history[len(history)-1] - prevLast) / prevLast
	}

	// Return volatility over the window.
	var sum, sumSq float64
	n := 0
	for i := 1; i < len(history); i++ {
		if history[i-1] == 0 {
			continue
		}
		r := (history[i] - history[i-1]) / history[i-1]
		sum += r
		sumSq += r * r
		n++
	}
	if n > 1 {
		mean := sum / float64(n)
		st.Volatility = math.Sqrt(sumSq/float64(n) - mean*mean)
	}
	return st
}
