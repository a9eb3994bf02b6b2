package core

// MinBins is the smallest bin count the simulation will run with.
const MinBins = 64

// Axis is the discretized price line. Bins is always odd so the axis has a
// true midpoint bin.
type Axis struct {
	Bins int
}

// NewAxis builds an axis with at least MinBins bins, rounded up to odd.
func NewAxis(bins int) Axis {
	if bins < MinBins {
		bins = MinBins
	}
	if bins%2 == 0 {
		bins++
	}
	return Axis{Bins: bins}
}

// Mid returns the midpoint bin as a price.
func (a Axis) Mid() float64 {
	return float64(a.Bins / 2)
}

// PriceLo and PriceHi bound the continuous price position. The margin keeps
// the matcher's neighborhood scans inside the arrays.
func (a Axis) PriceLo() float64 { return 4 }
func (a Axis) PriceHi() float64 { return float64(a.Bins - 5) }

// ClampPrice clamps a continuous price into the axis interior.
func (a Axis) ClampPrice(p float64) float64 {
	if p < a.PriceLo() {
		return a.PriceLo()
	}
	if p > a.PriceHi() {
		return a.PriceHi()
	}
	return p
}

// ClampBin clamps a bin index into [0, Bins).
func (a Axis) ClampBin(i int) int {
	if i < 0 {
		return 0
	}
	if i >= a.Bins {
		return a.Bins - 1
	}
	return i
}

// NearestBin returns the bin index closest to a continuous price.
func (a Axis) NearestBin(p float64) int {
	return a.ClampBin(int(p + 0.5))
}
