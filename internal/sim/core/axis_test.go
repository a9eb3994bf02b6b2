package core

import "testing"

func TestAxisParity(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"rounds up to odd", 200, 201},
		{"odd kept", 201, 201},
		{"below minimum", 10, MinBins + 1},
		{"zero", 0, MinBins + 1},
		{"negative", -5, MinBins + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAxis(tt.in)
			if a.Bins != tt.want {
				t.Errorf("NewAxis(%d).Bins = %d, want %d", tt.in, a.Bins, tt.want)
			}
			if a.Bins%2 == 0 {
				t.Errorf("bin count %d is even", a.Bins)
			}
			if a.Bins < MinBins {
				t.Errorf("bin count %d below minimum %d", a.Bins, MinBins)
			}
		})
	}
}

func TestAxisClamp(t *testing.T) {
	a := NewAxis(201)

	if got := a.ClampPrice(-10); got != a.PriceLo() {
		t.Errorf("ClampPrice(-10) = %v, want %v", got, a.PriceLo())
	}
	if got := a.ClampPrice(1e9); got != a.PriceHi() {
		t.Errorf("ClampPrice(1e9) = %v, want %v", got, a.PriceHi())
	}
	if got := a.ClampBin(500); got != 200 {
		t.Errorf("ClampBin(500) = %d, want 200", got)
	}
	if got := a.NearestBin(100.4); got != 100 {
		t.Errorf("NearestBin(100.4) = %d, want 100", got)
	}
	if got := a.NearestBin(100.6); got != 101 {
		t.Errorf("NearestBin(100.6) = %d, want 101", got)
	}
}
