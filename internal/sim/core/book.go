package core

import "math"

// Book construction tuning. Orders are rebuilt from scratch every tick; there
// is no order identity and no priority among agents, only per-bin volume.
const (
	fearShockGain   = 0.9
	fearAdverseGain = 0.05
	fearDecayRate   = 0.35

	beliefRate = 60.0 // scales per-frame belief blends to per-second

	minQuoteWidth = 0.5
	maxQuoteWidth = 10.0

	taxDragGain     = 6.0
	rebateBoostGain = 0.8

	// maxOrderSize bounds any single agent's total per-tick contribution.
	maxOrderSize = 10.0

	panicFear       = 0.75
	panicImpatience = 0.5
	panicSizeBoost  = 1.5

	sweepProb       = 0.04
	sweepImpatience = 0.6
	sweepMaxFear    = 0.4

	feintShift    = 3
	feintSizeCut  = 0.8
	inventorySkew = 0.08
)

// addBid and addAsk accumulate volume and keep the quoted extents current
// for the matcher's bounded scans.
func (s *Sim) addBid(bin int, qty float64) {
	if qty <= 0 {
		return
	}
	s.bid[bin] += qty
	if bin > s.hiBid {
		s.hiBid = bin
	}
}

func (s *Sim) addAsk(bin int, qty float64) {
	if qty <= 0 {
		return
	}
	s.ask[bin] += qty
	if bin < s.loAsk {
		s.loAsk = bin
	}
}

// buildBook zeroes both sides and projects every agent's desired order into
// the bin arrays. See the per-role rules inline; the layered exceptions fire
// in a fixed priority: panic cross, then sweep, then feint.
func (s *Sim) buildBook(dt float64) {
	for i := range s.bid {
		s.bid[i] = 0
		s.ask[i] = 0
	}
	s.hiBid = -1
	s.loAsk = s.axis.Bins

	price := s.price
	bias := s.news.Bias(s.pol)

	// Tape momentum proxy: price velocity plus how far price has drifted
	// from the last trade location.
	tapeMom := s.velocity*0.35 + (price-float64(s.lastTradeBin))*0.5

	for i := range s.agents {
		a := &s.agents[i]

		// Fear rises under shocks and adverse inventory, decays otherwise.
		shock := math.Abs(s.velocity)*0.12 + math.Abs(tapeMom)*0.05 + math.Abs(bias)*0.3
		adverse := 0.0
		if a.Inventory*s.velocity < 0 {
			adverse = math.Min(4, math.Abs(a.Inventory)) * fearAdverseGain
		}
		if shock+adverse > 0.02 {
			a.Fear += (shock + adverse) * fearShockGain * dt
		} else {
			a.Fear -= a.Fear * fearDecayRate * dt
		}
		a.Fear = clampF(a.Fear, 0, 1)

		// Role-specific fair/momentum blend.
		dev := price - a.Fair
		noise := s.rng.NormFloat64() * s.pol.NoiseScale * 0.25

		var momTarget, drift float64
		switch a.Role {
		case RoleTrend:
			momTarget = tapeMom * 1.3
			drift = dev*0.40 + a.Momentum*1.10 + bias*0.80 + noise
		case RoleContrarian:
			momTarget = tapeMom * -0.4
			drift = -dev*0.45 + a.Momentum*0.20 + bias*0.60 + noise
		case RoleMaker:
			momTarget = 0
			drift = dev*0.80 + bias*0.30 + noise*0.50
		case RoleSeeker:
			momTarget = tapeMom * (0.5 + 0.7*a.Impatience)
			drift = dev*0.35 + a.Momentum*(0.5+0.7*a.Impatience) + bias*0.70 + noise
		case RoleScared:
			momTarget = tapeMom * 0.6
			drift = dev*0.30 + a.Momentum*0.40 + bias*1.50 + noise - a.Inventory*0.05
		}
		a.Momentum += (momTarget - a.Momentum) * math.Min(1, 4*dt)
		a.Fair = s.axis.ClampPrice(a.Fair + drift*a.Alpha*beliefRate*dt)

		// Directional tilt in [-1, 1], positive = buy-leaning.
		var tilt float64
		switch a.Role {
		case RoleTrend:
			tilt = math.Tanh(a.Momentum*0.8 + (a.Fair-price)*0.15)
		case RoleContrarian:
			tilt = math.Tanh((a.Fair-price)*0.30 - a.Momentum*0.50)
		case RoleMaker:
			tilt = math.Tanh(-a.Inventory*0.15 + (a.Fair-price)*0.08)
		case RoleSeeker:
			tilt = math.Tanh(a.Momentum*0.6 + (a.Fair-price)*0.20 - a.Inventory*0.05)
		case RoleScared:
			flatten := a.Fear * -math.Copysign(1, a.Inventory) * math.Min(1, math.Abs(a.Inventory))
			tilt = math.Tanh(-a.Inventory*0.25 + bias*0.8 + flatten)
		}

		// Quote width widens under fear and impatience; Makers honor the
		// spread-floor lever.
		width := 1 + 2.5*a.Fear + 1.5*a.Impatience
		if a.Role == RoleMaker {
			width = math.Max(width*0.6, s.pol.SpreadFloor)
		}
		width = clampF(width, minQuoteWidth, maxQuoteWidth)

		// Order size: tax drags everyone, the rebate boosts Makers.
		size := a.SizeScale * a.Risk * (a.Impatience + math.Abs(tilt))
		size /= 1 + s.pol.Tax*taxDragGain
		if a.Role == RoleMaker {
			size *= 1 + s.pol.Rebate*rebateBoostGain
		}

		buyOff := width
		sellOff := width
		sweep := false

		// Layered exceptions, at most one per agent per tick.
		switch {
		case a.Role == RoleScared && a.Fear > panicFear && a.Impatience > panicImpatience:
			// Panic: cross aggressively at the innermost bins instead of
			// widening out.
			buyOff = 0
			sellOff = 0
			size *= panicSizeBoost
		case a.Role == RoleSeeker && a.Impatience > sweepImpatience && a.Fear < sweepMaxFear &&
			s.rng.Float64() < sweepProb:
			sweep = true
		case s.rng.Float64() < a.FeintBias:
			// Feint: park one side further out and shade the size.
			if s.rng.Float64() < 0.5 {
				buyOff += feintShift
			} else {
				sellOff += feintShift
			}
			size *= feintSizeCut
		}

		size = clampF(size, 0, maxOrderSize)

		// Offsets come from the agent's fair value, not the market price.
		buyBin := s.axis.ClampBin(s.axis.NearestBin(a.Fair - buyOff))
		sellBin := s.axis.ClampBin(s.axis.NearestBin(a.Fair + sellOff))

		// Sweep: the leaned-on side goes marketable past the current price;
		// the opposing side still rests at its fair-derived offset.
		if sweep {
			if tilt >= 0 {
				buyBin = s.axis.ClampBin(s.axis.NearestBin(price) + 1)
			} else {
				sellBin = s.axis.ClampBin(s.axis.NearestBin(price) - 1)
			}
		}

		buyQty := size * (0.5 + 0.5*tilt)
		sellQty := size - buyQty

		// Suppress the over-exposed side.
		if a.Inventory > 0 {
			buyQty /= 1 + a.Inventory*inventorySkew
		} else {
			sellQty /= 1 - a.Inventory*inventorySkew
		}

		s.addBid(buyBin, buyQty)
		s.addAsk(sellBin, sellQty)
	}
}
