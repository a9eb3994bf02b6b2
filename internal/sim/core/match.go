package core

import "math"

// Price formation tuning.
const (
	haltVelDecayBase = 0.02 // velocity decay base while halted, pow(base, dt)
	velDampBase      = 0.92 // per-frame velocity damping, raised to dt*60

	impactConst   = 2.4
	voidMaxMult   = 3.0
	voidDepthNorm = 40.0

	imbalanceRadius = 12
	reducedRadius   = 6

	kickGain     = 0.35
	invNudgeGain = 0.05
	invDecayRate = 0.02

	stickBase           = 0.4
	stickRebateGain     = 1.5
	stickDepthThreshold = 8.0
	imbalanceEps        = 1e-9
)

// bestBidBin returns the highest non-empty bid bin, or -1. The walk starts
// at the quoted extent recorded during the book rebuild, so it only crosses
// bins that held volume this tick, never the empty region beyond the quotes.
func (s *Sim) bestBidBin() int {
	for i := s.hiBid; i >= 0; i-- {
		if s.bid[i] > 0 {
			return i
		}
	}
	return -1
}

// bestAskBin returns the lowest non-empty ask bin, or -1.
func (s *Sim) bestAskBin() int {
	for i := s.loAsk; i < s.axis.Bins; i++ {
		if s.ask[i] > 0 {
			return i
		}
	}
	return -1
}

// match executes crossed volume and forms the price for this tick.
func (s *Sim) match(dt float64) {
	if s.breaker.Halted() {
		// Halted: velocity bleeds off, price does not move.
		s.velocity *= math.Pow(haltVelDecayBase, dt)
		s.history.Append(s.price)
		s.tape.Decay(dt)
		return
	}

	pbin := s.axis.NearestBin(s.price)

	// Execute the overlap, bin by bin. The last crossed bin is the trade
	// location for the velocity kick.
	executed := 0.0
	lastBin := -1
	bestBid := s.bestBidBin()
	bestAsk := s.bestAskBin()
	if bestBid >= 0 && bestAsk >= 0 && bestBid >= bestAsk {
		for i := bestAsk; i <= bestBid; i++ {
			q := math.Min(s.bid[i], s.ask[i])
			if q <= 0 {
				continue
			}
			s.bid[i] -= q
			s.ask[i] -= q
			executed += q
			lastBin = i

			side := SideSell
			if i > pbin {
				side = SideBuy
			}
			s.tape.Append(Print{Bin: i, Qty: q, Side: side, Life: printLife})
		}
	}
	if lastBin >= 0 {
		s.lastTradeBin = lastBin
	}

	// Near-price imbalance with a liquidity-void multiplier: sparse local
	// depth amplifies sensitivity, bounded at voidMaxMult.
	radius := imbalanceRadius
	if s.pol.ReducedWorkload {
		radius = reducedRadius
	}
	bidDepth, askDepth := 0.0, 0.0
	for i := pbin - radius; i <= pbin; i++ {
		if i >= 0 && i < s.axis.Bins {
			bidDepth += s.bid[i]
		}
	}
	for i := pbin; i <= pbin+radius; i++ {
		if i >= 0 && i < s.axis.Bins {
			askDepth += s.ask[i]
		}
	}
	depth := bidDepth + askDepth
	imbalance := (bidDepth - askDepth) / (depth + imbalanceEps)
	void := voidMaxMult - (voidMaxMult-1)*math.Min(1, depth/voidDepthNorm)

	s.velocity *= math.Pow(velDampBase, dt*60)
	s.velocity += imbalance * impactConst * void * dt

	if executed > 0 {
		dir := 0.0
		switch {
		case lastBin > pbin:
			dir = 1
		case lastBin < pbin:
			dir = -1
		default:
			dir = math.Copysign(1, imbalance)
		}
		s.velocity += math.Log(1+executed) * kickGain * dir

		for i := range s.agents {
			a := &s.agents[i]
			react := 0.8
			if a.Role == RoleSeeker || a.Role == RoleScared {
				react = 1.2
			}
			a.Inventory += dir * a.Impatience * react * invNudgeGain
			a.Inventory *= 1 - invDecayRate*dt
		}
	}

	s.price = s.axis.ClampPrice(s.price + s.velocity*dt)

	// Stabilizing pull toward the nearest integer bin; stronger with the
	// rebate lever and when local depth is thick.
	pull := stickBase + s.pol.Rebate*stickRebateGain
	if depth > stickDepthThreshold {
		pull *= 1.5
	}
	nearest := math.Round(s.price)
	s.price = s.axis.ClampPrice(s.price + (nearest-s.price)*math.Min(1, pull*dt))

	s.history.Append(s.price)
	s.tape.Decay(dt)
}
