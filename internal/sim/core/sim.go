package core

import "math/rand"

const historyCap = 600

// Config holds creation-time parameters for a Sim. Policy levers can change
// later; the bin count cannot without a full rebuild.
type Config struct {
	// Bins is the requested axis size; coerced to odd and to at least MinBins.
	Bins int
	// Seed seeds the simulation's private random source.
	Seed int64
	// Policy is the initial lever state.
	Policy Policy
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Bins:   200,
		Seed:   1,
		Policy: DefaultPolicy(),
	}
}

// Sim is the deterministic simulation core. It has no goroutines, mutexes,
// channels, or time calls; the host drives it one fixed-size tick at a time
// and reads snapshots between ticks.
type Sim struct {
	axis Axis
	pol  Policy
	rng  *rand.Rand

	agents  []Agent
	news    News
	breaker Breaker

	bid []float64
	ask []float64

	// Quoted extents, maintained by the book rebuild so the matcher scans a
	// bounded neighborhood instead of the whole axis.
	hiBid int
	loAsk int

	price        float64
	velocity     float64
	lastTradeBin int

	tape    TradeTape
	history *PriceHistory

	tick uint64
}

// New creates a Sim with a fresh population and price at the axis midpoint.
func New(cfg Config) *Sim {
	axis := NewAxis(cfg.Bins)
	pol := cfg.Policy.Normalize()

	s := &Sim{
		axis:    axis,
		pol:     pol,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		bid:     make([]float64, axis.Bins),
		ask:     make([]float64, axis.Bins),
		history: NewPriceHistory(historyCap),
	}
	s.agents = NewPopulation(pol.Population, axis, s.rng)
	s.price = axis.Mid()
	s.lastTradeBin = axis.NearestBin(s.price)
	s.hiBid = -1
	s.loAsk = axis.Bins
	return s
}

// Step advances the simulation by dt seconds: news, breaker, book rebuild,
// match. The whole pipeline completes synchronously.
func (s *Sim) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.tick++

	s.news.Step(dt, s.pol, s.rng)

	if s.breaker.Step(dt, s.price, s.pol) {
		// A halt frightens the population even though it cannot move price.
		for i := range s.agents {
			s.agents[i].Fear = clampF(s.agents[i].Fear+breakerFearBump, 0, 1)
		}
	}

	s.buildBook(dt)
	s.match(dt)
}

// SetPolicy swaps the lever state, coercing it first. A population change
// recreates the agent set wholesale.
func (s *Sim) SetPolicy(p Policy) {
	p = p.Normalize()
	if p.Population != len(s.agents) {
		s.agents = NewPopulation(p.Population, s.axis, s.rng)
	}
	s.pol = p
}

// Policy returns the current lever state.
func (s *Sim) Policy() Policy { return s.pol }

// Resize discards the population and samples a fresh one. Unlike Reset, the
// new agents get fresh roles and fixed scalars.
func (s *Sim) Resize(n int) {
	s.pol.Population = clampI(n, 1, 20000)
	s.agents = NewPopulation(s.pol.Population, s.axis, s.rng)
}

// Reset reseeds beliefs in place (roles and fixed scalars survive), clears
// tape, history, news and breaker, and recenters the price. Must only be
// called between ticks.
func (s *Sim) Reset() {
	resetBeliefs(s.agents, s.axis, s.rng)
	s.news.Reset()
	s.breaker.Reset()
	s.tape.Reset()
	s.history.Reset()
	for i := range s.bid {
		s.bid[i] = 0
		s.ask[i] = 0
	}
	s.hiBid = -1
	s.loAsk = s.axis.Bins
	s.price = s.axis.Mid()
	s.velocity = 0
	s.lastTradeBin = s.axis.NearestBin(s.price)
}

// TriggerNews starts a manual pulse; reports whether one actually started.
func (s *Sim) TriggerNews(dir float64) bool {
	return s.news.Trigger(dir, s.rng)
}

// Price returns the current continuous price.
func (s *Sim) Price() float64 { return s.price }

// Velocity returns the current price velocity in bins per second.
func (s *Sim) Velocity() float64 { return s.velocity }

// Axis returns the price axis.
func (s *Sim) Axis() Axis { return s.axis }

// Agents exposes the population for inspection. The slice is owned by the
// core; hosts must treat it as read-only.
func (s *Sim) Agents() []Agent { return s.agents }

// BreakerState is the display form of the circuit breaker.
type BreakerState struct {
	Frozen   float64
	Cooldown float64
	Halted   bool
}

// Snapshot is a read-only copy of everything a host renders per frame.
type Snapshot struct {
	Tick     uint64
	Bins     int
	Price    float64
	Velocity float64

	Bid []float64
	Ask []float64

	BestBid int // bin index, -1 when empty
	BestAsk int
	Spread  float64 // bins; 0 when either side is empty

	Tape    []Print
	History []float64

	News    News
	Breaker BreakerState

	Policy     Policy
	Population int
}

// Snapshot copies the current state for the host. Safe to hold across ticks.
func (s *Sim) Snapshot() Snapshot {
	bid := make([]float64, len(s.bid))
	ask := make([]float64, len(s.ask))
	copy(bid, s.bid)
	copy(ask, s.ask)

	bestBid := s.bestBidBin()
	bestAsk := s.bestAskBin()
	spread := 0.0
	if bestBid >= 0 && bestAsk >= 0 {
		spread = float64(bestAsk - bestBid)
	}

	return Snapshot{
		Tick:       s.tick,
		Bins:       s.axis.Bins,
		Price:      s.price,
		Velocity:   s.velocity,
		Bid:        bid,
		Ask:        ask,
		BestBid:    bestBid,
		BestAsk:    bestAsk,
		Spread:     spread,
		Tape:       s.tape.Prints(),
		History:    s.history.Last(s.history.Count()),
		News:       s.news,
		Breaker:    BreakerState{Frozen: s.breaker.Frozen, Cooldown: s.breaker.Cooldown, Halted: s.breaker.Halted()},
		Policy:     s.pol,
		Population: len(s.agents),
	}
}
