package core

import "math/rand"

// Role selects which behavioral rule an agent runs each tick.
type Role uint8

const (
	RoleTrend Role = iota
	RoleContrarian
	RoleMaker
	RoleSeeker
	RoleScared
	roleCount
)

func (r Role) String() string {
	switch r {
	case RoleTrend:
		return "TREND"
	case RoleContrarian:
		return "CONTRARIAN"
	case RoleMaker:
		return "MAKER"
	case RoleSeeker:
		return "SEEKER"
	case RoleScared:
		return "SCARED"
	default:
		return "UNKNOWN"
	}
}

// roleWeights is the fixed role-mix distribution, renormalized at sampling.
var roleWeights = [roleCount]float64{
	RoleTrend:      0.28,
	RoleContrarian: 0.22,
	RoleMaker:      0.24,
	RoleSeeker:     0.16,
	RoleScared:     0.10,
}

// Agent is one market participant. Risk, SizeScale, Alpha, Impatience and
// FeintBias are fixed at creation; Fair, Inventory, Momentum and Fear are
// mutated every tick and reseeded on a market reset.
type Agent struct {
	Role Role

	Fair      float64
	Inventory float64
	Momentum  float64
	Fear      float64

	Risk       float64
	SizeScale  float64
	Alpha      float64
	Impatience float64
	FeintBias  float64
}

func pickRole(rng *rand.Rand) Role {
	total := 0.0
	for _, w := range roleWeights {
		total += w
	}
	x := rng.Float64() * total
	for r, w := range roleWeights {
		x -= w
		if x < 0 {
			return Role(r)
		}
	}
	return Role(roleCount - 1)
}

// seedBeliefs reseeds the mutable state near the axis midpoint.
func (a *Agent) seedBeliefs(axis Axis, rng *rand.Rand) {
	a.Fair = axis.ClampPrice(axis.Mid() + rng.NormFloat64()*float64(axis.Bins)*0.05)
	a.Inventory = rng.NormFloat64() * 2
	a.Momentum = 0
	a.Fear = rng.Float64() * 0.15
}

// NewPopulation samples n fresh agents. Old agents are never migrated; a
// population resize discards and recreates the whole set.
func NewPopulation(n int, axis Axis, rng *rand.Rand) []Agent {
	agents := make([]Agent, n)
	for i := range agents {
		a := &agents[i]
		a.Role = pickRole(rng)
		a.Risk = 0.5 + rng.Float64()
		a.SizeScale = 0.6 + 1.2*rng.Float64()
		a.Alpha = 0.02 + 0.1*rng.Float64()
		a.Impatience = rng.Float64()
		a.FeintBias = 0.03 * rng.Float64()
		a.seedBeliefs(axis, rng)
	}
	return agents
}

// resetBeliefs reseeds mutable state in place, keeping role and fixed scalars.
func resetBeliefs(agents []Agent, axis Axis, rng *rand.Rand) {
	for i := range agents {
		agents[i].seedBeliefs(axis, rng)
	}
}
