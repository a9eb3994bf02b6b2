package game

import (
	"sync"

	simservice "github.com/zappabad/marketlab/internal/sim/service"
)

// Game owns the simulation subsystems and manages their lifecycle.
type Game struct {
	Sim *simservice.Service

	cfg Config
	mu  sync.Mutex
}

// NewGame creates a new Game with the given configuration.
func NewGame(cfg Config) *Game {
	g := &Game{cfg: cfg}

	// Create the simulation service; it starts ticking immediately.
	g.Sim = simservice.NewService(cfg.SimConfig)

	return g
}

// Close shuts down all game subsystems.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Sim != nil {
		g.Sim.Close()
	}
}
