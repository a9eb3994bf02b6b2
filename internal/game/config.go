package game

import (
	simservice "github.com/zappabad/marketlab/internal/sim/service"
)

// Config holds configuration for the game.
type Config struct {
	// SimConfig is the configuration for the simulation service.
	SimConfig simservice.Config
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		SimConfig: simservice.DefaultConfig(),
	}
}
