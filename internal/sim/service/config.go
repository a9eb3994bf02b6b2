package service

import "github.com/zappabad/marketlab/internal/sim/core"

// Config holds configuration for the simulation service.
type Config struct {
	// Sim is the creation-time configuration of the core.
	Sim core.Config
	// TickRate is the number of fixed-size ticks per second.
	TickRate int
	// CommandBuffer is the size of the inbound command channel.
	CommandBuffer int
	// FrameBuffer is the size of the external frames channel.
	FrameBuffer int
	// DropFrames determines whether the frames channel drops on overflow.
	DropFrames bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Sim:           core.DefaultConfig(),
		TickRate:      60,
		CommandBuffer: 64,
		FrameBuffer:   256,
		DropFrames:    true,
	}
}
