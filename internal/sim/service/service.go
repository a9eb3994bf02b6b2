package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/marketlab/internal/sim/core"
	"github.com/zappabad/marketlab/internal/sim/view"
)

// command types
type cmdType int

const (
	cmdSetPolicy cmdType = iota
	cmdReset
	cmdResize
	cmdTriggerNews
	cmdPause
)

type command struct {
	typ    cmdType
	policy core.Policy
	n      int
	dir    float64
	pause  bool
	respCh chan<- response
}

type response struct {
	triggered bool
}

// Service owns the simulation core and drives it with a fixed-dt tick loop.
// All mutation goes through the command channel, so commands land exactly on
// tick boundaries and the core never sees concurrent writers.
type Service struct {
	cfg  Config
	sim  *core.Sim
	view *view.FrameView

	cmdCh  chan command
	frames chan core.Snapshot

	droppedFrames atomic.Int64
	paused        atomic.Bool

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewService creates the service and starts the tick loop.
func NewService(cfg Config) *Service {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = DefaultConfig().CommandBuffer
	}
	if cfg.FrameBuffer <= 0 {
		cfg.FrameBuffer = DefaultConfig().FrameBuffer
	}

	s := &Service{
		cfg:    cfg,
		sim:    core.New(cfg.Sim),
		view:   view.NewFrameView(),
		cmdCh:  make(chan command, cfg.CommandBuffer),
		frames: make(chan core.Snapshot, cfg.FrameBuffer),
		closed: make(chan struct{}),
	}

	// Seed the view so readers see a real frame before the first tick.
	s.view.Apply(s.sim.Snapshot())

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *Service) run() {
	defer s.wg.Done()
	defer close(s.frames)

	dt := 1.0 / float64(s.cfg.TickRate)
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case cmd := <-s.cmdCh:
			s.processCommand(cmd)
		case <-ticker.C:
			if s.paused.Load() {
				continue
			}
			s.sim.Step(dt)
			s.publish(s.sim.Snapshot())
		}
	}
}

func (s *Service) processCommand(cmd command) {
	var resp response

	switch cmd.typ {
	case cmdSetPolicy:
		s.sim.SetPolicy(cmd.policy)
	case cmdReset:
		s.sim.Reset()
		s.publish(s.sim.Snapshot())
	case cmdResize:
		s.sim.Resize(cmd.n)
	case cmdTriggerNews:
		resp.triggered = s.sim.TriggerNews(cmd.dir)
	case cmdPause:
		s.paused.Store(cmd.pause)
	}

	if cmd.respCh != nil {
		cmd.respCh <- resp
	}
}

func (s *Service) publish(snap core.Snapshot) {
	// The view is authoritative; the frames channel is best-effort fan-out.
	s.view.Apply(snap)

	if s.cfg.DropFrames {
		select {
		case s.frames <- snap:
		default:
			s.droppedFrames.Add(1)
		}
	} else {
		select {
		case s.frames <- snap:
		case <-s.closed:
		}
	}
}

func (s *Service) send(ctx context.Context, cmd command) (response, error) {
	respCh := make(chan response, 1)
	cmd.respCh = respCh

	select {
	case <-s.closed:
		return response{}, context.Canceled
	case <-ctx.Done():
		return response{}, ctx.Err()
	case s.cmdCh <- cmd:
	}

	select {
	case <-s.closed:
		return response{}, context.Canceled
	case <-ctx.Done():
		return response{}, ctx.Err()
	case resp := <-respCh:
		return resp, nil
	}
}

// SetPolicy swaps the lever state at the next tick boundary.
func (s *Service) SetPolicy(ctx context.Context, p core.Policy) error {
	_, err := s.send(ctx, command{typ: cmdSetPolicy, policy: p})
	return err
}

// Reset reseeds the market between ticks.
func (s *Service) Reset(ctx context.Context) error {
	_, err := s.send(ctx, command{typ: cmdReset})
	return err
}

// Resize recreates the population with n agents.
func (s *Service) Resize(ctx context.Context, n int) error {
	_, err := s.send(ctx, command{typ: cmdResize, n: n})
	return err
}

// TriggerNews starts a manual pulse; reports whether one actually started.
func (s *Service) TriggerNews(ctx context.Context, dir float64) (bool, error) {
	resp, err := s.send(ctx, command{typ: cmdTriggerNews, dir: dir})
	return resp.triggered, err
}

// SetPaused withholds ticks without touching core state.
func (s *Service) SetPaused(ctx context.Context, pause bool) error {
	_, err := s.send(ctx, command{typ: cmdPause, pause: pause})
	return err
}

// Snapshot returns the latest frame (from view).
func (s *Service) Snapshot() core.Snapshot {
	return s.view.Latest()
}

// Stats returns derived display statistics (from view).
func (s *Service) Stats() view.Stats {
	return s.view.Stats()
}

// Frames returns the external frames channel for subscribers.
func (s *Service) Frames() <-chan core.Snapshot {
	return s.frames
}

// DroppedFrames returns the count of dropped frames.
func (s *Service) DroppedFrames() int64 {
	return s.droppedFrames.Load()
}

// Close shuts down the service and waits for the tick loop to finish.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}
