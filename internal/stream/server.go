package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/zappabad/marketlab/internal/sim/core"
	simservice "github.com/zappabad/marketlab/internal/sim/service"
)

// Config holds configuration for the stream server.
type Config struct {
	// AuthToken, when non-empty, is required as a Bearer token on every route.
	AuthToken string
	// CORSOrigin is the allowed origin; defaults to "*".
	CORSOrigin string
	// SubscriberBuffer is the per-subscriber frame buffer; slow readers drop.
	SubscriberBuffer int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		CORSOrigin:       "*",
		SubscriberBuffer: 16,
	}
}

// Server exposes the simulation over HTTP and websocket: a snapshot
// endpoint, the policy/command surface, and a per-frame stream.
type Server struct {
	cfg      Config
	sim      *simservice.Service
	frameHub *hub[core.Snapshot]
	upgrader websocket.Upgrader

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewServer wires a server to a running simulation service and starts
// forwarding its frames to subscribers.
func NewServer(sim *simservice.Service, cfg Config) *Server {
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = DefaultConfig().CORSOrigin
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultConfig().SubscriberBuffer
	}

	s := &Server{
		cfg:      cfg,
		sim:      sim,
		frameHub: newHub[core.Snapshot](),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		closed:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.consumeFrames()
	return s
}

func (s *Server) consumeFrames() {
	defer s.wg.Done()
	for {
		select {
		case <-s.closed:
			return
		case snap, ok := <-s.sim.Frames():
			if !ok {
				return
			}
			s.frameHub.Broadcast(snap)
		}
	}
}

// Routes returns the HTTP handler for the server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/snapshot", s.withCORS(s.withAuth(http.HandlerFunc(s.handleSnapshot))))
	mux.Handle("/policy", s.withCORS(s.withAuth(http.HandlerFunc(s.handlePolicy))))
	mux.Handle("/news", s.withCORS(s.withAuth(http.HandlerFunc(s.handleNews))))
	mux.Handle("/reset", s.withCORS(s.withAuth(http.HandlerFunc(s.handleReset))))
	mux.Handle("/resize", s.withCORS(s.withAuth(http.HandlerFunc(s.handleResize))))
	mux.Handle("/ws/frames", s.withCORS(s.withAuth(http.HandlerFunc(s.handleFrameStream))))
	return mux
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthToken != "" && r.Header.Get("Authorization") != "Bearer "+s.cfg.AuthToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.sim.Snapshot())
}

type policyRequest struct {
	Tax             float64 `json:"tax"`
	SpreadFloor     float64 `json:"spreadFloor"`
	BreakerPct      float64 `json:"breakerPct"`
	BreakerWindow   float64 `json:"breakerWindow"`
	BreakerCooldown float64 `json:"breakerCooldown"`
	Rebate          float64 `json:"rebate"`
	NewsRate        float64 `json:"newsRate"`
	NewsStrength    float64 `json:"newsStrength"`
	NoiseScale      float64 `json:"noiseScale"`
	Population      int     `json:"population"`
	ReducedWorkload bool    `json:"reducedWorkload"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	p := core.Policy{
		Tax:             req.Tax,
		SpreadFloor:     req.SpreadFloor,
		BreakerPct:      req.BreakerPct,
		BreakerWindow:   req.BreakerWindow,
		BreakerCooldown: req.BreakerCooldown,
		Rebate:          req.Rebate,
		NewsRate:        req.NewsRate,
		NewsStrength:    req.NewsStrength,
		NoiseScale:      req.NoiseScale,
		Population:      req.Population,
		ReducedWorkload: req.ReducedWorkload,
	}
	if err := s.sim.SetPolicy(r.Context(), p); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, statusResponse{Status: "ok"})
}

type newsRequest struct {
	Dir float64 `json:"dir"`
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req newsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	triggered, err := s.sim.TriggerNews(r.Context(), req.Dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if !triggered {
		writeJSON(w, statusResponse{Status: "pulse already active"})
		return
	}
	writeJSON(w, statusResponse{Status: "ok"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.sim.Reset(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, statusResponse{Status: "ok"})
}

type resizeRequest struct {
	Population int `json:"population"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := s.sim.Resize(r.Context(), req.Population); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, statusResponse{Status: "ok"})
}

func (s *Server) handleFrameStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sub := s.frameHub.Subscribe(s.cfg.SubscriberBuffer)
	defer s.frameHub.Unsubscribe(sub)

	for {
		select {
		case <-s.closed:
			return
		case snap, ok := <-sub.ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// Close stops the frame forwarder. The caller owns the HTTP listener.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}
