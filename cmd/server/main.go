package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/zappabad/marketlab/internal/game"
	"github.com/zappabad/marketlab/internal/stream"
)

const defaultListenAddr = ":8080"

func main() {
	listenAddr := getEnv("LISTEN_ADDR", defaultListenAddr)

	cfg := game.DefaultConfig()
	cfg.SimConfig.Sim.Bins = int(parseIntEnv("BINS", int64(cfg.SimConfig.Sim.Bins)))
	cfg.SimConfig.Sim.Seed = parseIntEnv("SEED", cfg.SimConfig.Sim.Seed)
	cfg.SimConfig.Sim.Policy.Population = int(parseIntEnv("POPULATION", int64(cfg.SimConfig.Sim.Policy.Population)))
	cfg.SimConfig.TickRate = int(parseIntEnv("TICK_RATE", int64(cfg.SimConfig.TickRate)))

	g := game.NewGame(cfg)
	defer g.Close()

	streamCfg := stream.DefaultConfig()
	streamCfg.AuthToken = os.Getenv("AUTH_TOKEN")
	streamCfg.CORSOrigin = getEnv("CORS_ORIGIN", streamCfg.CORSOrigin)

	srv := stream.NewServer(g.Sim, streamCfg)
	defer srv.Close()

	log.Printf("listening on %s, %d agents at %d ticks/s",
		listenAddr, cfg.SimConfig.Sim.Policy.Population, cfg.SimConfig.TickRate)
	if err := http.ListenAndServe(listenAddr, srv.Routes()); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
