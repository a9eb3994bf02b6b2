package stream

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zappabad/marketlab/internal/sim/core"
	simservice "github.com/zappabad/marketlab/internal/sim/service"
)

func newTestService(t *testing.T) *simservice.Service {
	t.Helper()

	cfg := simservice.DefaultConfig()
	cfg.TickRate = 240
	cfg.Sim.Policy = core.DefaultPolicy()
	cfg.Sim.Policy.Population = 40
	cfg.Sim.Policy.NewsRate = 0

	svc := simservice.NewService(cfg)
	t.Cleanup(svc.Close)
	return svc
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()

	srv := NewServer(newTestService(t), cfg)
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestSnapshotEndpoint(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	resp, err := http.Get(ts.URL + "/snapshot")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var snap core.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Bins < 64 || snap.Bins%2 == 0 {
		t.Fatalf("snapshot bins = %d, want odd and >= 64", snap.Bins)
	}
	if snap.Population != 40 {
		t.Fatalf("population = %d, want 40", snap.Population)
	}
}

func TestSnapshotRejectsPost(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	resp, err := http.Post(ts.URL+"/snapshot", "application/json", nil)
	if err != nil {
		t.Fatalf("post snapshot: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestPolicyEndpoint(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	body, _ := json.Marshal(policyRequest{
		Tax:             0.02,
		SpreadFloor:     2,
		BreakerPct:      0.1,
		BreakerWindow:   3,
		BreakerCooldown: 4,
		NewsRate:        0,
		Population:      50,
	})
	resp, err := http.Post(ts.URL+"/policy", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post policy: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		sresp, err := http.Get(ts.URL + "/snapshot")
		if err != nil {
			t.Fatalf("get snapshot: %v", err)
		}
		var snap core.Snapshot
		if err := json.NewDecoder(sresp.Body).Decode(&snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		sresp.Body.Close()
		if snap.Policy.Tax == 0.02 && snap.Population == 50 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("policy not applied: tax=%v population=%d", snap.Policy.Tax, snap.Population)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPolicyBadBody(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	resp, err := http.Post(ts.URL+"/policy", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post policy: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestNewsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	post := func() statusResponse {
		resp, err := http.Post(ts.URL+"/news", "application/json", strings.NewReader(`{"dir":1}`))
		if err != nil {
			t.Fatalf("post news: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var sr statusResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		return sr
	}

	if sr := post(); sr.Status != "ok" {
		t.Fatalf("first trigger status = %q, want ok", sr.Status)
	}
	// The pulse lives for seconds; an immediate retrigger must be refused.
	if sr := post(); sr.Status == "ok" {
		t.Fatal("second trigger accepted while pulse active")
	}
}

func TestResetEndpoint(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	resp, err := http.Post(ts.URL+"/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("post reset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestResizeEndpoint(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	resp, err := http.Post(ts.URL+"/resize", "application/json", strings.NewReader(`{"population":75}`))
	if err != nil {
		t.Fatalf("post resize: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		sresp, err := http.Get(ts.URL + "/snapshot")
		if err != nil {
			t.Fatalf("get snapshot: %v", err)
		}
		var snap core.Snapshot
		if err := json.NewDecoder(sresp.Body).Decode(&snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		sresp.Body.Close()
		if snap.Population == 75 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("population = %d, want 75", snap.Population)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthToken = "secret"
	_, ts := newTestServer(t, cfg)

	resp, err := http.Get(ts.URL + "/snapshot")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/snapshot", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CORSOrigin = "https://lab.example"
	_, ts := newTestServer(t, cfg)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/policy", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://lab.example" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestFrameStream(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/frames"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var prev uint64
	for i := 0; i < 3; i++ {
		var snap core.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		if i > 0 && snap.Tick <= prev {
			t.Fatalf("ticks not advancing: %d then %d", prev, snap.Tick)
		}
		prev = snap.Tick
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := newHub[int]()
	sub := h.Subscribe(1)
	defer h.Unsubscribe(sub)

	h.Broadcast(1)
	h.Broadcast(2) // buffer full, dropped

	select {
	case v := <-sub.ch:
		if v != 1 {
			t.Fatalf("got %d, want 1", v)
		}
	default:
		t.Fatal("expected a buffered value")
	}
	select {
	case v := <-sub.ch:
		t.Fatalf("unexpected second value %d", v)
	default:
	}
}
