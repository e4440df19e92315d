package server

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/overmind-labs/sc2copilot/internal/config"
	"github.com/overmind-labs/sc2copilot/internal/gamestate"
	"github.com/overmind-labs/sc2copilot/internal/orchestrator"
	"github.com/overmind-labs/sc2copilot/internal/reminder"
)

type staticFrames struct{}

func (staticFrames) Refresh() bool                     { return false }
func (staticFrames) Region(string) (image.Image, bool) { return nil, false }
func (staticFrames) Close()                            {}

type silentNotifier struct{}

func (silentNotifier) Notify(string, string, reminder.Urgency) error { return nil }

type toggle struct{ on bool }

func (t *toggle) SetEnabled(on bool) { t.on = on }
func (t *toggle) Enabled() bool      { return t.on }

func testManager(t *testing.T) (*orchestrator.Manager, *toggle) {
	t.Helper()
	cfg := &config.Config{
		PollInterval:        2,
		Mode:                gamestate.ModeCoop,
		DefaultCooldown:     30,
		SupplyWarnRatio:     0.85,
		SupplyCriticalRatio: 0.95,
		SupplyBlockRatio:    0.90,
		OverflowThreshold:   1000,
		ResourceGateSeconds: 180,
		UpgradeTimings:      []int{300, 480, 720},
		AttackWaveTimings:   []int{240, 480, 720, 960},
		AttackWaveLead:      30,
	}
	engine := reminder.NewEngine(orchestrator.EngineConfig(cfg), silentNotifier{})
	tg := &toggle{on: true}
	mgr := orchestrator.NewManager(cfg, staticFrames{}, nil, engine, tg)
	return mgr, tg
}

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := &rateLimiter{}

	for i := 0; i < RateLimitMessages; i++ {
		if !rl.allow() {
			t.Fatalf("message %d should be allowed", i)
		}
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl := &rateLimiter{}

	for i := 0; i < RateLimitMessages; i++ {
		rl.allow()
	}
	if rl.allow() {
		t.Error("message over limit should be blocked")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := &rateLimiter{}

	// Stale timestamps outside the window should be pruned.
	old := time.Now().Add(-2 * RateLimitWindow)
	for i := 0; i < RateLimitMessages; i++ {
		rl.timestamps = append(rl.timestamps, old)
	}

	if !rl.allow() {
		t.Error("expired timestamps should not count against the limit")
	}
}

func TestHandleState(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	req := httptest.NewRequest("GET", "/api/state", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap gamestate.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Supply.Cap != 0 {
		// Manager has not polled yet; the zero snapshot is expected.
		t.Errorf("supply cap = %d, want 0 before first cycle", snap.Supply.Cap)
	}
}

func TestHandleHistoryEmpty(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	req := httptest.NewRequest("GET", "/api/history", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Advisories []reminder.Advisory `json:"advisories"`
		Count      int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 0 || body.Advisories == nil {
		t.Errorf("body = %+v, want empty non-nil list", body)
	}
}

func TestHandleHistoryRejectsBadLimit(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	for _, limit := range []string{"abc", "-5", "0"} {
		req := httptest.NewRequest("GET", "/api/history?limit="+limit, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestHandleCooldownReset(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	req := httptest.NewRequest("POST", "/api/cooldowns/reset", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cooldowns_reset") {
		t.Errorf("body = %q, want cooldowns_reset status", rec.Body.String())
	}
}

func TestHandleNotificationsToggle(t *testing.T) {
	mgr, tg := testManager(t)
	srv := New(mgr)

	req := httptest.NewRequest("POST", "/api/notifications/disable", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)
	if tg.on {
		t.Error("disable endpoint should turn notifications off")
	}

	req = httptest.NewRequest("POST", "/api/notifications/enable", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)
	if !tg.on {
		t.Error("enable endpoint should turn notifications on")
	}
}

func TestHandlePlayerUpdate(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	body := strings.NewReader(`{"workers": 18, "bases": 2, "commander": "kerrigan"}`)
	req := httptest.NewRequest("POST", "/api/player", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	workers, bases, commander := mgr.PlayerState()
	if workers != 18 || bases != 2 || commander != "kerrigan" {
		t.Errorf("player state = (%d, %d, %q), want (18, 2, kerrigan)", workers, bases, commander)
	}
}

func TestHandlePlayerRejectsNegativeCounts(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	body := strings.NewReader(`{"workers": -1, "bases": 2}`)
	req := httptest.NewRequest("POST", "/api/player", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlePlayerRejectsBadJSON(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	req := httptest.NewRequest("POST", "/api/player", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCloseStopsStatePush(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	srv.Close()
	srv.Close() // idempotent

	select {
	case <-srv.pushDone:
	case <-time.After(time.Second):
		t.Fatal("state-push goroutine did not stop after Close")
	}
}

func TestCORSPreflight(t *testing.T) {
	mgr, _ := testManager(t)
	srv := New(mgr)

	req := httptest.NewRequest("OPTIONS", "/api/state", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
