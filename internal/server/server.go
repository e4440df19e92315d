package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/overmind-labs/sc2copilot/internal/gamestate"
	"github.com/overmind-labs/sc2copilot/internal/orchestrator"
	"github.com/overmind-labs/sc2copilot/internal/reminder"
	"github.com/overmind-labs/sc2copilot/internal/trace"
)

// Message types.
type Message struct {
	Type string `json:"type"`
}

type AdvisoryMessage struct {
	Type     string            `json:"type"`
	Advisory reminder.Advisory `json:"advisory"`
}

type StateMessage struct {
	Type  string             `json:"type"`
	State gamestate.Snapshot `json:"state"`
}

type PongMessage struct {
	Type string `json:"type"`
}

type AckMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

type RateLimitedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	// Prune old timestamps
	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	mgr        *orchestrator.Manager
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
	pushDone chan struct{}
}

// New creates a server around the orchestration manager and starts the
// push goroutines.
func New(mgr *orchestrator.Manager) *Server {
	s := &Server{
		mgr:        mgr,
		conns:      make(map[*websocket.Conn]struct{}),
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
		stopCh:     make(chan struct{}),
		pushDone:   make(chan struct{}),
	}

	go s.broadcastAdvisories()
	go s.pushState()

	return s
}

// Close stops the state-push goroutine. Safe to call more than once.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/cooldowns/reset", s.handleCooldownReset)
	mux.HandleFunc("POST /api/notifications/enable", s.handleNotifications(true))
	mux.HandleFunc("POST /api/notifications/disable", s.handleNotifications(false))
	mux.HandleFunc("POST /api/player", s.handlePlayer)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	// Get trace context from HTTP upgrade request
	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// Seed the fresh connection with the current state.
	_ = wsjson.Write(baseCtx, conn, StateMessage{Type: "state", State: s.mgr.Snapshot()})

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, RateLimitedMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		switch base.Type {
		case "ping":
			_ = wsjson.Write(baseCtx, conn, PongMessage{Type: "pong"})
		case "reset_cooldowns":
			s.mgr.ResetCooldowns()
			_ = wsjson.Write(baseCtx, conn, AckMessage{Type: "ack", Action: "reset_cooldowns"})
		}
	}
}

func (s *Server) broadcastAdvisories() {
	for adv := range s.mgr.Advisories() {
		msg := AdvisoryMessage{Type: "advisory", Advisory: adv}

		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn) {
				_ = wsjson.Write(context.Background(), c, msg)
			}(conn)
		}
		s.mu.RUnlock()
	}
}

func (s *Server) pushState() {
	defer close(s.pushDone)

	ticker := time.NewTicker(StatePushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		}

		s.mu.RLock()
		if len(s.conns) == 0 {
			s.mu.RUnlock()
			continue
		}
		msg := StateMessage{Type: "state", State: s.mgr.Snapshot()}
		for conn := range s.conns {
			go func(c *websocket.Conn) {
				_ = wsjson.Write(context.Background(), c, msg)
			}(conn)
		}
		s.mu.RUnlock()
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.mgr.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	history := s.mgr.History(limit)
	if history == nil {
		history = []reminder.Advisory{}
	}
	writeJSON(w, map[string]any{"advisories": history, "count": len(history)})
}

func (s *Server) handleCooldownReset(w http.ResponseWriter, r *http.Request) {
	s.mgr.ResetCooldowns()
	trace.Logger(r.Context()).Info("cooldowns reset via api")
	writeJSON(w, map[string]string{"status": "cooldowns_reset"})
}

func (s *Server) handleNotifications(enable bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mgr.SetNotifications(enable)
		status := "notifications_disabled"
		if enable {
			status = "notifications_enabled"
		}
		writeJSON(w, map[string]string{"status": status})
	}
}

// PlayerUpdate is the client-supplied portion of game state.
type PlayerUpdate struct {
	Workers   int     `json:"workers"`
	Bases     int     `json:"bases"`
	Commander *string `json:"commander,omitempty"`
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	var upd PlayerUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if upd.Workers < 0 || upd.Bases < 0 {
		http.Error(w, "counts must be non-negative", http.StatusBadRequest)
		return
	}

	s.mgr.SetPlayerState(upd.Workers, upd.Bases)
	if upd.Commander != nil {
		s.mgr.SetCommander(*upd.Commander)
	}
	writeJSON(w, map[string]string{"status": "player_updated"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
