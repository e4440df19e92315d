package orchestrator

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/overmind-labs/sc2copilot/internal/config"
	"github.com/overmind-labs/sc2copilot/internal/gamestate"
	"github.com/overmind-labs/sc2copilot/internal/reminder"
	"github.com/overmind-labs/sc2copilot/internal/screen"
	"github.com/overmind-labs/sc2copilot/internal/syncx"
	"github.com/overmind-labs/sc2copilot/internal/trace"
)

// FrameSource provides region crops of the current screen frame.
type FrameSource interface {
	Refresh() bool
	Region(name string) (image.Image, bool)
	Close()
}

// TextExtractor turns a region crop into text.
type TextExtractor interface {
	ExtractText(ctx context.Context, region string, img image.Image) string
}

// NotificationToggle controls desktop notification delivery at runtime.
type NotificationToggle interface {
	SetEnabled(on bool)
	Enabled() bool
}

// playerState holds facts the HUD cannot be read for. The overlay
// client keeps them current over the REST API.
type playerState struct {
	Workers   int
	Bases     int
	Commander string
}

// Manager runs the poll loop and owns engine access.
type Manager struct {
	cfg    *config.Config
	frames FrameSource
	ocr    TextExtractor
	synth  *gamestate.Synthesizer
	toggle NotificationToggle

	// engineMu serializes the engine between the poll loop and the
	// server passthroughs; the engine itself is not concurrency safe.
	engineMu sync.Mutex
	engine   *reminder.Engine

	latest *syncx.RWGuard[gamestate.Snapshot]
	player *syncx.RWGuard[playerState]

	advisoryCh chan reminder.Advisory
	stopCh     chan struct{}
	cycles     int
}

// NewManager wires the poll loop around its collaborators.
func NewManager(cfg *config.Config, frames FrameSource, ocr TextExtractor, engine *reminder.Engine, toggle NotificationToggle) *Manager {
	synth := gamestate.NewSynthesizer(gamestate.Thresholds{
		SupplyBlockRatio:  cfg.SupplyBlockRatio,
		OverflowThreshold: cfg.OverflowThreshold,
	})
	return &Manager{
		cfg:        cfg,
		frames:     frames,
		ocr:        ocr,
		synth:      synth,
		engine:     engine,
		toggle:     toggle,
		latest:     syncx.NewGuard(gamestate.Snapshot{}),
		player:     syncx.NewGuard(playerState{Commander: cfg.Commander}),
		advisoryCh: make(chan reminder.Advisory, AdvisoryBufferSize),
		stopCh:     make(chan struct{}),
	}
}

// EngineConfig maps application settings onto decision thresholds.
func EngineConfig(cfg *config.Config) reminder.Config {
	rc := reminder.DefaultConfig()
	rc.DefaultCooldown = time.Duration(cfg.DefaultCooldown * float64(time.Second))
	rc.SupplyWarnRatio = cfg.SupplyWarnRatio
	rc.SupplyCriticalRatio = cfg.SupplyCriticalRatio
	rc.OverflowThreshold = cfg.OverflowThreshold
	rc.ResourceGateSeconds = cfg.ResourceGateSeconds
	rc.AttackWaveTimings = cfg.AttackWaveTimings
	rc.AttackWaveLead = cfg.AttackWaveLead

	// Standard timings keep their tuned messages; custom timings get
	// a generic one.
	defaults := rc.UpgradeTimings
	timings := make([]reminder.UpgradeTiming, 0, len(cfg.UpgradeTimings))
	for i, secs := range cfg.UpgradeTimings {
		msg := fmt.Sprintf("Consider your next upgrade tier around %d:%02d", secs/60, secs%60)
		if i < len(defaults) && defaults[i].Seconds == secs {
			msg = defaults[i].Message
		}
		timings = append(timings, reminder.UpgradeTiming{Seconds: secs, Message: msg})
	}
	rc.UpgradeTimings = timings
	return rc
}

// Start begins the poll loop.
func (m *Manager) Start(ctx context.Context) {
	go m.pollLoop(ctx)
}

// Stop halts the poll loop and releases the frame source.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.frames.Close()
}

// Advisories returns the channel of freshly emitted advisories.
func (m *Manager) Advisories() <-chan reminder.Advisory {
	return m.advisoryCh
}

func (m *Manager) pollLoop(ctx context.Context) {
	interval := time.Duration(m.cfg.PollInterval * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("poll loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

// cycle runs one capture-extract-evaluate pass.
func (m *Manager) cycle(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "poll_cycle")
	defer span.End()

	if !m.frames.Refresh() {
		return
	}

	resourceText := m.regionText(ctx, screen.RegionResources)
	timerText := m.regionText(ctx, screen.RegionTimer)

	// The resource bar carries minerals, gas and the supply counter,
	// so one extraction feeds both parsers. The supply parser needs
	// just the used/cap token or the mineral digits bleed into it.
	snap := m.synth.BuildSnapshot(resourceText, supplyField(resourceText), timerText, m.cfg.Mode)
	m.latest.Set(snap)

	p := m.player.Get()
	in := reminder.Input{
		Snapshot:    snap,
		WorkerCount: p.Workers,
		BaseCount:   p.Bases,
		Commander:   p.Commander,
	}

	m.engineMu.Lock()
	advisories := m.engine.Evaluate(in)
	m.engineMu.Unlock()

	for _, a := range advisories {
		select {
		case m.advisoryCh <- a:
		default:
			slog.Warn("advisory channel full, dropping", "type", a.Type)
		}
	}

	m.cycles++
	if m.cfg.StatusLogEvery > 0 && m.cycles%m.cfg.StatusLogEvery == 0 {
		trace.Logger(ctx).Info("status",
			"cycles", m.cycles,
			"game_time", snap.GameTime,
			"minerals", snap.Resources.Minerals,
			"gas", snap.Resources.Gas,
			"supply", fmt.Sprintf("%d/%d", snap.Supply.Used, snap.Supply.Cap),
			"warnings", len(snap.Warnings))
	}
}

// supplyField returns the last whitespace-separated token containing a
// slash, which is the supply counter on the resource bar. Falls back to
// the raw text when no such token exists so the parser records a miss.
func supplyField(text string) string {
	fields := strings.Fields(text)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.Contains(fields[i], "/") {
			return fields[i]
		}
	}
	return text
}

func (m *Manager) regionText(ctx context.Context, name string) string {
	img, ok := m.frames.Region(name)
	if !ok {
		return ""
	}
	return m.ocr.ExtractText(ctx, name, img)
}

// Snapshot returns the most recent game state.
func (m *Manager) Snapshot() gamestate.Snapshot {
	return m.latest.Get()
}

// History returns up to n recent advisories, oldest first.
func (m *Manager) History(n int) []reminder.Advisory {
	m.engineMu.Lock()
	defer m.engineMu.Unlock()
	return m.engine.History(n)
}

// ResetCooldowns clears all advisory cooldowns.
func (m *Manager) ResetCooldowns() {
	m.engineMu.Lock()
	defer m.engineMu.Unlock()
	m.engine.ResetCooldowns()
}

// SetNotifications toggles desktop notification delivery.
func (m *Manager) SetNotifications(on bool) {
	if m.toggle != nil {
		m.toggle.SetEnabled(on)
	}
}

// NotificationsEnabled reports the delivery toggle state.
func (m *Manager) NotificationsEnabled() bool {
	if m.toggle == nil {
		return false
	}
	return m.toggle.Enabled()
}

// SetPlayerState updates worker and base counts supplied by the client.
func (m *Manager) SetPlayerState(workers, bases int) {
	m.player.Write(func(p *playerState) {
		p.Workers = workers
		p.Bases = bases
	})
}

// SetCommander switches the active commander for tip lookups.
func (m *Manager) SetCommander(name string) {
	m.player.Write(func(p *playerState) { p.Commander = name })
}

// PlayerState returns the client-supplied counts and commander.
func (m *Manager) PlayerState() (workers, bases int, commander string) {
	p := m.player.Get()
	return p.Workers, p.Bases, p.Commander
}
