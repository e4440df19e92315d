package reminder

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/overmind-labs/sc2copilot/internal/gamestate"
)

// Input is everything the engine considers in one decision cycle. The
// snapshot is mandatory; worker and commander fields are optional extras
// whose zero values disable the corresponding rules.
type Input struct {
	Snapshot    gamestate.Snapshot
	WorkerCount int
	BaseCount   int // 0 disables the worker rule
	Commander   string
}

// Engine converts snapshots into cooldown-gated advisories. It exclusively
// owns its cooldown table and history, and is driven by a single logical
// thread of control; it is not safe for concurrent use.
type Engine struct {
	cfg      Config
	notifier Notifier
	tips     TipSource
	sink     Sink
	rules    []rule

	cooldowns map[string]time.Time
	history   []Advisory

	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// Option configures an Engine.
type Option func(*Engine)

// WithTips injects a commander tip source.
func WithTips(t TipSource) Option {
	return func(e *Engine) { e.tips = t }
}

// WithSink attaches a durable advisory sink.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a decision engine. The notifier is required; nil
// disables delivery but advisories are still recorded.
func NewEngine(cfg Config, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		notifier:  notifier,
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = e.buildRules()
	return e
}

// Evaluate runs every rule against the input and returns the advisories
// that fired this cycle. Categories are independent; several can fire in
// the same cycle.
func (e *Engine) Evaluate(in Input) []Advisory {
	var fired []Advisory
	for _, r := range e.rules {
		candidates := r.evaluate(e.cfg, in)
		for _, c := range candidates {
			if !e.clearCooldown(c.key) {
				if r.firstMatch {
					// The not-yet-cooled-down candidate blocks later ones
					// this cycle. Deliberate: one advisory per cycle for
					// low-urgency ordered categories.
					break
				}
				continue
			}
			fired = append(fired, e.emit(r.category, c))
			if r.firstMatch {
				break
			}
		}
	}
	return fired
}

// clearCooldown reports whether the key's window has elapsed and, if so,
// stamps it with the current time.
func (e *Engine) clearCooldown(key string) bool {
	now := e.now()
	if last, ok := e.cooldowns[key]; ok {
		if now.Sub(last) < e.cfg.cooldownFor(key) {
			return false
		}
	}
	e.cooldowns[key] = now
	return true
}

// emit is the single emission primitive: deliver the notification
// (failures logged, never propagated) and append to history regardless.
func (e *Engine) emit(category string, c candidate) Advisory {
	now := e.now()
	adv := Advisory{
		ID:        ulid.MustNew(ulid.Timestamp(now), e.entropy).String(),
		Timestamp: now,
		Type:      c.key,
		Category:  category,
		Title:     c.title,
		Message:   c.message,
		Urgency:   c.urgency,
	}

	if e.notifier != nil {
		if err := e.notifier.Notify(adv.Title, adv.Message, adv.Urgency); err != nil {
			slog.Error("notification delivery failed", "type", adv.Type, "error", err)
		} else {
			slog.Info("notification sent", "type", adv.Type, "title", adv.Title, "message", adv.Message)
		}
	}

	e.history = append(e.history, adv)

	if e.sink != nil {
		if err := e.sink.Append(adv); err != nil {
			slog.Warn("advisory sink append failed", "type", adv.Type, "error", err)
		}
	}
	return adv
}

// History returns the most recent n advisories, oldest first. n <= 0
// returns everything.
func (e *Engine) History(n int) []Advisory {
	if n <= 0 || n > len(e.history) {
		n = len(e.history)
	}
	out := make([]Advisory, n)
	copy(out, e.history[len(e.history)-n:])
	return out
}

// ResetCooldowns clears the cooldown table so every rule may fire again.
func (e *Engine) ResetCooldowns() {
	e.cooldowns = make(map[string]time.Time)
	slog.Info("all reminder cooldowns cleared")
}
