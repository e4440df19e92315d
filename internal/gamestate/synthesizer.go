package gamestate

import (
	"log/slog"

	"github.com/overmind-labs/sc2copilot/internal/ocr"
)

// Thresholds configure warning derivation during synthesis.
type Thresholds struct {
	SupplyBlockRatio  float64 // supply_block above this used/cap ratio
	OverflowThreshold int     // per-resource overflow above this bank size
}

// DefaultThresholds returns the standard warning thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{SupplyBlockRatio: 0.90, OverflowThreshold: 1000}
}

// Synthesizer merges fresh per-region OCR text with cached readings into
// one immutable Snapshot per cycle. It exclusively owns its Cache.
type Synthesizer struct {
	cache      *Cache
	thresholds Thresholds
}

// NewSynthesizer creates a synthesizer with a fresh cache.
func NewSynthesizer(th Thresholds) *Synthesizer {
	return &Synthesizer{cache: NewCache(), thresholds: th}
}

// Reset clears the reading cache back to baselines.
func (s *Synthesizer) Reset() {
	s.cache.Reset()
}

// BuildSnapshot parses each region's OCR text independently. A successful
// parse updates the cache and is used directly; a miss falls back to the
// cached value. Warnings are derived last, in a fixed order, so identical
// inputs always produce identical snapshots.
func (s *Synthesizer) BuildSnapshot(resourceText, supplyText, timerText, mode string) Snapshot {
	if pair, ok := ocr.ParsePair(resourceText); ok {
		s.cache.SetResources(pair.A, pair.B)
	} else {
		slog.Debug("resource read missed, using cache", "text", resourceText)
	}
	if ratio, ok := ocr.ParseRatio(supplyText); ok {
		s.cache.SetSupply(ratio.Used, ratio.Cap)
	} else {
		slog.Debug("supply read missed, using cache", "text", supplyText)
	}
	if timer, ok := ocr.ParseTimer(timerText); ok {
		s.cache.SetGameTime(timer.Display)
	} else {
		slog.Debug("timer read missed, using cache", "text", timerText)
	}

	minerals, gas := s.cache.Resources()
	used, cap := s.cache.Supply()
	display := s.cache.GameTime()

	elapsed, ok := ocr.ParseClock(display)
	if !ok {
		// Conservative fallback: time-gated rules behave as if the game
		// just started rather than firing off a corrupt clock.
		slog.Warn("unparseable game time, treating as game start", "display", display)
		elapsed = 0
	}

	snap := Snapshot{
		Resources: Resources{Minerals: minerals, Gas: gas},
		Supply:    Supply{Used: used, Cap: cap},
		GameTime:  display,
		Elapsed:   elapsed,
		Mode:      mode,
	}
	snap.Warnings = s.deriveWarnings(snap)
	return snap
}

// deriveWarnings computes the warning set. Flags are appended in a fixed
// order and each condition is checked once, so duplicates cannot occur.
func (s *Synthesizer) deriveWarnings(snap Snapshot) []string {
	var warnings []string

	// cap == 0 means the supply read never succeeded; never blocked.
	if snap.Supply.Cap > 0 && snap.SupplyRatio() >= s.thresholds.SupplyBlockRatio {
		warnings = append(warnings, WarnSupplyBlock)
	}
	if snap.Resources.Minerals > s.thresholds.OverflowThreshold {
		warnings = append(warnings, WarnMineralsOverflow)
	}
	if snap.Resources.Gas > s.thresholds.OverflowThreshold {
		warnings = append(warnings, WarnGasOverflow)
	}
	return warnings
}
