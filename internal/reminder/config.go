package reminder

import "time"

// Game phases, bucketed by elapsed time.
const (
	PhaseEarly = "early"
	PhaseMid   = "mid"
	PhaseLate  = "late"
)

// Phase boundaries in seconds.
const (
	earlyPhaseEnd = 300 // 5 min
	midPhaseEnd   = 720 // 12 min
)

// PhaseFor buckets elapsed game time into a phase.
func PhaseFor(elapsed int) string {
	switch {
	case elapsed < earlyPhaseEnd:
		return PhaseEarly
	case elapsed < midPhaseEnd:
		return PhaseMid
	default:
		return PhaseLate
	}
}

// UpgradeTiming pairs an elapsed-seconds threshold with its reminder text.
type UpgradeTiming struct {
	Seconds int
	Message string
}

// Config holds all decision thresholds and timings.
type Config struct {
	DefaultCooldown time.Duration
	// Cooldowns overrides the default per cooldown key.
	Cooldowns map[string]time.Duration

	SupplyWarnRatio     float64
	SupplyCriticalRatio float64

	OverflowThreshold   int
	ResourceGateSeconds int // overflow advisories suppressed before this

	IdealWorkersPerBase  map[string]int // phase -> workers per base
	WorkerTargetFraction float64        // fire below this fraction of target

	// UpgradeTimings must be ascending; at most one fires per cycle.
	UpgradeTimings []UpgradeTiming

	AttackWaveTimings []int // ascending wave arrival times, seconds
	AttackWaveLead    int   // warn this many seconds before a wave
}

// DefaultConfig returns the standard thresholds and timings.
func DefaultConfig() Config {
	return Config{
		DefaultCooldown:     30 * time.Second,
		SupplyWarnRatio:     0.85,
		SupplyCriticalRatio: 0.95,
		OverflowThreshold:   1000,
		ResourceGateSeconds: 180,
		IdealWorkersPerBase: map[string]int{
			PhaseEarly: 16,
			PhaseMid:   22,
			PhaseLate:  24, // saturated
		},
		WorkerTargetFraction: 0.8,
		UpgradeTimings: []UpgradeTiming{
			{Seconds: 300, Message: "Consider starting +1 attack/armor upgrades"},
			{Seconds: 480, Message: "Time for +2 upgrades if +1 is done"},
			{Seconds: 720, Message: "Consider +3 upgrades if +2 is complete"},
		},
		AttackWaveTimings: []int{240, 480, 720, 960},
		AttackWaveLead:    30,
	}
}

// cooldownFor returns the window for a key, falling back to the default.
func (c Config) cooldownFor(key string) time.Duration {
	if d, ok := c.Cooldowns[key]; ok {
		return d
	}
	return c.DefaultCooldown
}
