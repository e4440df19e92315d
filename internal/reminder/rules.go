package reminder

import (
	"fmt"

	"github.com/overmind-labs/sc2copilot/internal/gamestate"
)

// candidate is a single advisory a rule wants to fire, pending its
// cooldown check.
type candidate struct {
	key     string // cooldown key
	title   string
	message string
	urgency Urgency
}

// rule evaluates one advisory category against the cycle input. Rules are
// independent and non-exclusive: several categories can fire per cycle.
// A firstMatch rule fires at most one candidate per cycle: candidates are
// scanned in order and the scan stops at the first one whose cooldown is
// consulted, fired or not.
type rule struct {
	category   string
	firstMatch bool
	evaluate   func(cfg Config, in Input) []candidate
}

func (e *Engine) buildRules() []rule {
	return []rule{
		{category: CategorySupply, evaluate: supplyRule},
		{category: CategoryResources, evaluate: resourceRule},
		{category: CategoryWorkers, evaluate: workerRule},
		{category: CategoryUpgrades, firstMatch: true, evaluate: upgradeRule},
		{category: CategoryAttackWave, evaluate: attackWaveRule},
		{category: CategoryTips, evaluate: e.tipRule},
	}
}

// supplyRule has two tiers; critical supersedes warning when both hold.
func supplyRule(cfg Config, in Input) []candidate {
	used, cap := in.Snapshot.Supply.Used, in.Snapshot.Supply.Cap
	if cap == 0 {
		return nil
	}
	ratio := float64(used) / float64(cap)

	switch {
	case ratio >= cfg.SupplyCriticalRatio:
		return []candidate{{
			key:     "supply_critical",
			title:   "Supply Critical",
			message: fmt.Sprintf("SUPPLY BLOCKED! %d/%d", used, cap),
			urgency: UrgencyCritical,
		}}
	case ratio >= cfg.SupplyWarnRatio:
		return []candidate{{
			key:     "supply_warning",
			title:   "Build Supply",
			message: fmt.Sprintf("Supply Warning: %d/%d", used, cap),
			urgency: UrgencyNormal,
		}}
	}
	return nil
}

// resourceRule fires per-resource overflow advisories, suppressed early
// game while banking is normal.
func resourceRule(cfg Config, in Input) []candidate {
	if in.Snapshot.Elapsed < cfg.ResourceGateSeconds {
		return nil
	}

	var out []candidate
	if m := in.Snapshot.Resources.Minerals; m > cfg.OverflowThreshold {
		out = append(out, candidate{
			key:     "mineral_overflow",
			title:   "Resource Alert",
			message: fmt.Sprintf("High minerals: %d - Expand or build army!", m),
			urgency: UrgencyNormal,
		})
	}
	if g := in.Snapshot.Resources.Gas; g > cfg.OverflowThreshold {
		out = append(out, candidate{
			key:     "gas_overflow",
			title:   "Resource Alert",
			message: fmt.Sprintf("High gas: %d - Tech up or build advanced units!", g),
			urgency: UrgencyNormal,
		})
	}
	return out
}

// workerRule compares the worker count against the phase-scaled target.
// Disabled until the caller supplies a base count.
func workerRule(cfg Config, in Input) []candidate {
	if in.BaseCount <= 0 {
		return nil
	}
	phase := PhaseFor(in.Snapshot.Elapsed)
	perBase, ok := cfg.IdealWorkersPerBase[phase]
	if !ok {
		perBase = cfg.IdealWorkersPerBase[PhaseMid]
	}
	target := perBase * in.BaseCount
	if float64(in.WorkerCount) >= cfg.WorkerTargetFraction*float64(target) {
		return nil
	}
	return []candidate{{
		key:     "worker_production",
		title:   "Worker Production",
		message: fmt.Sprintf("Build workers! Current: %d, Target: ~%d", in.WorkerCount, target),
		urgency: UrgencyNormal,
	}}
}

// upgradeRule lists every timing already reached, ascending. Combined
// with firstMatch this fires at most one upgrade advisory per cycle.
func upgradeRule(cfg Config, in Input) []candidate {
	var out []candidate
	for _, timing := range cfg.UpgradeTimings {
		if in.Snapshot.Elapsed < timing.Seconds {
			break
		}
		out = append(out, candidate{
			key:     fmt.Sprintf("upgrade_%d", timing.Seconds),
			title:   "Upgrade Reminder",
			message: timing.Message,
			urgency: UrgencyNormal,
		})
	}
	return out
}

// attackWaveRule warns shortly before each scheduled wave. Cooperative
// mode only; each wave has its own cooldown key so a warning is sent once.
func attackWaveRule(cfg Config, in Input) []candidate {
	if in.Snapshot.Mode != gamestate.ModeCoop {
		return nil
	}

	var out []candidate
	for i, waveTime := range cfg.AttackWaveTimings {
		until := waveTime - in.Snapshot.Elapsed
		if until <= 0 || until >= cfg.AttackWaveLead {
			continue
		}
		out = append(out, candidate{
			key:     fmt.Sprintf("amon_wave_%d", i),
			title:   "Amon Attack Warning",
			message: fmt.Sprintf("Attack wave incoming in %ds!", until),
			urgency: UrgencyCritical,
		})
	}
	return out
}

// tipRule surfaces a commander tip for the current phase. The cooldown
// key carries only the phase, so at most one tip fires per phase per
// window regardless of commander.
func (e *Engine) tipRule(cfg Config, in Input) []candidate {
	if e.tips == nil || in.Commander == "" {
		return nil
	}
	phase := PhaseFor(in.Snapshot.Elapsed)
	tip, ok := e.tips.Tip(in.Commander, phase)
	if !ok {
		return nil
	}
	return []candidate{{
		key:     "commander_tip_" + phase,
		title:   in.Commander + " Tip",
		message: tip,
		urgency: UrgencyLow,
	}}
}
