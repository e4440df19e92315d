// Package reminder decides which advisories to raise for a game state
// snapshot, gated by per-type cooldowns.
package reminder

import "time"

// Urgency levels for advisories.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Advisory categories.
const (
	CategorySupply     = "supply"
	CategoryResources  = "resources"
	CategoryWorkers    = "workers"
	CategoryUpgrades   = "upgrades"
	CategoryAttackWave = "attacks"
	CategoryTips       = "tips"
)

// Advisory is one emitted reminder.
type Advisory struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"` // cooldown key, e.g. "supply_critical"
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Urgency   Urgency   `json:"urgency"`
}

// Notifier delivers an advisory to the user. Delivery failure is never
// fatal to a decision cycle.
type Notifier interface {
	Notify(title, message string, urgency Urgency) error
}

// Sink receives every emitted advisory, e.g. for durable logging.
type Sink interface {
	Append(Advisory) error
}

// TipSource looks up a commander tip by name and phase. A miss is a
// normal outcome, not an error.
type TipSource interface {
	Tip(commander, phase string) (string, bool)
}
