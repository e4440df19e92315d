// Package config handles copilot configuration
package config

import (
	"github.com/caarlos0/env/v11"

	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
)

// Config holds all tunables. Every field has an environment override with
// the SC2COPILOT_ prefix.
type Config struct {
	HTTPAddr            string  `env:"HTTP_ADDR" envDefault:":8000"`
	PollInterval        float64 `env:"POLL_INTERVAL" envDefault:"2.0"` // seconds between capture cycles
	StatusLogEvery      int     `env:"STATUS_LOG_EVERY" envDefault:"10"`
	NotificationsOn     bool    `env:"NOTIFICATIONS" envDefault:"true"`
	TesseractPath       string  `env:"TESSERACT_PATH"`
	HistoryDBPath       string  `env:"HISTORY_DB_PATH"` // empty disables durable history
	CommanderDataPath   string  `env:"COMMANDER_DATA_PATH" envDefault:"data/commanders.json"`
	Commander           string  `env:"COMMANDER"`
	Mode                string  `env:"MODE" envDefault:"coop"`
	ScreenWidth         int     `env:"SCREEN_WIDTH" envDefault:"1920"`
	ScreenHeight        int     `env:"SCREEN_HEIGHT" envDefault:"1080"`
	DefaultCooldown     float64 `env:"COOLDOWN" envDefault:"30"` // seconds
	SupplyWarnRatio     float64 `env:"SUPPLY_WARN_RATIO" envDefault:"0.85"`
	SupplyCriticalRatio float64 `env:"SUPPLY_CRITICAL_RATIO" envDefault:"0.95"`
	SupplyBlockRatio    float64 `env:"SUPPLY_BLOCK_RATIO" envDefault:"0.90"`
	OverflowThreshold   int     `env:"OVERFLOW_THRESHOLD" envDefault:"1000"`
	ResourceGateSeconds int     `env:"RESOURCE_GATE_SECONDS" envDefault:"180"`
	UpgradeTimings      []int   `env:"UPGRADE_TIMINGS" envDefault:"300,480,720"`
	AttackWaveTimings   []int   `env:"ATTACK_WAVE_TIMINGS" envDefault:"240,480,720,960"`
	AttackWaveLead      int     `env:"ATTACK_WAVE_LEAD" envDefault:"30"` // seconds of warning before a wave
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	opts := env.Options{Prefix: "SC2COPILOT_"}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "parse env")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "poll interval must be positive, got %v", c.PollInterval)
	}
	if c.SupplyWarnRatio <= 0 || c.SupplyWarnRatio > 1 {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "supply warn ratio out of range: %v", c.SupplyWarnRatio)
	}
	if c.SupplyCriticalRatio < c.SupplyWarnRatio {
		return apperrors.Newf(apperrors.CodeConfigInvalid, "critical ratio %v below warn ratio %v", c.SupplyCriticalRatio, c.SupplyWarnRatio)
	}
	for i := 1; i < len(c.UpgradeTimings); i++ {
		if c.UpgradeTimings[i] <= c.UpgradeTimings[i-1] {
			return apperrors.New(apperrors.CodeConfigInvalid, "upgrade timings must be strictly ascending")
		}
	}
	for i := 1; i < len(c.AttackWaveTimings); i++ {
		if c.AttackWaveTimings[i] <= c.AttackWaveTimings[i-1] {
			return apperrors.New(apperrors.CodeConfigInvalid, "attack wave timings must be strictly ascending")
		}
	}
	return nil
}
