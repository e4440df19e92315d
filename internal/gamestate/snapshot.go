package gamestate

// Warning flag names derived during synthesis.
const (
	WarnSupplyBlock      = "supply_block"
	WarnMineralsOverflow = "minerals_overflow"
	WarnGasOverflow      = "gas_overflow"
)

// Game modes.
const (
	ModeCoop   = "coop"
	ModeVersus = "versus"
)

// Resources is the mineral and gas bank.
type Resources struct {
	Minerals int `json:"minerals"`
	Gas      int `json:"gas"`
}

// Supply is the used/cap pair.
type Supply struct {
	Used int `json:"supply_used"`
	Cap  int `json:"supply_cap"`
}

// Snapshot is the synthesized game state for one polling cycle. It is
// constructed fresh each cycle and never mutated afterwards.
type Snapshot struct {
	Resources Resources `json:"resources"`
	Supply    Supply    `json:"supply"`
	GameTime  string    `json:"game_time"` // display form, "MM:SS"
	Elapsed   int       `json:"elapsed"`   // seconds since game start
	Mode      string    `json:"mode"`
	Warnings  []string  `json:"warnings"`
}

// HasWarning reports whether the snapshot carries the named flag.
func (s Snapshot) HasWarning(name string) bool {
	for _, w := range s.Warnings {
		if w == name {
			return true
		}
	}
	return false
}

// SupplyRatio returns used/cap, or 0 when cap is zero.
func (s Snapshot) SupplyRatio() float64 {
	if s.Supply.Cap == 0 {
		return 0
	}
	return float64(s.Supply.Used) / float64(s.Supply.Cap)
}
