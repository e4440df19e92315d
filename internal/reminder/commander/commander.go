// Package commander provides the static co-op commander tip table.
package commander

import (
	"encoding/json"
	"os"
	"strings"

	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
)

// Data is the read-only tip table keyed by commander name, then phase.
type Data struct {
	tips map[string]map[string]string
}

// dataFile mirrors the on-disk JSON layout.
type dataFile struct {
	Commanders map[string]map[string]string `json:"commanders"`
}

// Load reads the commander data file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeNotFound, "read commander data %s", path)
	}
	return Parse(raw)
}

// Parse decodes commander data from JSON bytes.
func Parse(raw []byte) (*Data, error) {
	var f dataFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalid, "decode commander data")
	}
	tips := make(map[string]map[string]string, len(f.Commanders))
	for name, phases := range f.Commanders {
		tips[strings.ToLower(name)] = phases
	}
	return &Data{tips: tips}, nil
}

// Tip looks up the tip for a commander and phase. Commander names match
// case-insensitively; a miss is a normal outcome.
func (d *Data) Tip(commander, phase string) (string, bool) {
	phases, ok := d.tips[strings.ToLower(commander)]
	if !ok {
		return "", false
	}
	tip, ok := phases[phase]
	return tip, ok && tip != ""
}

// Commanders returns the known commander names (lowercased, unordered).
func (d *Data) Commanders() []string {
	out := make([]string, 0, len(d.tips))
	for name := range d.tips {
		out = append(out, name)
	}
	return out
}
