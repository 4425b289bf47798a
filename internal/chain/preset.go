// Package chain compiles high-level mastering controls into an ordered
// DSP filter chain for the external rendering engine.
package chain

import "strings"

// Preset selects the base tone shaping applied before the live EQ.
type Preset string

// Available mastering presets.
const (
	PresetClean  Preset = "clean"
	PresetClub   Preset = "club"
	PresetWarm   Preset = "warm"
	PresetBright Preset = "bright"
	PresetHeavy  Preset = "heavy"
)

// ParsePreset resolves a user-supplied preset name. Unknown or empty
// names resolve to clean rather than failing - a master must always
// render with some tone curve.
func ParsePreset(name string) Preset {
	switch Preset(strings.ToLower(strings.TrimSpace(name))) {
	case PresetClub:
		return PresetClub
	case PresetWarm:
		return PresetWarm
	case PresetBright:
		return PresetBright
	case PresetHeavy:
		return PresetHeavy
	default:
		return PresetClean
	}
}

// toneShelf holds the fixed low/high shelf pair for one preset.
type toneShelf struct {
	bassGain   float64 // dB
	bassFreq   float64 // Hz
	trebleGain float64 // dB
	trebleFreq float64 // Hz
}

// toneShelves maps each preset to its shelf pair. The clean pair doubles
// as the fallback for unrecognised presets.
var toneShelves = map[Preset]toneShelf{
	PresetClean:  {bassGain: 2, bassFreq: 120, trebleGain: 1, trebleFreq: 8000},
	PresetClub:   {bassGain: 4, bassFreq: 90, trebleGain: 2, trebleFreq: 9000},
	PresetWarm:   {bassGain: 3, bassFreq: 160, trebleGain: -2, trebleFreq: 4500},
	PresetBright: {bassGain: -1, bassFreq: 120, trebleGain: 4, trebleFreq: 8500},
	PresetHeavy:  {bassGain: 5, bassFreq: 90, trebleGain: 2, trebleFreq: 3500},
}

// shelf returns the tone shelf pair for p, falling back to clean.
func (p Preset) shelf() toneShelf {
	if s, ok := toneShelves[p]; ok {
		return s
	}
	return toneShelves[PresetClean]
}
