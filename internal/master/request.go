package master

import (
	"strings"

	"github.com/warmaster/warmaster/internal/chain"
)

// Tier is the quality tier a request is processed under. It decides
// the duration policy: free renders a truncated preview, paid tiers
// render in full up to a hard limit.
type Tier string

const (
	TierFree Tier = "free"
	TierPlus Tier = "plus"
	TierPro  Tier = "pro"
)

// ParseTier resolves a user-supplied tier name, defaulting to free.
func ParseTier(name string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(name))) {
	case TierPlus:
		return TierPlus
	case TierPro:
		return TierPro
	default:
		return TierFree
	}
}

// Paid reports whether the tier renders full-length masters.
func (t Tier) Paid() bool {
	return t == TierPlus || t == TierPro
}

// Request carries everything needed to master one source. Numeric
// fields may arrive raw; the pipeline clamps them before compilation,
// so a request is never rejected for an out-of-range knob.
type Request struct {
	InputPath string
	Title     string

	Preset    chain.Preset
	Intensity float64
	Knobs     chain.Knobs

	Target string // loudness target catalog key
	Tier   Tier
}
