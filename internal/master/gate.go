package master

import "fmt"

// Duration and size policy per tier.
//
// Free requests are never rejected on duration - processing is
// silently truncated to the first FreeClipSeconds. Paid tiers render
// in full but reject inputs over MaxPaidSeconds. Exactly one
// behaviour per tier, never both.
const (
	FreeClipSeconds = 30
	MaxPaidSeconds  = 6 * 60

	MaxInputBytes = 100 << 20
)

// Preview excerpt bounds. Operator-specified lengths are clamped, not
// rejected.
const (
	PreviewMinSeconds     = 5
	PreviewMaxSeconds     = 60
	PreviewDefaultSeconds = 30
)

// GateDecision is the outcome of the duration gate for an admitted
// request.
type GateDecision struct {
	// ClipSeconds bounds the render; zero means render in full.
	ClipSeconds int
	// Truncated is set when the free tier shortened a longer input.
	Truncated bool
}

// GateDuration applies the tier's duration policy to a measured input
// duration (seconds). Paid-tier inputs over the hard limit fail with
// ErrDurationExceeded; free-tier inputs are clipped instead.
func GateDuration(tier Tier, seconds float64) (GateDecision, error) {
	if tier.Paid() {
		if seconds > MaxPaidSeconds {
			return GateDecision{}, fmt.Errorf("%w: %.0fs > %ds (%s tier)",
				ErrDurationExceeded, seconds, MaxPaidSeconds, tier)
		}
		return GateDecision{}, nil
	}

	decision := GateDecision{ClipSeconds: FreeClipSeconds}
	decision.Truncated = seconds > FreeClipSeconds
	return decision, nil
}

// ClampPreviewSeconds bounds an operator-specified preview length to
// [PreviewMinSeconds, PreviewMaxSeconds], substituting the default for
// non-positive values.
func ClampPreviewSeconds(seconds int) int {
	if seconds <= 0 {
		return PreviewDefaultSeconds
	}
	if seconds < PreviewMinSeconds {
		return PreviewMinSeconds
	}
	if seconds > PreviewMaxSeconds {
		return PreviewMaxSeconds
	}
	return seconds
}
