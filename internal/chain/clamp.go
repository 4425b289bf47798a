package chain

import "math"

// ClampFloat bounds x to [lo, hi]. NaN and infinities resolve to def.
// Applying the clamp twice is a no-op: clamp(clamp(x)) == clamp(x).
func ClampFloat(x, lo, hi, def float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return def
	}
	return math.Max(lo, math.Min(hi, x))
}

// ClampInt bounds x to [lo, hi] as an integer, resolving NaN/Inf to def.
// Bounding happens in the float domain before the integer conversion;
// converting a float beyond int range first is implementation-specific.
func ClampInt(x float64, lo, hi, def int) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return def
	}
	return int(math.Max(float64(lo), math.Min(float64(hi), x)))
}

// Knob ranges and defaults. Every control is resolved to a value inside
// its range before compilation - out-of-range input degrades to the
// nearest bound, unparseable input to the default, never to an error.
const (
	KnobEQMin = -12.0 // dB, low/mid/presence/air bands
	KnobEQMax = 12.0

	KnobGlueMin = 0.0
	KnobGlueMax = 100.0

	KnobWidthMin     = 50.0 // percent
	KnobWidthMax     = 150.0
	KnobWidthDefault = 100.0

	KnobSaturationMin = 0.0
	KnobSaturationMax = 100.0

	KnobTrimMin = -12.0 // dB
	KnobTrimMax = 6.0

	IntensityMin     = 0
	IntensityMax     = 100
	IntensityDefault = 55
)

// Knobs holds the eight continuous mastering controls.
type Knobs struct {
	Low        float64 // dB, 120 Hz band
	Mid        float64 // dB, 630 Hz band
	Presence   float64 // dB, 1.76 kHz band
	Air        float64 // dB, 8.5 kHz band
	Glue       float64 // 0-100, glue compression amount
	Width      float64 // 50-150, stereo width percent
	Saturation float64 // 0-100, saturation drive amount
	OutputTrim float64 // dB, final gain trim
}

// DefaultKnobs returns the neutral knob positions: flat EQ, no glue,
// unity width, no saturation, no trim.
func DefaultKnobs() Knobs {
	return Knobs{Width: KnobWidthDefault}
}

// Clamped returns a copy of k with every knob resolved into its range.
func (k Knobs) Clamped() Knobs {
	return Knobs{
		Low:        ClampFloat(k.Low, KnobEQMin, KnobEQMax, 0),
		Mid:        ClampFloat(k.Mid, KnobEQMin, KnobEQMax, 0),
		Presence:   ClampFloat(k.Presence, KnobEQMin, KnobEQMax, 0),
		Air:        ClampFloat(k.Air, KnobEQMin, KnobEQMax, 0),
		Glue:       ClampFloat(k.Glue, KnobGlueMin, KnobGlueMax, 0),
		Width:      ClampFloat(k.Width, KnobWidthMin, KnobWidthMax, KnobWidthDefault),
		Saturation: ClampFloat(k.Saturation, KnobSaturationMin, KnobSaturationMax, 0),
		OutputTrim: ClampFloat(k.OutputTrim, KnobTrimMin, KnobTrimMax, 0),
	}
}

// ClampIntensity resolves the intensity control to an integer in [0,100].
func ClampIntensity(intensity float64) int {
	return ClampInt(intensity, IntensityMin, IntensityMax, IntensityDefault)
}
