package chain

import (
	"fmt"
	"math"
	"strings"
)

// Stage is one typed DSP operation in the mastering chain. Stages are
// serialized to the engine's filter expression form only at the process
// boundary; everything upstream works with the typed descriptors.
type Stage interface {
	// Name identifies the stage kind for logging and inspection.
	Name() string
	// FilterSpec renders the stage as an FFmpeg filter expression.
	FilterSpec() string
}

// DbToLinear converts a decibel value to linear amplitude.
// Used for parameters the engine expects in linear form.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// StereoLayoutStage forces a two-channel layout so the width matrix
// downstream always sees stereo, including for mono sources.
type StereoLayoutStage struct{}

func (StereoLayoutStage) Name() string { return "stereo_layout" }

func (StereoLayoutStage) FilterSpec() string {
	return "aformat=channel_layouts=stereo"
}

// ToneStage is the preset-selected base tone shaping: a fixed low shelf
// and high shelf pair.
type ToneStage struct {
	BassGain   float64 // dB
	BassFreq   float64 // Hz
	TrebleGain float64 // dB
	TrebleFreq float64 // Hz
}

func (ToneStage) Name() string { return "tone" }

func (s ToneStage) FilterSpec() string {
	return fmt.Sprintf("bass=g=%g:f=%g,treble=g=%g:f=%g",
		s.BassGain, s.BassFreq, s.TrebleGain, s.TrebleFreq)
}

// EQBand is one peaking band of the live EQ.
type EQBand struct {
	Freq float64 // Hz, fixed centre frequency
	Gain float64 // dB, driven directly by a knob
}

// LiveEQStage holds the four knob-driven peaking bands. Bandwidth is a
// fixed half-octave per band.
type LiveEQStage struct {
	Bands []EQBand
}

func (LiveEQStage) Name() string { return "live_eq" }

func (s LiveEQStage) FilterSpec() string {
	specs := make([]string, 0, len(s.Bands))
	for _, b := range s.Bands {
		specs = append(specs,
			fmt.Sprintf("equalizer=f=%g:width_type=h:width=1:g=%.2f", b.Freq, b.Gain))
	}
	return strings.Join(specs, ",")
}

// CompressorStage describes one dynamics compressor. Attack and release
// carry the engine's native units unchanged (the primary compressor is
// specified in milliseconds, the glue compressor in seconds, matching
// the documented parameter contracts).
type CompressorStage struct {
	ThresholdDB float64
	Ratio       float64
	Attack      float64
	Release     float64
	Makeup      float64 // linear gain, must stay within [1,64]
}

func (CompressorStage) Name() string { return "compressor" }

func (s CompressorStage) FilterSpec() string {
	return fmt.Sprintf("acompressor=threshold=%.2fdB:ratio=%.2f:attack=%g:release=%g:makeup=%.2f",
		s.ThresholdDB, s.Ratio, s.Attack, s.Release, s.Makeup)
}

// WidthStage is the stereo width matrix:
//
//	L' = a*L + b*R
//	R' = b*L + a*R
//
// with a+b == 1 for every width, preserving overall gain. At width=100
// the matrix is the exact identity.
type WidthStage struct {
	A float64
	B float64
}

// NewWidthStage derives the matrix coefficients from the width knob.
func NewWidthStage(width float64) WidthStage {
	k := ClampFloat(width, KnobWidthMin, KnobWidthMax, KnobWidthDefault) / 100.0
	return WidthStage{
		A: (1.0 + k) / 2.0,
		B: (1.0 - k) / 2.0,
	}
}

func (WidthStage) Name() string { return "width" }

func (s WidthStage) FilterSpec() string {
	return fmt.Sprintf("pan=stereo|c0=%.6f*c0+%.6f*c1|c1=%.6f*c0+%.6f*c1",
		s.A, s.B, s.B, s.A)
}

// SaturationStage models tape-style saturation as drive-up, a gentle
// soft-knee compression standing in for the nonlinearity, then
// drive-down. At zero saturation the net gain is 0 dB and the
// compressor never engages.
type SaturationStage struct {
	DriveDB     float64 // positive pre-gain
	ThresholdDB float64
	Ratio       float64
	TrimDB      float64 // negative post-gain
}

func (SaturationStage) Name() string { return "saturation" }

func (s SaturationStage) FilterSpec() string {
	return fmt.Sprintf(
		"volume=%.2fdB,acompressor=threshold=%.2fdB:ratio=%.2f:attack=2:release=80:makeup=1,volume=%.2fdB",
		s.DriveDB, s.ThresholdDB, s.Ratio, s.TrimDB)
}

// GainStage is a plain gain adjustment, used for the output trim.
type GainStage struct {
	GainDB float64
}

func (GainStage) Name() string { return "gain" }

func (s GainStage) FilterSpec() string {
	return fmt.Sprintf("volume=%.2fdB", s.GainDB)
}

// LimiterStage is the fixed safety ceiling. The engine's limiter takes
// its ceiling in linear form.
type LimiterStage struct {
	CeilingDB float64
}

func (LimiterStage) Name() string { return "limiter" }

func (s LimiterStage) FilterSpec() string {
	return fmt.Sprintf("alimiter=limit=%.6f", DbToLinear(s.CeilingDB))
}

// LoudnessNormStage configures the engine's EBU R128 normalizer. In
// measurement mode it only reports; in render mode it embeds the five
// measured values from the measurement pass so the engine can apply a
// transparent linear correction.
type LoudnessNormStage struct {
	TargetI   float64 // LUFS
	TargetTP  float64 // dBTP
	TargetLRA float64 // LU

	// Measured values from the measurement pass. Only consulted when
	// TwoPass is set; all five are embedded together.
	TwoPass        bool
	MeasuredI      float64
	MeasuredTP     float64
	MeasuredLRA    float64
	MeasuredThresh float64
	MeasuredOffset float64
}

func (LoudnessNormStage) Name() string { return "loudness_norm" }

func (s LoudnessNormStage) FilterSpec() string {
	if !s.TwoPass {
		return fmt.Sprintf("loudnorm=I=%.1f:TP=%.1f:LRA=%.1f:print_format=json",
			s.TargetI, s.TargetTP, s.TargetLRA)
	}
	return fmt.Sprintf(
		"loudnorm=I=%.1f:TP=%.1f:LRA=%.1f:measured_I=%.2f:measured_TP=%.2f:measured_LRA=%.2f:measured_thresh=%.2f:offset=%.2f:linear=true:print_format=json",
		s.TargetI, s.TargetTP, s.TargetLRA,
		s.MeasuredI, s.MeasuredTP, s.MeasuredLRA, s.MeasuredThresh, s.MeasuredOffset)
}

// Chain is the ordered stage list produced by Compile. It is built
// fresh per request and never mutated afterwards.
type Chain []Stage

// FilterSpec joins the stage expressions in chain order.
func (c Chain) FilterSpec() string {
	specs := make([]string, 0, len(c))
	for _, s := range c {
		if spec := s.FilterSpec(); spec != "" {
			specs = append(specs, spec)
		}
	}
	return strings.Join(specs, ",")
}

// Append returns a new chain with extra stages added after c. The
// original chain is left untouched.
func (c Chain) Append(stages ...Stage) Chain {
	out := make(Chain, 0, len(c)+len(stages))
	out = append(out, c...)
	out = append(out, stages...)
	return out
}
