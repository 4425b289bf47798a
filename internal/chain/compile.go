package chain

// Live EQ centre frequencies. Fixed; each band's gain comes directly
// from the corresponding knob.
const (
	eqLowFreq      = 120.0
	eqMidFreq      = 630.0
	eqPresenceFreq = 1760.0
	eqAirFreq      = 8500.0
)

// Primary dynamics response to the intensity control. Threshold drops
// and ratio rises linearly as intensity increases.
const (
	intensityThresholdBase = -18.0
	intensityThresholdStep = 0.10 // dB per intensity point, subtracted
	intensityRatioBase     = 2.0
	intensityRatioStep     = 0.04
	intensityMakeupBase    = 2.0
	intensityMakeupStep    = 0.06
)

// Makeup gain bounds. The raw linear formula can exceed the engine's
// accepted range at high intensity; the compiler guarantees makeup in
// [1,64] unconditionally.
const (
	makeupMin = 1.0
	makeupMax = 64.0
)

// Final safety ceiling, always present.
const limiterCeilingDB = -1.0

// Compile maps the user-facing controls to the fully-specified stage
// list. It is a pure function: no side effects, and identical inputs
// always yield an identical chain. Inputs are clamped on entry, so
// callers may pass raw request values directly.
//
// Stage order is fixed and significant: layout, base tone, live EQ,
// primary dynamics, glue compression, stereo width, saturation, output
// trim, final limiter. A loudness-normalization stage, when wanted, is
// appended after the limiter by the renderer.
func Compile(preset Preset, intensity float64, knobs Knobs) Chain {
	k := knobs.Clamped()
	level := ClampIntensity(intensity)

	shelf := preset.shelf()

	makeup := intensityMakeupBase + float64(level)*intensityMakeupStep
	makeup = ClampFloat(makeup, makeupMin, makeupMax, intensityMakeupBase)

	primary := CompressorStage{
		ThresholdDB: intensityThresholdBase - float64(level)*intensityThresholdStep,
		Ratio:       intensityRatioBase + float64(level)*intensityRatioStep,
		Attack:      12,  // ms
		Release:     120, // ms
		Makeup:      makeup,
	}

	return Chain{
		StereoLayoutStage{},
		ToneStage{
			BassGain:   shelf.bassGain,
			BassFreq:   shelf.bassFreq,
			TrebleGain: shelf.trebleGain,
			TrebleFreq: shelf.trebleFreq,
		},
		LiveEQStage{
			Bands: []EQBand{
				{Freq: eqLowFreq, Gain: k.Low},
				{Freq: eqMidFreq, Gain: k.Mid},
				{Freq: eqPresenceFreq, Gain: k.Presence},
				{Freq: eqAirFreq, Gain: k.Air},
			},
		},
		primary,
		glueCompressor(k.Glue),
		NewWidthStage(k.Width),
		saturation(k.Saturation),
		GainStage{GainDB: k.OutputTrim},
		LimiterStage{CeilingDB: limiterCeilingDB},
	}
}

// glueCompressor derives the second, gentler compressor from the glue
// knob. At glue=0 the stage is effectively transparent: ratio 1.2 with
// the threshold sitting at -12 dB and unity makeup leaves program
// material untouched.
func glueCompressor(glue float64) CompressorStage {
	p := ClampFloat(glue, KnobGlueMin, KnobGlueMax, 0) / 100.0

	attack := 0.012 - p*0.007
	if attack < 0.001 {
		attack = 0.001
	}

	return CompressorStage{
		ThresholdDB: -12.0 - p*18.0,
		Ratio:       1.2 + p*3.8,
		Attack:      attack,        // s
		Release:     0.20 + p*0.10, // s
		Makeup:      1,
	}
}

// saturation derives the drive-up / soft compression / drive-down
// envelope from the saturation knob. Drive and trim are asymmetric on
// purpose: the compression absorbs part of the added level, so pulling
// back the full 6 dB would undershoot.
func saturation(sat float64) SaturationStage {
	p := ClampFloat(sat, KnobSaturationMin, KnobSaturationMax, 0) / 100.0

	return SaturationStage{
		DriveDB:     p * 6.0,
		ThresholdDB: -14.0 + p*6.0,
		Ratio:       1.2 + p*2.8,
		TrimDB:      -p * 4.0,
	}
}
