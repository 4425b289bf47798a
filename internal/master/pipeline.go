package master

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/warmaster/warmaster/internal/chain"
	"github.com/warmaster/warmaster/internal/engine"
	"github.com/warmaster/warmaster/internal/target"
)

// Engine is the slice of the external renderer the pipeline depends
// on. *engine.Runner satisfies it; tests substitute a fake.
type Engine interface {
	Duration(ctx context.Context, path string) (float64, error)
	Run(ctx context.Context, inv engine.Invocation) (string, error)
}

// minArtifactBytes is the smallest output accepted as a real render.
// Anything under this is an empty or truncated artifact and fails the
// request.
const minArtifactBytes = 1024

// Pipeline renders loudness-normalized masters through the external
// engine. Processing is synchronous and blocking per request; the
// pipeline itself holds no mutable state, so a single Pipeline may
// serve concurrent requests.
type Pipeline struct {
	Engine Engine

	// Log receives diagnostic lines (fallback decisions, discarded
	// measurements). Nil disables logging.
	Log func(format string, args ...any)

	// Progress receives pass transitions for UI display. Nil disables
	// reporting.
	Progress func(pass int, name string, fraction float64)
}

// Result describes one finished render.
type Result struct {
	OutputPath string

	// TwoPass is true when the render used the measured correction
	// values; false means the single-pass fallback was taken.
	TwoPass bool

	// Measurement holds the pass-1 values when TwoPass is true.
	Measurement *engine.Measurement

	// Output holds post-render loudness diagnostics when the engine
	// reported them (best-effort, may be nil).
	Output *engine.RenderStats

	Profile     target.Profile
	ClipSeconds int
	Truncated   bool
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Log != nil {
		p.Log(format, args...)
	}
}

func (p *Pipeline) progress(pass int, name string, fraction float64) {
	if p.Progress != nil {
		p.Progress(pass, name, fraction)
	}
}

// Render masters inputPath into outputPath: compile the chain from the
// request controls, measure loudness against the target (pass 1), then
// render with the measured correction (pass 2). If the measurement is
// unusable - process error, timeout, or an absent/incomplete record -
// the render falls back to a single-pass normalization against the
// target alone. The fallback is a quality tradeoff, not an error; the
// taken path is reported in the result.
func (p *Pipeline) Render(ctx context.Context, req Request, inputPath, outputPath string, gate GateDecision) (*Result, error) {
	profile := target.Lookup(req.Target)
	compiled := chain.Compile(req.Preset, req.Intensity, req.Knobs)

	measurement := p.measure(ctx, compiled, profile, inputPath, gate.ClipSeconds)

	norm := chain.LoudnessNormStage{
		TargetI:   profile.Integrated,
		TargetTP:  profile.TruePeak,
		TargetLRA: profile.Range,
	}
	if measurement != nil {
		norm.TwoPass = true
		norm.MeasuredI = measurement.Integrated
		norm.MeasuredTP = measurement.TruePeak
		norm.MeasuredLRA = measurement.Range
		norm.MeasuredThresh = measurement.Threshold
		norm.MeasuredOffset = measurement.Offset
	}

	p.progress(3, "Rendering", 0)
	diag, err := p.Engine.Run(ctx, engine.Invocation{
		InputPath:   inputPath,
		OutputPath:  outputPath,
		Filter:      compiled.Append(norm).FilterSpec(),
		ClipSeconds: gate.ClipSeconds,
	})
	if err != nil {
		discard(outputPath)
		if errors.Is(err, engine.ErrTimeout) {
			return nil, fmt.Errorf("render: %w", err)
		}
		return nil, &RenderError{Err: err}
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() < minArtifactBytes {
		discard(outputPath)
		return nil, &RenderError{Err: fmt.Errorf("undersized artifact %s", outputPath)}
	}
	p.progress(3, "Rendering", 1)

	result := &Result{
		OutputPath:  outputPath,
		TwoPass:     measurement != nil,
		Measurement: measurement,
		Profile:     profile,
		ClipSeconds: gate.ClipSeconds,
		Truncated:   gate.Truncated,
	}
	if stats, err := engine.ParseRenderStats(diag); err == nil {
		result.Output = stats
	}
	return result, nil
}

// measure runs pass 1: the compiled chain plus the normalizer in
// measurement mode against a null sink, then extracts the last
// structured record from the diagnostic stream. Any failure returns
// nil, which selects the single-pass fallback.
func (p *Pipeline) measure(ctx context.Context, compiled chain.Chain, profile target.Profile, inputPath string, clipSeconds int) *engine.Measurement {
	p.progress(2, "Measuring", 0)

	probe := chain.LoudnessNormStage{
		TargetI:   profile.Integrated,
		TargetTP:  profile.TruePeak,
		TargetLRA: profile.Range,
	}
	diag, err := p.Engine.Run(ctx, engine.Invocation{
		InputPath:   inputPath,
		Filter:      compiled.Append(probe).FilterSpec(),
		ClipSeconds: clipSeconds,
	})
	if err != nil {
		p.logf("measurement pass failed, falling back to single-pass: %v", err)
		return nil
	}

	m, err := engine.ParseMeasurement(diag)
	if err != nil {
		p.logf("measurement discarded, falling back to single-pass: %v", err)
		return nil
	}

	p.progress(2, "Measuring", 1)
	return m
}

// discard removes a partial artifact, ignoring errors; there is
// nothing useful to do if the file is already gone.
func discard(path string) {
	if path != "" {
		os.Remove(path)
	}
}
