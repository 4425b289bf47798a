// Package engine invokes the external FFmpeg rendering engine and
// parses its diagnostic output. Each invocation is a blocking foreign
// process call with a hard wall-clock timeout.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Output rendering contract: every artifact the engine produces is PCM
// 44.1 kHz, 2 channel, 16-bit signed.
const (
	OutputSampleRate = 44100
	OutputChannels   = 2
	OutputSampleFmt  = "s16"
)

// DefaultTimeout bounds a single engine invocation. If the engine
// hangs, the process is killed and the invocation fails with
// ErrTimeout.
const DefaultTimeout = 240 * time.Second

// maxStderrBytes bounds how much of the engine's diagnostic stream is
// retained. The structured records we parse are emitted at the end of
// the stream, so keeping the tail is sufficient.
const maxStderrBytes = 8 * 1024

// ErrTimeout reports that an invocation exceeded its wall-clock budget.
// Distinct from a render failure: the caller may retry from scratch.
var ErrTimeout = errors.New("engine invocation timed out")

// ExitError reports a non-zero engine exit. Stderr is size-bounded
// before being carried here.
type ExitError struct {
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("engine failed: %v\n%s", e.Err, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner locates the engine binaries and carries the per-invocation
// timeout. The zero value is not usable; construct with NewRunner.
type Runner struct {
	FFmpegPath  string
	FFprobePath string
	Timeout     time.Duration
}

// NewRunner returns a Runner resolving the engine from PATH with the
// default timeout.
func NewRunner() *Runner {
	return &Runner{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Timeout:     DefaultTimeout,
	}
}

// Invocation describes one engine run: an input, an optional clip
// bound, a filter expression, and either a real output path or (when
// OutputPath is empty) a null sink for measurement-only runs.
type Invocation struct {
	InputPath   string
	OutputPath  string
	Filter      string
	ClipSeconds int
}

// Run executes the engine and returns the tail of its diagnostic
// stream. The stream is returned for success as well, because
// measurement runs deliver their result through it.
//
// Timeout classification: a context deadline (the runner's own budget
// or the caller's) maps to ErrTimeout; any other non-zero exit maps to
// an ExitError carrying the bounded stderr.
func (r *Runner) Run(ctx context.Context, inv Invocation) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.FFmpegPath, arguments(inv)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	diag := tail(stderr.String(), maxStderrBytes)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return diag, fmt.Errorf("%w after %s", ErrTimeout, r.Timeout)
		}
		return diag, &ExitError{Stderr: diag, Err: err}
	}
	return diag, nil
}

// arguments builds the engine command line for one invocation.
func arguments(inv Invocation) []string {
	args := []string{"-y", "-hide_banner", "-nostdin", "-i", inv.InputPath}
	if inv.ClipSeconds > 0 {
		args = append(args, "-t", strconv.Itoa(inv.ClipSeconds))
	}
	args = append(args, "-vn")
	if inv.Filter != "" {
		args = append(args, "-af", inv.Filter)
	}
	if inv.OutputPath == "" {
		// Measurement mode: decode and filter but discard the audio.
		args = append(args, "-f", "null", "-")
	} else {
		args = append(args,
			"-ar", strconv.Itoa(OutputSampleRate),
			"-ac", strconv.Itoa(OutputChannels),
			"-sample_fmt", OutputSampleFmt,
			inv.OutputPath)
	}
	return args
}

// tail returns at most n bytes from the end of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
