// Package master orchestrates the mastering pipeline: request
// validation, tier gating, chain compilation, and the two-pass
// loudness-normalized render.
package master

import (
	"errors"
	"fmt"
)

// ErrDurationExceeded reports an input longer than the tier's hard
// limit. Surfaced to the caller, never retried.
var ErrDurationExceeded = errors.New("input exceeds tier duration limit")

// ErrTooLarge reports an input over the size limit.
var ErrTooLarge = errors.New("input exceeds size limit")

// ErrNotFound reports a master id with no stored record.
var ErrNotFound = errors.New("master not found")

// InputError wraps a failure to read or decode the source before any
// processing started.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("unreadable input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// RenderError reports a fatal render failure: the engine exited
// non-zero, or produced an undersized artifact. Partial output is
// discarded before this surfaces.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
