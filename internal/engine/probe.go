package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Duration measures the total duration of an audio source in seconds
// by asking the engine's probe tool for the container duration.
// An unreadable or undecodable source surfaces as an error here, before
// any processing starts.
func (r *Runner) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("probing %s: %w", path, ErrTimeout)
		}
		return 0, &ExitError{Stderr: tail(stderr.String(), maxStderrBytes), Err: err}
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil || dur < 0 {
		return 0, fmt.Errorf("unparseable duration %q for %s", strings.TrimSpace(stdout.String()), path)
	}
	return dur, nil
}
