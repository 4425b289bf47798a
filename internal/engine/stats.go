package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Measurement is the structured result of a loudness measurement pass.
// All five fields are required together: a record missing any of them
// is discarded, never defaulted.
type Measurement struct {
	Integrated float64 // LUFS
	TruePeak   float64 // dBTP
	Range      float64 // LU
	Threshold  float64 // LUFS
	Offset     float64 // LU, normalizer's own target offset
}

// RenderStats carries the normalizer's post-render diagnostics,
// parsed best-effort from the render pass.
type RenderStats struct {
	OutputIntegrated float64
	OutputTruePeak   float64
}

// Distinct failure modes for diagnostic-stream extraction. No record at
// all and a malformed or incomplete record are different outcomes; both
// make the measurement unusable, but they are reported apart.
var (
	ErrNoRecord  = errors.New("no structured record in diagnostic stream")
	ErrBadRecord = errors.New("malformed or incomplete measurement record")
)

// loudnormRecord mirrors the normalizer's JSON output. Values arrive as
// strings (including "-inf" for silent input).
type loudnormRecord struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
	OutputI      string `json:"output_i"`
	OutputTP     string `json:"output_tp"`
}

// ExtractLastRecord finds the last well-formed JSON object in a noisy
// diagnostic stream. The engine interleaves progress lines and filter
// chatter around the record, and earlier malformed fragments may
// appear, so candidates are scanned from the end of the stream
// backwards and the first one that parses wins.
func ExtractLastRecord(diag string) (string, bool) {
	end := len(diag)
	for {
		last := strings.LastIndex(diag[:end], "}")
		if last == -1 {
			return "", false
		}
		// Walk back to the matching opening brace.
		depth := 0
		for i := last; i >= 0; i-- {
			switch diag[i] {
			case '}':
				depth++
			case '{':
				depth--
			}
			if depth == 0 {
				candidate := diag[i : last+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				break
			}
		}
		end = last
	}
}

// ParseMeasurement extracts the measurement from a measurement-mode
// diagnostic stream. Returns ErrNoRecord when no structured record
// exists at all, and ErrBadRecord when a record exists but is
// malformed or missing any required field.
func ParseMeasurement(diag string) (*Measurement, error) {
	raw, ok := ExtractLastRecord(diag)
	if !ok {
		return nil, ErrNoRecord
	}

	var rec loudnormRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}

	m := &Measurement{}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"input_i", rec.InputI, &m.Integrated},
		{"input_tp", rec.InputTP, &m.TruePeak},
		{"input_lra", rec.InputLRA, &m.Range},
		{"input_thresh", rec.InputThresh, &m.Threshold},
		{"target_offset", rec.TargetOffset, &m.Offset},
	}
	for _, f := range fields {
		if f.raw == "" {
			return nil, fmt.Errorf("%w: missing %s", ErrBadRecord, f.name)
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrBadRecord, f.name, f.raw)
		}
		*f.dst = v
	}
	return m, nil
}

// ParseRenderStats extracts the post-render loudness diagnostics from a
// render-mode stream. Best-effort: callers treat an error as "no
// diagnostics", not as a render failure.
func ParseRenderStats(diag string) (*RenderStats, error) {
	raw, ok := ExtractLastRecord(diag)
	if !ok {
		return nil, ErrNoRecord
	}

	var rec loudnormRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if rec.OutputI == "" || rec.OutputTP == "" {
		return nil, fmt.Errorf("%w: missing output fields", ErrBadRecord)
	}

	stats := &RenderStats{}
	var err error
	if stats.OutputIntegrated, err = strconv.ParseFloat(rec.OutputI, 64); err != nil {
		return nil, fmt.Errorf("%w: output_i=%q", ErrBadRecord, rec.OutputI)
	}
	if stats.OutputTruePeak, err = strconv.ParseFloat(rec.OutputTP, 64); err != nil {
		return nil, fmt.Errorf("%w: output_tp=%q", ErrBadRecord, rec.OutputTP)
	}
	return stats, nil
}
