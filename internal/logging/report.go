// Package logging handles generation of mastering reports for rendered audio files

package logging

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warmaster/warmaster/internal/chain"
	"github.com/warmaster/warmaster/internal/master"
)

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a mastering report
type ReportData struct {
	InputPath  string
	OutputPath string

	StartTime time.Time
	EndTime   time.Time

	DecodeTime  time.Duration
	MeasureTime time.Duration // may be 0 when measurement was skipped
	RenderTime  time.Duration

	Request      master.Request
	Chain        chain.Chain
	Result       *master.Result
	DurationSecs float64
}

// GenerateReport creates a detailed mastering report and saves it alongside
// the output file. The report filename will be <output>.log
//
// Report structure:
// 1. Header - file info and timestamp
// 2. Mastering Summary - pass timings
// 3. Settings - preset, intensity, knobs, target
// 4. Filter Chain Applied - stage list with rendered specs
// 5. Loudness Normalisation - two-pass diagnostics
// 6. Loudness Measurements - Input/Master comparison table
func GenerateReport(data ReportData) error {
	logPath := strings.TrimSuffix(data.OutputPath, filepath.Ext(data.OutputPath)) + ".log"

	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, data)
	writeMasteringSummary(f, data)
	writeSettings(f, data)
	writeFilterChainApplied(f, data.Chain)
	writeLoudnessNorm(f, data)
	writeLoudnessTable(f, data)

	return nil
}

// writeReportHeader outputs the report header with file info and timestamp.
func writeReportHeader(f *os.File, data ReportData) {
	fmt.Fprintln(f, "Warmaster Mastering Report")
	fmt.Fprintln(f, "==========================")
	fmt.Fprintf(f, "File: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(f, "Mastered: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if data.DurationSecs > 0 {
		fmt.Fprintf(f, "Duration: %s\n", formatDuration(time.Duration(data.DurationSecs*float64(time.Second))))
	}
	fmt.Fprintln(f, "")
}

// writeMasteringSummary outputs the processing time summary for all passes.
func writeMasteringSummary(f *os.File, data ReportData) {
	writeSection(f, "Mastering Summary")

	fmt.Fprintf(f, "Pass 1 (Decoding):  %s\n", formatDuration(data.DecodeTime))
	if data.MeasureTime > 0 {
		fmt.Fprintf(f, "Pass 2 (Measuring): %s\n", formatDuration(data.MeasureTime))
	} else {
		fmt.Fprintln(f, "Pass 2 (Measuring): skipped")
	}
	fmt.Fprintf(f, "Pass 3 (Rendering): %s\n", formatDuration(data.RenderTime))

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(f, "Total:              %s", formatDuration(totalTime))

	if data.DurationSecs > 0 && totalTime > 0 {
		audioDuration := time.Duration(data.DurationSecs * float64(time.Second))
		rtf := float64(audioDuration) / float64(totalTime)
		fmt.Fprintf(f, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(f, "")

	if data.Result != nil && data.Result.Truncated {
		fmt.Fprintf(f, "Clipped: output truncated to %ds (free tier)\n", data.Result.ClipSeconds)
	}
	fmt.Fprintln(f, "")
}

// writeSettings outputs the mastering parameters that shaped the chain.
func writeSettings(f *os.File, data ReportData) {
	writeSection(f, "Settings")

	req := data.Request
	fmt.Fprintf(f, "Preset:     %s\n", req.Preset)
	fmt.Fprintf(f, "Intensity:  %.0f\n", req.Intensity)
	fmt.Fprintf(f, "Tier:       %s\n", req.Tier)

	if data.Result != nil {
		p := data.Result.Profile
		fmt.Fprintf(f, "Target:     %s (I %.1f LUFS, TP %.1f dBTP, LRA %.1f LU)\n",
			p.Name, p.Integrated, p.TruePeak, p.Range)
	} else {
		fmt.Fprintf(f, "Target:     %s\n", req.Target)
	}

	k := req.Knobs.Clamped()
	fmt.Fprintln(f, "")
	fmt.Fprintln(f, "Knobs:")
	fmt.Fprintf(f, "  Low:        %s dB\n", formatMetricSigned(k.Low, 1))
	fmt.Fprintf(f, "  Mid:        %s dB\n", formatMetricSigned(k.Mid, 1))
	fmt.Fprintf(f, "  Presence:   %s dB\n", formatMetricSigned(k.Presence, 1))
	fmt.Fprintf(f, "  Air:        %s dB\n", formatMetricSigned(k.Air, 1))
	fmt.Fprintf(f, "  Glue:       %.0f\n", k.Glue)
	fmt.Fprintf(f, "  Width:      %.0f\n", k.Width)
	fmt.Fprintf(f, "  Saturation: %.0f\n", k.Saturation)
	fmt.Fprintf(f, "  Trim:       %s dB\n", formatMetricSigned(k.OutputTrim, 1))
	fmt.Fprintln(f, "")
}

// writeFilterChainApplied outputs the compiled chain stage by stage.
func writeFilterChainApplied(f *os.File, compiled chain.Chain) {
	if len(compiled) == 0 {
		return
	}

	writeSection(f, "Filter Chain Applied")
	for i, stage := range compiled {
		fmt.Fprintf(f, "%2d. %-12s %s\n", i+1, stage.Name(), stage.FilterSpec())
	}
	fmt.Fprintln(f, "")
}

// writeLoudnessNorm outputs the loudness normalisation pass details.
func writeLoudnessNorm(f *os.File, data ReportData) {
	writeSection(f, "Loudness Normalisation")

	if data.Result == nil {
		fmt.Fprintln(f, "Status: UNKNOWN")
		fmt.Fprintln(f, "")
		return
	}

	if !data.Result.TwoPass || data.Result.Measurement == nil {
		fmt.Fprintln(f, "Mode: single-pass (measurement unavailable)")
		fmt.Fprintln(f, "")
		return
	}

	m := data.Result.Measurement
	fmt.Fprintln(f, "Mode: two-pass linear")
	fmt.Fprintln(f, "")
	fmt.Fprintln(f, "Measured (pass 2):")
	fmt.Fprintf(f, "  Integrated: %s LUFS\n", formatMetricLUFS(m.Integrated, 2))
	fmt.Fprintf(f, "  True peak:  %.2f dBTP\n", m.TruePeak)
	fmt.Fprintf(f, "  Range:      %.2f LU\n", m.Range)
	fmt.Fprintf(f, "  Threshold:  %.2f LUFS\n", m.Threshold)
	fmt.Fprintf(f, "  Offset:     %s dB\n", formatMetricSigned(m.Offset, 2))
	fmt.Fprintln(f, "")
}

// writeLoudnessTable outputs an Input/Master comparison table for loudness metrics.
func writeLoudnessTable(f *os.File, data ReportData) {
	writeSection(f, "Loudness Measurements")

	inputI := math.NaN()
	inputTP := math.NaN()
	masterI := math.NaN()
	masterTP := math.NaN()

	if data.Result != nil {
		if m := data.Result.Measurement; m != nil {
			inputI = m.Integrated
			inputTP = m.TruePeak
		}
		if out := data.Result.Output; out != nil {
			masterI = out.OutputIntegrated
			masterTP = out.OutputTruePeak
		}
	}

	table := NewMetricTable()
	table.AddRow("Integrated Loudness",
		[]string{formatMetricLUFS(inputI, 1), formatMetricLUFS(masterI, 1)},
		"LUFS", targetNote(data, masterI))
	table.AddRow("True Peak",
		[]string{formatMetricDB(inputTP, 1), formatMetricDB(masterTP, 1)},
		"dBTP", "")

	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

// targetNote reports how close the master landed to the target loudness.
func targetNote(data ReportData, masterI float64) string {
	if data.Result == nil || math.IsNaN(masterI) {
		return ""
	}
	deviation := math.Abs(masterI - data.Result.Profile.Integrated)
	if deviation <= 1.0 {
		return fmt.Sprintf("within target (%.2f LU)", deviation)
	}
	return fmt.Sprintf("off target by %.2f LU", deviation)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
