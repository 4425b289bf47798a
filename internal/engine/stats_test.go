package engine

import (
	"errors"
	"math"
	"testing"
)

const goodRecord = `{
	"input_i" : "-19.25",
	"input_tp" : "-2.10",
	"input_lra" : "6.40",
	"input_thresh" : "-29.51",
	"output_i" : "-14.10",
	"output_tp" : "-1.20",
	"output_lra" : "5.90",
	"output_thresh" : "-24.40",
	"normalization_type" : "linear",
	"target_offset" : "0.31"
}`

func TestExtractLastRecord(t *testing.T) {
	tests := []struct {
		name string
		diag string
		want string
		ok   bool
	}{
		{
			name: "bare_record",
			diag: `{"input_i" : "-19.25"}`,
			want: `{"input_i" : "-19.25"}`,
			ok:   true,
		},
		{
			name: "record_in_noisy_stream",
			diag: "size=N/A time=00:03:05.00 bitrate=N/A speed=61x\n[Parsed_loudnorm_0 @ 0x55]\n" +
				`{"input_i" : "-19.25"}` + "\nframe chatter after",
			want: `{"input_i" : "-19.25"}`,
			ok:   true,
		},
		{
			name: "last_record_wins",
			diag: `{"input_i" : "-30.00"}` + " progress noise " + `{"input_i" : "-19.25"}`,
			want: `{"input_i" : "-19.25"}`,
			ok:   true,
		},
		{
			name: "skips_trailing_malformed_fragment",
			diag: `{"input_i" : "-19.25"}` + "\ntruncated tail {\"input_i\" : }",
			want: `{"input_i" : "-19.25"}`,
			ok:   true,
		},
		{
			name: "no_record",
			diag: "size=N/A time=00:03:05.00 speed=61x",
			ok:   false,
		},
		{
			name: "empty_stream",
			diag: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLastRecord(tt.diag)
			if ok != tt.ok {
				t.Fatalf("ExtractLastRecord() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractLastRecord() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMeasurement(t *testing.T) {
	m, err := ParseMeasurement("engine chatter\n" + goodRecord + "\ntrailer")
	if err != nil {
		t.Fatalf("ParseMeasurement() error = %v", err)
	}

	if math.Abs(m.Integrated - -19.25) > 1e-9 {
		t.Errorf("Integrated = %v, want -19.25", m.Integrated)
	}
	if math.Abs(m.TruePeak - -2.10) > 1e-9 {
		t.Errorf("TruePeak = %v, want -2.10", m.TruePeak)
	}
	if math.Abs(m.Range-6.40) > 1e-9 {
		t.Errorf("Range = %v, want 6.40", m.Range)
	}
	if math.Abs(m.Threshold - -29.51) > 1e-9 {
		t.Errorf("Threshold = %v, want -29.51", m.Threshold)
	}
	if math.Abs(m.Offset-0.31) > 1e-9 {
		t.Errorf("Offset = %v, want 0.31", m.Offset)
	}
}

func TestParseMeasurementErrors(t *testing.T) {
	tests := []struct {
		name    string
		diag    string
		wantErr error
	}{
		{
			name:    "no_record",
			diag:    "plain progress output only",
			wantErr: ErrNoRecord,
		},
		{
			name:    "missing_required_field",
			diag:    `{"input_i" : "-19.25", "input_tp" : "-2.10", "input_lra" : "6.40", "input_thresh" : "-29.51"}`,
			wantErr: ErrBadRecord,
		},
		{
			name:    "unparseable_value",
			diag:    `{"input_i" : "loud", "input_tp" : "-2.10", "input_lra" : "6.40", "input_thresh" : "-29.51", "target_offset" : "0.31"}`,
			wantErr: ErrBadRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMeasurement(tt.diag)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseMeasurement() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseMeasurementSilentInput(t *testing.T) {
	// loudnorm reports -inf for silent input; ParseFloat accepts it
	diag := `{"input_i" : "-inf", "input_tp" : "-inf", "input_lra" : "0.00", "input_thresh" : "-inf", "target_offset" : "0.00"}`

	m, err := ParseMeasurement(diag)
	if err != nil {
		t.Fatalf("ParseMeasurement() error = %v", err)
	}
	if !math.IsInf(m.Integrated, -1) {
		t.Errorf("Integrated = %v, want -Inf", m.Integrated)
	}
}

func TestParseRenderStats(t *testing.T) {
	stats, err := ParseRenderStats("render chatter\n" + goodRecord)
	if err != nil {
		t.Fatalf("ParseRenderStats() error = %v", err)
	}
	if math.Abs(stats.OutputIntegrated - -14.10) > 1e-9 {
		t.Errorf("OutputIntegrated = %v, want -14.10", stats.OutputIntegrated)
	}
	if math.Abs(stats.OutputTruePeak - -1.20) > 1e-9 {
		t.Errorf("OutputTruePeak = %v, want -1.20", stats.OutputTruePeak)
	}
}

func TestParseRenderStatsMissingOutputs(t *testing.T) {
	diag := `{"input_i" : "-19.25", "input_tp" : "-2.10"}`

	_, err := ParseRenderStats(diag)
	if !errors.Is(err, ErrBadRecord) {
		t.Errorf("ParseRenderStats() error = %v, want ErrBadRecord", err)
	}
}
