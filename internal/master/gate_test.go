package master

import (
	"errors"
	"testing"
)

func TestGateDurationFree(t *testing.T) {
	tests := []struct {
		name          string
		seconds       float64
		wantTruncated bool
	}{
		{"short_input_not_truncated", 20, false},
		{"exactly_clip_length", 30, false},
		{"long_input_truncated", 200, true},
		{"very_long_input_truncated", 4000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GateDuration(TierFree, tt.seconds)
			if err != nil {
				t.Fatalf("GateDuration() error = %v, free tier never rejects", err)
			}
			if got.ClipSeconds != FreeClipSeconds {
				t.Errorf("ClipSeconds = %d, want %d", got.ClipSeconds, FreeClipSeconds)
			}
			if got.Truncated != tt.wantTruncated {
				t.Errorf("Truncated = %v, want %v", got.Truncated, tt.wantTruncated)
			}
		})
	}
}

func TestGateDurationPaid(t *testing.T) {
	for _, tier := range []Tier{TierPlus, TierPro} {
		t.Run(string(tier), func(t *testing.T) {
			got, err := GateDuration(tier, 300)
			if err != nil {
				t.Fatalf("GateDuration() error = %v", err)
			}
			if got.ClipSeconds != 0 {
				t.Errorf("ClipSeconds = %d, want 0 (full render)", got.ClipSeconds)
			}
			if got.Truncated {
				t.Error("paid tier should never truncate")
			}

			_, err = GateDuration(tier, MaxPaidSeconds+1)
			if !errors.Is(err, ErrDurationExceeded) {
				t.Errorf("over-limit error = %v, want ErrDurationExceeded", err)
			}
		})
	}
}

func TestClampPreviewSeconds(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero_uses_default", 0, PreviewDefaultSeconds},
		{"negative_uses_default", -5, PreviewDefaultSeconds},
		{"below_min", 2, PreviewMinSeconds},
		{"at_min", 5, 5},
		{"inside", 45, 45},
		{"at_max", 60, 60},
		{"above_max", 600, PreviewMaxSeconds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPreviewSeconds(tt.in); got != tt.want {
				t.Errorf("ClampPreviewSeconds(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{"free", TierFree},
		{"plus", TierPlus},
		{"PRO", TierPro},
		{" pro ", TierPro},
		{"", TierFree},
		{"enterprise", TierFree},
	}

	for _, tt := range tests {
		if got := ParseTier(tt.in); got != tt.want {
			t.Errorf("ParseTier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
