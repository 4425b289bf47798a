package target

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name           string
		in             string
		wantName       string
		wantIntegrated float64
		wantTruePeak   float64
		wantRange      float64
	}{
		{"spotify", "spotify", "spotify", -14, -1.0, 11},
		{"apple", "apple", "apple", -16, -1.0, 11},
		{"club", "club", "club", -8, -0.5, 8},
		{"radio", "radio", "radio", -16, -1.0, 8},
		{"streaming_safe", "streaming_safe", "streaming_safe", -16, -1.5, 11},
		{"case_and_space_insensitive", "  Spotify ", "spotify", -14, -1.0, 11},
		{"unknown_falls_back", "tidal", DefaultName, -14, -1.0, 11},
		{"empty_falls_back", "", DefaultName, -14, -1.0, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Lookup(tt.in)
			if p.Name != tt.wantName {
				t.Errorf("Lookup(%q).Name = %q, want %q", tt.in, p.Name, tt.wantName)
			}
			if p.Integrated != tt.wantIntegrated {
				t.Errorf("Integrated = %v, want %v", p.Integrated, tt.wantIntegrated)
			}
			if p.TruePeak != tt.wantTruePeak {
				t.Errorf("TruePeak = %v, want %v", p.TruePeak, tt.wantTruePeak)
			}
			if p.Range != tt.wantRange {
				t.Errorf("Range = %v, want %v", p.Range, tt.wantRange)
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 7 {
		t.Fatalf("Names() returned %d entries, want 7", len(names))
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"spotify", "youtube", "apple", "club", "radio", "streaming_safe", DefaultName} {
		if !seen[want] {
			t.Errorf("Names() missing %q", want)
		}
	}
}
