// Package target holds the catalog of named loudness targets a master
// can be normalized against.
package target

import "strings"

// Profile is one loudness target: the integrated loudness, true-peak
// ceiling, and loudness range handed to the engine's normalizer.
type Profile struct {
	Name       string
	Integrated float64 // LUFS
	TruePeak   float64 // dBTP
	Range      float64 // LU
}

// DefaultName is the catalog key used when a requested target is
// unknown or empty.
const DefaultName = "default"

// catalog is the immutable process-wide set of targets. Streaming
// platform values follow each platform's published normalization
// reference; club and radio are in-house profiles.
var catalog = map[string]Profile{
	"spotify":        {Name: "spotify", Integrated: -14, TruePeak: -1.0, Range: 11},
	"youtube":        {Name: "youtube", Integrated: -14, TruePeak: -1.0, Range: 11},
	"apple":          {Name: "apple", Integrated: -16, TruePeak: -1.0, Range: 11},
	"club":           {Name: "club", Integrated: -8, TruePeak: -0.5, Range: 8},
	"radio":          {Name: "radio", Integrated: -16, TruePeak: -1.0, Range: 8},
	"streaming_safe": {Name: "streaming_safe", Integrated: -16, TruePeak: -1.5, Range: 11},
	DefaultName:      {Name: DefaultName, Integrated: -14, TruePeak: -1.0, Range: 11},
}

// Lookup resolves a target name to its profile. Unknown names resolve
// to the default profile, never to an error.
func Lookup(name string) Profile {
	if p, ok := catalog[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return catalog[DefaultName]
}

// Names returns every catalog key in no particular order. Used for
// help output and input validation messages.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}
