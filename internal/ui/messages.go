package ui

// ProgressMsg represents a progress update from the mastering pipeline
type ProgressMsg struct {
	Pass     int     // 1=decode, 2=measure, 3=render
	PassName string  // "Decoding", "Measuring" or "Rendering"
	Progress float64 // 0.0 to 1.0
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished mastering
type FileCompleteMsg struct {
	FileIndex  int
	OutputPath string
	Target     string
	TwoPass    bool
	Truncated  bool
	InputLUFS  float64
	OutputLUFS float64
	Error      error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}
