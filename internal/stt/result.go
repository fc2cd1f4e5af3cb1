package stt

// Response is what a Recognizer returns: result segments in the order the
// service produced them
type Response struct {
	Segments []Segment
}

// Segment is one discrete result unit with ranked alternatives, best first
type Segment struct {
	Alternatives []Alternative
}

// Alternative is one transcription hypothesis
type Alternative struct {
	Transcript string
	Confidence float64
}

// Result represents the outcome of Transcriber.Transcribe
type Result struct {
	Transcript string  // Concatenated best alternatives, may be empty
	Confidence float64 // Not range-checked
	Provider   string
	Config     RecognitionConfig // What was declared to the provider
	AudioPath  string            // The file actually sent, converted or not
	Converted  bool
}
