package stt

import "context"

//go:generate mockgen -source=interface.go -destination=mock_recognizer.go -package=stt

// Recognizer sends audio to a remote speech-recognition service
type Recognizer interface {
	// Recognize transcribes raw audio bytes described by cfg
	Recognize(ctx context.Context, audio []byte, cfg RecognitionConfig) (*Response, error)

	// Name returns the name of the provider (e.g., "google", "openai")
	Name() string
}
