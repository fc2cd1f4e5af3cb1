package stt

import (
	"context"
	"fmt"
	"log"

	"voicetrace/internal/config"
)

// CreateRecognizer creates a Recognizer based on the STT configuration
func CreateRecognizer(ctx context.Context, cfg config.STTConfig) (Recognizer, error) {
	switch cfg.Provider {
	case "", "google":
		return createGoogleRecognizer(ctx, cfg)
	case "openai":
		log.Printf("[STT Factory] Creating OpenAI STT provider with model: %s", cfg.OpenAIModel)
		return NewOpenAIRecognizer(cfg.OpenAIKey, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: google, openai", cfg.Provider)
	}
}

func createGoogleRecognizer(ctx context.Context, cfg config.STTConfig) (Recognizer, error) {
	if isGoogleAPIKey(cfg.GoogleKey) {
		log.Printf("[STT Factory] Creating Google STT provider with API key")
	} else {
		log.Printf("[STT Factory] Creating Google STT provider with project: %q", cfg.GoogleProjectID)
	}
	return NewGoogleRecognizer(ctx, cfg.GoogleProjectID, cfg.GoogleKey, cfg.GoogleEndpoint)
}

// Unavailable returns a Recognizer that fails every call with err. It lets
// the server start when the provider cannot be built.
func Unavailable(name string, err error) Recognizer {
	return unavailable{name: name, err: err}
}

type unavailable struct {
	name string
	err  error
}

func (u unavailable) Name() string { return u.name }

func (u unavailable) Recognize(context.Context, []byte, RecognitionConfig) (*Response, error) {
	return nil, fmt.Errorf("STT provider not available: %w", u.err)
}
