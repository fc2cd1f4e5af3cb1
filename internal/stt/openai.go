package stt

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIRecognizer implements Recognizer with the Whisper transcription
// endpoint. Whisper has no n-best list, so every segment carries a single
// alternative whose confidence is exp(avg_logprob).
type OpenAIRecognizer struct {
	client *openai.Client
	model  string
}

func NewOpenAIRecognizer(apiKey, model string) (*OpenAIRecognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	return newOpenAIRecognizer(openai.DefaultConfig(apiKey), model), nil
}

func newOpenAIRecognizer(cfg openai.ClientConfig, model string) *OpenAIRecognizer {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIRecognizer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIRecognizer) Name() string {
	return "openai"
}

// Recognize ignores Encoding and SampleRateHertz; Whisper detects both
func (p *OpenAIRecognizer) Recognize(ctx context.Context, audio []byte, cfg RecognitionConfig) (*Response, error) {
	name := cfg.FileName
	if name == "" {
		name = "audio.wav"
	}

	log.Printf("[OpenAI STT] Calling transcription API with model: %s", p.model)
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: name,
		Reader:   bytes.NewReader(audio),
		Language: whisperLanguage(cfg.LanguageCode),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		log.Printf("[OpenAI STT] API error: %v", err)
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	out := &Response{}
	for _, seg := range resp.Segments {
		out.Segments = append(out.Segments, Segment{
			Alternatives: []Alternative{{
				Transcript: seg.Text,
				Confidence: math.Exp(seg.AvgLogprob),
			}},
		})
	}

	// some models answer without segments
	if len(out.Segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		out.Segments = append(out.Segments, Segment{
			Alternatives: []Alternative{{Transcript: resp.Text}},
		})
	}
	return out, nil
}

// whisperLanguage turns a BCP-47 tag such as "en-US" into the ISO-639-1
// code Whisper expects
func whisperLanguage(tag string) string {
	lang, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(lang)
}
