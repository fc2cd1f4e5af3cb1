package stt

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voicetrace/internal/media"
)

// ConfidencePolicy decides how per-segment confidences become one score
type ConfidencePolicy string

const (
	// ConfidenceLast keeps the confidence of the last segment
	ConfidenceLast ConfidencePolicy = "last"
	// ConfidenceMean averages the confidence of every segment
	ConfidenceMean ConfidencePolicy = "mean"
)

// Transcriber normalizes an audio file and runs it through a Recognizer
type Transcriber struct {
	recognizer   Recognizer
	converter    media.Converter
	languageCode string
	policy       ConfidencePolicy
	timeout      time.Duration
}

type Option func(*Transcriber)

func WithConfidencePolicy(p ConfidencePolicy) Option {
	return func(t *Transcriber) { t.policy = p }
}

// WithTimeout bounds the recognition call; zero leaves it unbounded
func WithTimeout(d time.Duration) Option {
	return func(t *Transcriber) { t.timeout = d }
}

func NewTranscriber(recognizer Recognizer, converter media.Converter, languageCode string, opts ...Option) *Transcriber {
	t := &Transcriber{
		recognizer:   recognizer,
		converter:    converter,
		languageCode: languageCode,
		policy:       ConfidenceLast,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe converts the file when its format requires it, then sends it
// to the recognizer. A failed conversion is logged and the original file
// is sent instead.
func (t *Transcriber) Transcribe(ctx context.Context, filePath string) (*Result, error) {
	startTime := time.Now()

	audioPath := filePath
	converted := false
	if NeedsConversion(filePath) {
		wavPath := media.ConvertedPath(filePath)
		if err := t.converter.ToWAV(ctx, filePath, wavPath); err != nil {
			log.Printf("[FFmpeg] Conversion failed for %s, using original file: %v", filePath, err)
		} else {
			audioPath = wavPath
			converted = true
			log.Printf("[FFmpeg] Converted %s to WAV: %s", filePath, wavPath)
		}
	}

	cfg := AudioConfigFor(filePath, t.languageCode)
	cfg.FileName = filepath.Base(audioPath)

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	log.Printf("[STT] Recognizing %s with %s: size=%d bytes, encoding=%s, sampleRate=%d",
		audioPath, t.recognizer.Name(), len(audio), cfg.Encoding, cfg.SampleRateHertz)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	resp, err := t.recognizer.Recognize(ctx, audio, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s recognition failed: %w", t.recognizer.Name(), err)
	}

	text, confidence := collapse(resp, t.policy)

	log.Printf("[STT] Transcription finished: provider=%s, confidence=%.2f, length=%d, duration=%v",
		t.recognizer.Name(), confidence, len(text), time.Since(startTime))

	return &Result{
		Transcript: text,
		Confidence: confidence,
		Provider:   t.recognizer.Name(),
		Config:     cfg,
		AudioPath:  audioPath,
		Converted:  converted,
	}, nil
}

// collapse joins the best alternative of every segment in order. Only the
// first alternative of a segment is consulted; segments without
// alternatives are skipped.
func collapse(resp *Response, policy ConfidencePolicy) (string, float64) {
	if resp == nil {
		return "", 0
	}

	var (
		builder strings.Builder
		last    float64
		sum     float64
		counted int
	)
	for _, seg := range resp.Segments {
		if len(seg.Alternatives) == 0 {
			continue
		}
		best := seg.Alternatives[0]
		builder.WriteString(best.Transcript)
		last = best.Confidence
		sum += best.Confidence
		counted++
	}

	if policy == ConfidenceMean && counted > 0 {
		return builder.String(), sum / float64(counted)
	}
	return builder.String(), last
}
