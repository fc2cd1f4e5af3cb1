package stt

import (
	"path/filepath"
	"strings"
)

// Encoding names follow the Google Speech-to-Text v1 RecognitionConfig enum
type Encoding string

const (
	EncodingUnspecified Encoding = "ENCODING_UNSPECIFIED"
	EncodingLinear16    Encoding = "LINEAR16"
	EncodingFLAC        Encoding = "FLAC"
)

// RecognitionConfig is declared alongside the audio. SampleRateHertz of 0
// means "omit and let the service detect it".
type RecognitionConfig struct {
	Encoding        Encoding
	SampleRateHertz int
	LanguageCode    string

	// FileName is the base name of the file actually sent. Google ignores
	// it; Whisper picks the container format from it.
	FileName string
}

type formatRule struct {
	convert    bool
	encoding   Encoding
	sampleRate int
}

// formatTable is the only place the extension decides anything.
// Browser-recorded opus containers get converted to WAV first; the
// declared encoding is still left unspecified for them.
var formatTable = map[string]formatRule{
	".wav":  {encoding: EncodingLinear16, sampleRate: 16000},
	".pcm":  {encoding: EncodingLinear16, sampleRate: 16000},
	".flac": {encoding: EncodingFLAC},
	".mp3":  {encoding: EncodingUnspecified},
	".webm": {convert: true, encoding: EncodingUnspecified},
	".opus": {convert: true, encoding: EncodingUnspecified},
	".ogg":  {convert: true, encoding: EncodingUnspecified},
}

func lookupFormat(path string) formatRule {
	if rule, ok := formatTable[strings.ToLower(filepath.Ext(path))]; ok {
		return rule
	}
	return formatRule{encoding: EncodingUnspecified}
}

// NeedsConversion reports whether path must go through the converter
// before recognition
func NeedsConversion(path string) bool {
	return lookupFormat(path).convert
}

// AudioConfigFor returns the config declared for the original file path.
// It does not depend on whether a conversion later succeeds.
func AudioConfigFor(path, languageCode string) RecognitionConfig {
	rule := lookupFormat(path)
	return RecognitionConfig{
		Encoding:        rule.encoding,
		SampleRateHertz: rule.sampleRate,
		LanguageCode:    languageCode,
	}
}
