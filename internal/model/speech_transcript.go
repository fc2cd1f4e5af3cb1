package model

import "time"

// SpeechTranscript is one transcription result of an AudioRecord.
// AudioRecordID is a plain back-reference; the store does not enforce it
// and a record may have any number of transcripts.
type SpeechTranscript struct {
	ID            string    `json:"id"`
	AudioRecordID string    `json:"audioRecordId"`
	Text          string    `json:"text"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewSpeechTranscript(audioRecordID, text string, confidence float64) *SpeechTranscript {
	return &SpeechTranscript{
		AudioRecordID: audioRecordID,
		Text:          text,
		Confidence:    confidence,
		CreatedAt:     time.Now().UTC(),
	}
}
