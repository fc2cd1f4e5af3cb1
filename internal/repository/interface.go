package repository

import (
	"context"
	"errors"

	"voicetrace/internal/model"
)

// ErrNotFound is returned when no row matches the requested identifier
var ErrNotFound = errors.New("not found")

// AudioRecordRepository defines data access for uploaded audio metadata
type AudioRecordRepository interface {
	// Create assigns an ID to rec and persists it
	Create(ctx context.Context, rec *model.AudioRecord) error

	// GetByID retrieves a record by ID, or ErrNotFound
	GetByID(ctx context.Context, id string) (*model.AudioRecord, error)

	// ListByUser retrieves every record uploaded by a user
	ListByUser(ctx context.Context, userID int64) ([]model.AudioRecord, error)
}

// TranscriptRepository defines data access for speech transcripts
type TranscriptRepository interface {
	// Create assigns an ID to t and persists it
	Create(ctx context.Context, t *model.SpeechTranscript) error

	// GetByID retrieves a transcript by ID, or ErrNotFound
	GetByID(ctx context.Context, id string) (*model.SpeechTranscript, error)

	// List retrieves every transcript
	List(ctx context.Context) ([]model.SpeechTranscript, error)

	// ListByAudioRecord retrieves the transcripts that reference a record
	ListByAudioRecord(ctx context.Context, audioRecordID string) ([]model.SpeechTranscript, error)

	// UpdateText replaces only the text of a transcript and returns the
	// updated row, or ErrNotFound
	UpdateText(ctx context.Context, id, text string) (*model.SpeechTranscript, error)
}
