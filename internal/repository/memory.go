package repository

import (
	"context"
	"fmt"
	"sync"

	"voicetrace/internal/model"

	"github.com/google/uuid"
)

// memoryStore holds both collections for running without a database.
// Reads return copies to avoid races with later updates.
type memoryStore struct {
	mu sync.RWMutex

	records     map[string]*model.AudioRecord
	recordOrder []string

	transcripts     map[string]*model.SpeechTranscript
	transcriptOrder []string
}

// NewMemoryRepositories returns in-memory repositories sharing one store
func NewMemoryRepositories() (AudioRecordRepository, TranscriptRepository) {
	s := &memoryStore{
		records:     make(map[string]*model.AudioRecord),
		transcripts: make(map[string]*model.SpeechTranscript),
	}
	return &memoryAudioRecords{s}, &memoryTranscripts{s}
}

type memoryAudioRecords struct {
	s *memoryStore
}

func (r *memoryAudioRecords) Create(_ context.Context, rec *model.AudioRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec.ID = uuid.NewString()
	recCopy := *rec
	r.s.records[rec.ID] = &recCopy
	r.s.recordOrder = append(r.s.recordOrder, rec.ID)
	return nil
}

func (r *memoryAudioRecords) GetByID(_ context.Context, id string) (*model.AudioRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.records[id]
	if !ok {
		return nil, fmt.Errorf("audio record %s: %w", id, ErrNotFound)
	}
	recCopy := *rec
	return &recCopy, nil
}

func (r *memoryAudioRecords) ListByUser(_ context.Context, userID int64) ([]model.AudioRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	records := []model.AudioRecord{}
	for _, id := range r.s.recordOrder {
		if rec := r.s.records[id]; rec.UserID == userID {
			records = append(records, *rec)
		}
	}
	return records, nil
}

type memoryTranscripts struct {
	s *memoryStore
}

func (r *memoryTranscripts) Create(_ context.Context, t *model.SpeechTranscript) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = uuid.NewString()
	tCopy := *t
	r.s.transcripts[t.ID] = &tCopy
	r.s.transcriptOrder = append(r.s.transcriptOrder, t.ID)
	return nil
}

func (r *memoryTranscripts) GetByID(_ context.Context, id string) (*model.SpeechTranscript, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.transcripts[id]
	if !ok {
		return nil, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}
	tCopy := *t
	return &tCopy, nil
}

func (r *memoryTranscripts) List(_ context.Context) ([]model.SpeechTranscript, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	transcripts := make([]model.SpeechTranscript, 0, len(r.s.transcriptOrder))
	for _, id := range r.s.transcriptOrder {
		transcripts = append(transcripts, *r.s.transcripts[id])
	}
	return transcripts, nil
}

func (r *memoryTranscripts) ListByAudioRecord(_ context.Context, audioRecordID string) ([]model.SpeechTranscript, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	transcripts := []model.SpeechTranscript{}
	for _, id := range r.s.transcriptOrder {
		if t := r.s.transcripts[id]; t.AudioRecordID == audioRecordID {
			transcripts = append(transcripts, *t)
		}
	}
	return transcripts, nil
}

func (r *memoryTranscripts) UpdateText(_ context.Context, id, text string) (*model.SpeechTranscript, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transcripts[id]
	if !ok {
		return nil, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}
	t.Text = text
	tCopy := *t
	return &tCopy, nil
}
