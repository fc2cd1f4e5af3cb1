package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"voicetrace/internal/model"

	"github.com/google/uuid"
)

// The queries below use $N placeholders, which both the pgx and the
// sqlite drivers accept.

type sqlAudioRecordRepository struct {
	db *sql.DB
}

// NewSQLAudioRecordRepository creates an audio record repository backed by
// the audio_records table
func NewSQLAudioRecordRepository(db *sql.DB) AudioRecordRepository {
	return &sqlAudioRecordRepository{db: db}
}

func (r *sqlAudioRecordRepository) Create(ctx context.Context, rec *model.AudioRecord) error {
	rec.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audio_records (id, user_id, file_path, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.UserID, rec.FilePath, rec.ContentType, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audio record: %w", err)
	}
	return nil
}

func (r *sqlAudioRecordRepository) GetByID(ctx context.Context, id string) (*model.AudioRecord, error) {
	var rec model.AudioRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, file_path, content_type, created_at
		FROM audio_records
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.UserID, &rec.FilePath, &rec.ContentType, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audio record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audio record: %w", err)
	}
	return &rec, nil
}

func (r *sqlAudioRecordRepository) ListByUser(ctx context.Context, userID int64) ([]model.AudioRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, file_path, content_type, created_at
		FROM audio_records
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audio records: %w", err)
	}
	defer rows.Close()

	records := []model.AudioRecord{}
	for rows.Next() {
		var rec model.AudioRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FilePath, &rec.ContentType, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audio record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

type sqlTranscriptRepository struct {
	db *sql.DB
}

// NewSQLTranscriptRepository creates a transcript repository backed by the
// speech_transcripts table
func NewSQLTranscriptRepository(db *sql.DB) TranscriptRepository {
	return &sqlTranscriptRepository{db: db}
}

func (r *sqlTranscriptRepository) Create(ctx context.Context, t *model.SpeechTranscript) error {
	t.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO speech_transcripts (id, audio_record_id, text, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.AudioRecordID, t.Text, t.Confidence, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	return nil
}

func (r *sqlTranscriptRepository) GetByID(ctx context.Context, id string) (*model.SpeechTranscript, error) {
	var t model.SpeechTranscript
	err := r.db.QueryRowContext(ctx, `
		SELECT id, audio_record_id, text, confidence, created_at
		FROM speech_transcripts
		WHERE id = $1
	`, id).Scan(&t.ID, &t.AudioRecordID, &t.Text, &t.Confidence, &t.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	return &t, nil
}

func (r *sqlTranscriptRepository) List(ctx context.Context) ([]model.SpeechTranscript, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, audio_record_id, text, confidence, created_at
		FROM speech_transcripts
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	return scanTranscripts(rows)
}

func (r *sqlTranscriptRepository) ListByAudioRecord(ctx context.Context, audioRecordID string) ([]model.SpeechTranscript, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, audio_record_id, text, confidence, created_at
		FROM speech_transcripts
		WHERE audio_record_id = $1
		ORDER BY created_at ASC
	`, audioRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcripts: %w", err)
	}
	return scanTranscripts(rows)
}

func (r *sqlTranscriptRepository) UpdateText(ctx context.Context, id, text string) (*model.SpeechTranscript, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE speech_transcripts
		SET text = $1
		WHERE id = $2
	`, text, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update transcript: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update transcript: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("transcript %s: %w", id, ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

func scanTranscripts(rows *sql.Rows) ([]model.SpeechTranscript, error) {
	defer rows.Close()

	transcripts := []model.SpeechTranscript{}
	for rows.Next() {
		var t model.SpeechTranscript
		if err := rows.Scan(&t.ID, &t.AudioRecordID, &t.Text, &t.Confidence, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return transcripts, nil
}
