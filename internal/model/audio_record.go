package model

import "time"

// AudioRecord is the metadata for one uploaded audio file
type AudioRecord struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	FilePath    string    `json:"filePath"`
	ContentType string    `json:"contentType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAudioRecord builds a record for a freshly written file. The ID is
// assigned by the repository on Create.
func NewAudioRecord(userID int64, filePath, contentType string) *AudioRecord {
	return &AudioRecord{
		UserID:      userID,
		FilePath:    filePath,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
}
