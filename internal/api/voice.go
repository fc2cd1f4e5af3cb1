package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"voicetrace/internal/model"
	"voicetrace/internal/repository"
	"voicetrace/internal/storage"
	"voicetrace/internal/utils"

	"github.com/gin-gonic/gin"
)

// uploadRecord handles POST /api/v1/voice/record
func (h *Handler) uploadRecord(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(c, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return
		}
		log.Printf("[Upload] FormFile error: %v", err)
		utils.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if file.Size == 0 {
		utils.Error(c, http.StatusBadRequest, "file is empty")
		return
	}

	userID, err := strconv.ParseInt(c.PostForm("userId"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "userId must be an integer")
		return
	}

	saved, err := storage.SaveAudio(h.uploadDir, file, h.now())
	if err != nil {
		log.Printf("[Upload] Error saving audio: %v", err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	rec := model.NewAudioRecord(userID, saved.Path, saved.ContentType)
	if err := h.records.Create(c.Request.Context(), rec); err != nil {
		log.Printf("[Upload] Failed to persist record, file left at %s: %v", saved.Path, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[Upload] Audio uploaded: record=%s, user=%d, size=%d, type=%s",
		rec.ID, userID, saved.Size, saved.ContentType)
	utils.Success(c, gin.H{
		"message":   "File uploaded successfully",
		"filePath":  rec.FilePath,
		"recordId":  rec.ID,
		"createdAt": rec.CreatedAt,
	})
}

// transcribe handles POST /api/v1/voice/transcribe?recordId=
func (h *Handler) transcribe(c *gin.Context) {
	recordID := c.Query("recordId")
	if recordID == "" {
		utils.Error(c, http.StatusBadRequest, "recordId is required")
		return
	}

	rec, ok := h.findRecord(c, recordID)
	if !ok {
		return
	}

	result, err := h.transcriber.Transcribe(c.Request.Context(), rec.FilePath)
	if err != nil {
		log.Printf("[Transcribe] STT error for record %s: %v", recordID, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	transcript := model.NewSpeechTranscript(rec.ID, result.Transcript, result.Confidence)
	if err := h.transcripts.Create(c.Request.Context(), transcript); err != nil {
		log.Printf("[Transcribe] Failed to save transcript for record %s: %v", recordID, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[Transcribe] Record %s transcribed by %s: transcript=%s, confidence=%.2f",
		recordID, result.Provider, transcript.ID, transcript.Confidence)
	utils.Success(c, gin.H{
		"recordId":     rec.ID,
		"transcriptId": transcript.ID,
		"text":         transcript.Text,
		"confidence":   transcript.Confidence,
		"createdAt":    transcript.CreatedAt,
	})
}

// analyze handles POST /api/v1/voice/analyze/:transcriptId
func (h *Handler) analyze(c *gin.Context) {
	transcript, ok := h.findTranscript(c, c.Param("transcriptId"))
	if !ok {
		return
	}

	fields := h.extractor.Extract(transcript.Text)
	log.Printf("[Analyze] Transcript %s: intent=%v", transcript.ID, fields["intent"])
	utils.Success(c, gin.H(fields))
}

// listTranscripts handles GET /api/v1/voice/transcripts
func (h *Handler) listTranscripts(c *gin.Context) {
	items, err := h.transcripts.List(c.Request.Context())
	if err != nil {
		log.Printf("Error listing transcripts: %v", err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.Success(c, gin.H{
		"items": items,
		"count": len(items),
	})
}

type updateTranscriptRequest struct {
	Text *string `json:"text" binding:"required"`
}

// updateTranscript handles PUT /api/v1/voice/transcripts/:id
func (h *Handler) updateTranscript(c *gin.Context) {
	var req updateTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "text is required")
		return
	}

	id := c.Param("id")
	updated, err := h.transcripts.UpdateText(c.Request.Context(), id, *req.Text)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Error(c, http.StatusNotFound, "transcript not found")
			return
		}
		log.Printf("Error updating transcript %s: %v", id, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.Success(c, updated)
}

// listRecordsByUser handles GET /api/v1/voice/records?userId=
func (h *Handler) listRecordsByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "userId must be an integer")
		return
	}

	items, err := h.records.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error listing records for user %d: %v", userID, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.Success(c, gin.H{
		"items": items,
		"count": len(items),
	})
}

// getRecord handles GET /api/v1/voice/records/:recordId
func (h *Handler) getRecord(c *gin.Context) {
	rec, ok := h.findRecord(c, c.Param("recordId"))
	if !ok {
		return
	}
	utils.Success(c, rec)
}

// listTranscriptsByRecord handles GET /api/v1/voice/records/:recordId/transcripts
func (h *Handler) listTranscriptsByRecord(c *gin.Context) {
	rec, ok := h.findRecord(c, c.Param("recordId"))
	if !ok {
		return
	}

	items, err := h.transcripts.ListByAudioRecord(c.Request.Context(), rec.ID)
	if err != nil {
		log.Printf("Error listing transcripts for record %s: %v", rec.ID, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.Success(c, gin.H{
		"items": items,
		"count": len(items),
	})
}

// findRecord writes the error response itself and reports whether the
// handler should continue
func (h *Handler) findRecord(c *gin.Context, id string) (*model.AudioRecord, bool) {
	rec, err := h.records.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Error(c, http.StatusNotFound, "record not found")
			return nil, false
		}
		log.Printf("Error getting record %s: %v", id, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rec, true
}

func (h *Handler) findTranscript(c *gin.Context, id string) (*model.SpeechTranscript, bool) {
	t, err := h.transcripts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Error(c, http.StatusNotFound, "transcript not found")
			return nil, false
		}
		log.Printf("Error getting transcript %s: %v", id, err)
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return t, true
}
