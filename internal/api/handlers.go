package api

import (
	"context"
	"time"

	"voicetrace/internal/analysis"
	"voicetrace/internal/repository"
	"voicetrace/internal/stt"
	"voicetrace/internal/utils"

	"github.com/gin-gonic/gin"
)

// Transcriber turns a stored audio file into text
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (*stt.Result, error)
}

// Handler serves the voice API
type Handler struct {
	records        repository.AudioRecordRepository
	transcripts    repository.TranscriptRepository
	transcriber    Transcriber
	extractor      *analysis.Extractor
	uploadDir      string
	maxUploadBytes int64
	now            func() time.Time
}

type HandlerConfig struct {
	Records        repository.AudioRecordRepository
	Transcripts    repository.TranscriptRepository
	Transcriber    Transcriber
	Extractor      *analysis.Extractor
	UploadDir      string
	MaxUploadBytes int64
}

func NewHandler(cfg HandlerConfig) *Handler {
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = analysis.NewExtractor()
	}
	return &Handler{
		records:        cfg.Records,
		transcripts:    cfg.Transcripts,
		transcriber:    cfg.Transcriber,
		extractor:      extractor,
		uploadDir:      cfg.UploadDir,
		maxUploadBytes: cfg.MaxUploadBytes,
		now:            time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Health check
	r.GET("/health", healthCheck)

	// API v1
	voice := r.Group("/api/v1/voice")
	{
		voice.POST("/record", h.uploadRecord)
		voice.POST("/transcribe", h.transcribe)
		voice.POST("/analyze/:transcriptId", h.analyze)
		voice.GET("/transcripts", h.listTranscripts)
		voice.PUT("/transcripts/:id", h.updateTranscript)

		voice.GET("/records", h.listRecordsByUser)
		voice.GET("/records/:recordId", h.getRecord)
		voice.GET("/records/:recordId/transcripts", h.listTranscriptsByRecord)
	}
}

// healthCheck returns server health status
func healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "voicetrace",
	})
}
