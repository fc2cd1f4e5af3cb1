package main

import (
	"context"
	"log"
	"os"

	"voicetrace/internal/analysis"
	"voicetrace/internal/api"
	"voicetrace/internal/config"
	"voicetrace/internal/db"
	"voicetrace/internal/media"
	"voicetrace/internal/repository"
	"voicetrace/internal/stt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	records, transcripts := openRepositories(ctx, cfg.Database)

	recognizer, err := stt.CreateRecognizer(ctx, cfg.STT)
	if err != nil {
		log.Printf("Warning: STT provider %s not available: %v. Transcription requests will fail.", cfg.STT.Provider, err)
		recognizer = stt.Unavailable(cfg.STT.Provider, err)
	} else {
		log.Printf("STT provider initialized: %s", recognizer.Name())
	}

	transcriber := stt.NewTranscriber(
		recognizer,
		media.NewFFmpeg(cfg.FFmpeg.Path, cfg.FFmpeg.Timeout),
		cfg.STT.LanguageCode,
		stt.WithConfidencePolicy(stt.ConfidencePolicy(cfg.STT.ConfidenceMode)),
		stt.WithTimeout(cfg.STT.Timeout),
	)

	handler := api.NewHandler(api.HandlerConfig{
		Records:        records,
		Transcripts:    transcripts,
		Transcriber:    transcriber,
		Extractor:      analysis.NewExtractor(),
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(api.CORS())
	handler.RegisterRoutes(r)

	log.Printf("Voicetrace backend running on :%s (uploads in %s)", cfg.Port, cfg.UploadDir)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openRepositories falls back to in-memory storage when no database is
// configured
func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (repository.AudioRecordRepository, repository.TranscriptRepository) {
	if cfg.Driver == config.DriverMemory {
		log.Println("DATABASE_URL and SQLITE_PATH not set, using in-memory storage")
		return repository.NewMemoryRepositories()
	}

	log.Printf("Initializing %s database connection...", cfg.Driver)
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return repository.NewSQLAudioRecordRepository(conn), repository.NewSQLTranscriptRepository(conn)
}
