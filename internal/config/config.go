package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string
	UploadDir      string
	MaxUploadBytes int64

	Database DatabaseConfig
	STT      STTConfig
	FFmpeg   FFmpegConfig
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type STTConfig struct {
	Provider        string
	LanguageCode    string
	ConfidenceMode  string
	Timeout         time.Duration
	GoogleProjectID string
	GoogleKey       string
	GoogleEndpoint  string
	OpenAIKey       string
	OpenAIModel     string
}

type FFmpegConfig struct {
	Path    string
	Timeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_MB", 32)
	v.SetDefault("STT_PROVIDER", "google")
	v.SetDefault("STT_LANGUAGE", "en-US")
	v.SetDefault("STT_CONFIDENCE", "last")
	v.SetDefault("STT_TIMEOUT_SECONDS", 0)
	v.SetDefault("GOOGLE_STT_ENDPOINT", "https://speech.googleapis.com/v1/speech:recognize")
	v.SetDefault("OPENAI_STT_MODEL", "whisper-1")
	v.SetDefault("FFMPEG_PATH", "ffmpeg")
	v.SetDefault("FFMPEG_TIMEOUT_SECONDS", 0)

	uploadDir, err := filepath.Abs(v.GetString("UPLOAD_DIR"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UPLOAD_DIR: %w", err)
	}

	cfg := &Config{
		Port:           v.GetString("PORT"),
		UploadDir:      uploadDir,
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_MB") << 20,
		Database:       databaseConfig(v),
		STT: STTConfig{
			Provider:        strings.ToLower(v.GetString("STT_PROVIDER")),
			LanguageCode:    v.GetString("STT_LANGUAGE"),
			ConfidenceMode:  strings.ToLower(v.GetString("STT_CONFIDENCE")),
			Timeout:         time.Duration(v.GetInt("STT_TIMEOUT_SECONDS")) * time.Second,
			GoogleProjectID: v.GetString("GOOGLE_STT_PROJECT_ID"),
			GoogleKey:       v.GetString("GOOGLE_STT_KEY_FILE"),
			GoogleEndpoint:  v.GetString("GOOGLE_STT_ENDPOINT"),
			OpenAIKey:       v.GetString("OPENAI_API_KEY"),
			OpenAIModel:     v.GetString("OPENAI_STT_MODEL"),
		},
		FFmpeg: FFmpegConfig{
			Path:    v.GetString("FFMPEG_PATH"),
			Timeout: time.Duration(v.GetInt("FFMPEG_TIMEOUT_SECONDS")) * time.Second,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// databaseConfig picks postgres when DATABASE_URL is set, sqlite when
// SQLITE_PATH is set, and in-memory storage otherwise
func databaseConfig(v *viper.Viper) DatabaseConfig {
	if dsn := v.GetString("DATABASE_URL"); dsn != "" {
		return DatabaseConfig{Driver: DriverPostgres, DSN: dsn}
	}
	if path := v.GetString("SQLITE_PATH"); path != "" {
		return DatabaseConfig{Driver: DriverSQLite, DSN: path}
	}
	return DatabaseConfig{Driver: DriverMemory}
}

func (c *Config) validate() error {
	switch c.STT.Provider {
	case "google", "openai":
	default:
		return fmt.Errorf("unsupported STT_PROVIDER: %s. Supported: google, openai", c.STT.Provider)
	}

	switch c.STT.ConfidenceMode {
	case "last", "mean":
	default:
		return fmt.Errorf("unsupported STT_CONFIDENCE: %s. Supported: last, mean", c.STT.ConfidenceMode)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}
