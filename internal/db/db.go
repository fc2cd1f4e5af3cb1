package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"voicetrace/internal/config"
)

// Open connects to the configured database and applies the schema.
// Only the postgres and sqlite drivers are backed by database/sql; the
// memory driver never reaches here.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.New("database DSN is required")
		}
		conn, err = sql.Open("pgx", cfg.DSN)
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		conn, err = sql.Open("sqlite", cfg.DSN)
		if err == nil {
			// a single writer avoids SQLITE_BUSY under concurrent requests
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("[DB] Connected to %s database", cfg.Driver)
	return conn, nil
}

// Migrate creates the two collections if they do not exist yet
func Migrate(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("db is nil")
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// No foreign key from speech_transcripts to audio_records: the
// back-reference is informational only.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS audio_records (
    id TEXT PRIMARY KEY,
    user_id BIGINT NOT NULL,
    file_path TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audio_records_user_id
    ON audio_records (user_id);

CREATE TABLE IF NOT EXISTS speech_transcripts (
    id TEXT PRIMARY KEY,
    audio_record_id TEXT NOT NULL,
    text TEXT NOT NULL,
    confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_speech_transcripts_audio_record_id
    ON speech_transcripts (audio_record_id);
`
