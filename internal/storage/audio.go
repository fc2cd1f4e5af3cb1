package storage

import (
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// SavedAudio describes a file written by SaveAudio
type SavedAudio struct {
	Path        string // absolute path of the stored file
	ContentType string // sniffed MIME type, empty when detection failed
	Size        int64
}

// FileName builds the stored name: unix milliseconds, an underscore, and
// the base of the original name. Two uploads of the same name within the
// same millisecond collide.
func FileName(now time.Time, original string) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + filepath.Base(original)
}

// SaveAudio writes an uploaded file into dir, creating dir when missing
func SaveAudio(dir string, file *multipart.FileHeader, now time.Time) (*SavedAudio, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	dst, err := filepath.Abs(filepath.Join(dir, FileName(now, file.Filename)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload path: %w", err)
	}

	if err := saveMultipartFile(file, dst); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	saved := &SavedAudio{Path: dst}
	if info, err := os.Stat(dst); err == nil {
		saved.Size = info.Size()
	}

	mtype, err := mimetype.DetectFile(dst)
	if err != nil {
		log.Printf("[Storage] Could not detect content type of %s: %v", dst, err)
	} else {
		saved.ContentType = mtype.String()
	}

	return saved, nil
}

/* helper */
func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := out.ReadFrom(src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
