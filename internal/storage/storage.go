// Package storage implements the object-storage boundary for uploaded files.
// The production deployment points this at a mounted bucket; the contract is
// just "bytes in, public URL out".
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tecelaria/internal/apperr"
)

// MaxUploadBytes caps a single upload (base64-decoded size).
const MaxUploadBytes = 25 << 20 // 25 MiB

// extByContentType doubles as the allowlist of accepted uploads.
var extByContentType = map[string]string{
	"audio/mpeg":      ".mp3",
	"audio/mp4":       ".m4a",
	"audio/ogg":       ".ogg",
	"audio/wav":       ".wav",
	"audio/webm":      ".webm",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// FileStore persists uploads on the local filesystem and serves them under
// baseURL/uploads/.
type FileStore struct {
	dir     string
	baseURL string
}

func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &FileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes the payload under a fresh object name and returns its public URL.
func (s *FileStore) Save(data []byte, contentType, fileName string) (string, error) {
	if len(data) == 0 {
		return "", apperr.New(apperr.Validation, "empty file payload")
	}
	if len(data) > MaxUploadBytes {
		return "", apperr.Newf(apperr.Validation, "file exceeds %d bytes", MaxUploadBytes)
	}
	ext, ok := extByContentType[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", apperr.Newf(apperr.Validation, "unsupported content type %q", contentType)
	}
	if e := strings.ToLower(filepath.Ext(fileName)); e != "" && hasAllowedExt(e) {
		ext = e
	}

	objectName := uuid.NewString() + ext
	path := filepath.Join(s.dir, objectName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %q: %w", objectName, err)
	}

	return fmt.Sprintf("%s/uploads/%s", s.baseURL, objectName), nil
}

func hasAllowedExt(ext string) bool {
	for _, e := range extByContentType {
		if e == ext {
			return true
		}
	}
	return false
}

// Dir exposes the storage root so the HTTP server can mount it as static files.
func (s *FileStore) Dir() string { return s.dir }
