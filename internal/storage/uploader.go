// Package storage abstracts blob uploads: bytes in, public URL out.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Uploader stores a file and returns the URL it will be served from.
type Uploader interface {
	Upload(filename string, data []byte) (string, error)
}

// LocalUploader writes uploads to a directory served as static files
// under /uploads.
type LocalUploader struct {
	dir string
}

// NewLocalUploader creates the upload directory if needed
func NewLocalUploader(dir string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir}, nil
}

// Upload writes the file under a timestamped name and returns its URL
func (u *LocalUploader) Upload(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(filename))
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/uploads/" + name, nil
}
