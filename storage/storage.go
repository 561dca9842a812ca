// Package storage abstracts where uploaded documents are kept. Local disk
// is used in development, S3 in deployment.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tosdetective-backend/config"
)

// Storage stores and retrieves uploaded document files
type Storage interface {
	// Upload stores a file and returns its storage path
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Download retrieves a file by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a file by storage path
	Delete(ctx context.Context, storagePath string) error
}

// New creates a storage backend from configuration
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		path := cfg.LocalPath
		if path == "" {
			path = "./storage/files"
		}
		return NewLocalStorage(path)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("s3 storage requires a bucket name")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// objectKey builds a unique, sanitized storage path for an uploaded file.
// Keys are sharded by the first two characters of the file ID so local
// directories and S3 prefixes stay shallow.
func objectKey(fileID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, base)

	id := fileID.String()
	return fmt.Sprintf("%s/%s_%s%s", id[:2], id, base, ext)
}

// contentTypeFor maps an upload's extension to a MIME type
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
