package models

import (
	"time"

	"github.com/google/uuid"
)

// File represents an uploaded source file (the raw PDF/TXT the user sent)
type File struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	DocumentID  *uuid.UUID `json:"document_id,omitempty"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	StoragePath string     `json:"storage_path"`
	CreatedAt   time.Time  `json:"created_at"`
}
