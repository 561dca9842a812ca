// Package extract validates uploaded files and pulls plain text out of them.
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MaxFileSize is the upload ceiling, enforced before any extraction
const MaxFileSize = 10 * 1024 * 1024 // 10MB

var (
	ErrUnsupportedFileType = errors.New("file type not allowed; allowed types: PDF, TXT, DOC, DOCX")
	ErrFileTooLarge        = fmt.Errorf("file size exceeds maximum of %d bytes", MaxFileSize)
	ErrEmptyExtractedText  = errors.New("no readable text could be extracted from the file")
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".doc":  true,
	".docx": true,
}

// AllowedExtension reports whether the filename carries an accepted extension
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// FromUpload validates an upload and extracts its text. PDFs get a naive
// printable-text scrape; DOC/DOCX are read as plain text without binary
// parsing, so genuine Word binaries tend to produce little usable text and
// fail the empty-text check.
func FromUpload(filename string, size int64, r io.Reader) (string, error) {
	if !AllowedExtension(filename) {
		return "", ErrUnsupportedFileType
	}
	if size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	// Guard against callers lying about size
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	var text string
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		text = printableRuns(data)
	} else {
		text = strings.ToValidUTF8(string(data), " ")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyExtractedText
	}
	return text, nil
}

// printableRuns collects runs of printable ASCII from raw bytes, which
// recovers readable fragments from text-bearing PDFs without a PDF parser.
func printableRuns(data []byte) string {
	const minRun = 4

	var b strings.Builder
	var run []byte
	flush := func() {
		if len(run) >= minRun {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.Write(run)
		}
		run = run[:0]
	}

	for _, c := range data {
		if c >= 0x20 && c < 0x7f {
			run = append(run, c)
		} else {
			flush()
		}
	}
	flush()

	return b.String()
}
