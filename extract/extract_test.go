package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("terms.pdf"))
	assert.True(t, AllowedExtension("TERMS.TXT"))
	assert.True(t, AllowedExtension("contract.doc"))
	assert.True(t, AllowedExtension("contract.docx"))
	assert.False(t, AllowedExtension("image.png"))
	assert.False(t, AllowedExtension("archive.zip"))
	assert.False(t, AllowedExtension("noextension"))
}

func TestFromUploadPlainText(t *testing.T) {
	content := "You agree to the following terms."

	text, err := FromUpload("terms.txt", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestFromUploadUnsupportedType(t *testing.T) {
	_, err := FromUpload("photo.png", 10, strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestFromUploadTooLargeBySize(t *testing.T) {
	_, err := FromUpload("terms.txt", MaxFileSize+1, strings.NewReader("small body"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFromUploadTooLargeByContent(t *testing.T) {
	// Declared size lies; the reader guard must still catch the overflow
	body := strings.NewReader(strings.Repeat("a", MaxFileSize+1))

	_, err := FromUpload("terms.txt", 100, body)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFromUploadEmptyText(t *testing.T) {
	_, err := FromUpload("terms.txt", 3, strings.NewReader("   "))
	assert.ErrorIs(t, err, ErrEmptyExtractedText)
}

func TestFromUploadPDFScrapesPrintableRuns(t *testing.T) {
	// Binary noise around two readable fragments, the second too short to keep
	raw := "\x00\x01\x02Terms of Service apply here\x00\x03ab\x00"

	text, err := FromUpload("terms.pdf", int64(len(raw)), strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Terms of Service apply here", text)
}

func TestFromUploadPDFAllBinary(t *testing.T) {
	raw := "\x00\x01\x02\x03\x04"

	_, err := FromUpload("scan.pdf", int64(len(raw)), strings.NewReader(raw))
	assert.ErrorIs(t, err, ErrEmptyExtractedText)
}

func TestFromUploadInvalidUTF8Sanitized(t *testing.T) {
	raw := "valid text \xff\xfe more text"

	text, err := FromUpload("terms.txt", int64(len(raw)), strings.NewReader(raw))
	require.NoError(t, err)
	assert.Contains(t, text, "valid text")
	assert.Contains(t, text, "more text")
	assert.True(t, strings.ToValidUTF8(text, "") == text)
}
