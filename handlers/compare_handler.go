package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"tosdetective-backend/extract"
	"tosdetective-backend/service"

	"github.com/gin-gonic/gin"
)

// CompareHandler handles HTTP requests for the two-document comparison
// endpoints. These routes predate the envelope used elsewhere: the payload
// key is comparison, comprehensiveAnalysis or analysis at the top level.
type CompareHandler struct {
	comparisonService *service.ComparisonService
}

// NewCompareHandler creates a new comparison handler
func NewCompareHandler(comparisonService *service.ComparisonService) *CompareHandler {
	return &CompareHandler{
		comparisonService: comparisonService,
	}
}

// comparisonMimeTypes restricts comparison uploads to PDF and plain text
var comparisonMimeTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
}

// Compare handles POST /api/compare
func (h *CompareHandler) Compare(c *gin.Context) {
	textA, textB, ok := h.extractPair(c)
	if !ok {
		return
	}

	result, err := h.comparisonService.CompareBasic(c.Request.Context(), service.CompareDocumentsRequest{
		TextA: textA,
		TextB: textB,
	})
	if err != nil {
		h.comparisonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"comparison": result.Comparison,
	})
}

// CompareComprehensive handles POST /api/compare-comprehensive
func (h *CompareHandler) CompareComprehensive(c *gin.Context) {
	textA, textB, ok := h.extractPair(c)
	if !ok {
		return
	}

	result, err := h.comparisonService.CompareComprehensive(c.Request.Context(), service.CompareDocumentsRequest{
		TextA: textA,
		TextB: textB,
	})
	if err != nil {
		h.comparisonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"comprehensiveAnalysis": result.Analysis,
	})
}

// CompareGemini handles POST /api/compare-gemini
func (h *CompareHandler) CompareGemini(c *gin.Context) {
	textA, textB, ok := h.extractPair(c)
	if !ok {
		return
	}

	result, err := h.comparisonService.CompareDocuments(c.Request.Context(), service.CompareDocumentsRequest{
		TextA: textA,
		TextB: textB,
	})
	if err != nil {
		h.comparisonError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"analysis":      result.Analysis,
		"mockGenerated": result.Mocked,
		"notice":        result.Notice,
	})
}

// extractPair pulls exactly two files out of the multipart form, validates
// them and extracts their text. On failure it writes the error response and
// returns ok=false.
func (h *CompareHandler) extractPair(c *gin.Context) (string, string, bool) {
	fileA, err := c.FormFile("file1")
	if err != nil {
		h.pairError(c, "Two files are required: file1 and file2")
		return "", "", false
	}
	fileB, err := c.FormFile("file2")
	if err != nil {
		h.pairError(c, "Two files are required: file1 and file2")
		return "", "", false
	}

	textA, ok := h.extractOne(c, fileA)
	if !ok {
		return "", "", false
	}
	textB, ok := h.extractOne(c, fileB)
	if !ok {
		return "", "", false
	}

	return textA, textB, true
}

func (h *CompareHandler) extractOne(c *gin.Context, fileHeader *multipart.FileHeader) (string, bool) {
	if fileHeader.Size > extract.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "File size exceeds the 10MB limit",
		})
		return "", false
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
		case ".pdf":
			mimeType = "application/pdf"
		case ".txt":
			mimeType = "text/plain"
		}
	}
	if !comparisonMimeTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "File type not allowed. Allowed types: PDF, TXT",
		})
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return "", false
	}
	defer file.Close()

	text, err := extract.FromUpload(fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyExtractedText) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "No readable text could be extracted from " + fileHeader.Filename,
			})
			return "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return "", false
	}

	return text, true
}

func (h *CompareHandler) pairError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

func (h *CompareHandler) comparisonError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrMissingComparisonText) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
