package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tosdetective-backend/extract"
	"tosdetective-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for full-document analysis
type DocumentHandler struct {
	analysisService *service.AnalysisService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(analysisService *service.AnalysisService) *DocumentHandler {
	return &DocumentHandler{
		analysisService: analysisService,
	}
}

// AnalyzeDocument handles POST /api/documents. The uploaded file is
// validated, its text extracted, and the full analysis run and persisted.
func (h *DocumentHandler) AnalyzeDocument(c *gin.Context) {
	var userID *uuid.UUID
	if userIDStr := c.PostForm("user_id"); userIDStr != "" {
		uid, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_USER_ID",
					"message": "Invalid user_id format",
				},
			})
			return
		}
		userID = &uid
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	text, err := extract.FromUpload(fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		h.extractionError(c, err)
		return
	}

	result, err := h.analysisService.AnalyzeDocument(c.Request.Context(), service.AnalyzeDocumentRequest{
		UserID:   userID,
		FileName: fileHeader.Filename,
		Text:     text,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"document": result.Document,
			"notice":   result.Notice,
		},
	})
}

// GetDocument handles GET /api/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	result, err := h.analysisService.GetDocument(c.Request.Context(), service.GetDocumentRequest{
		ID: id,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Document,
	})
}

// GetLatestDocument handles GET /api/documents/latest
func (h *DocumentHandler) GetLatestDocument(c *gin.Context) {
	result, err := h.analysisService.GetLatestDocument(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No documents have been analyzed yet",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Document,
	})
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return
	}

	if err := h.analysisService.DeleteDocument(c.Request.Context(), service.DeleteDocumentRequest{ID: id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// ListDocuments handles GET /api/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be an integer",
				},
			})
			return
		}
		limit = n
	}

	result, err := h.analysisService.ListRecentDocuments(c.Request.Context(), service.ListRecentDocumentsRequest{
		Limit: limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Documents,
	})
}

// extractionError maps upload-validation errors onto the response envelope
func (h *DocumentHandler) extractionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, TXT, DOC, DOCX",
			},
		})
	case errors.Is(err, extract.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": "File size exceeds the 10MB limit",
			},
		})
	case errors.Is(err, extract.ErrEmptyExtractedText):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_DOCUMENT",
				"message": "No readable text could be extracted from the file",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
	}
}
