package handlers

import (
	"fmt"
	"net/http"

	"tosdetective-backend/extract"
	"tosdetective-backend/models"
	"tosdetective-backend/repository"
	"tosdetective-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler handles HTTP requests for raw file storage
type FileHandler struct {
	fileRepo *repository.FileRepository
	storage  storage.Storage
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileRepo *repository.FileRepository, store storage.Storage) *FileHandler {
	return &FileHandler{
		fileRepo: fileRepo,
		storage:  store,
	}
}

// UploadFile handles POST /api/files/upload. Uploads are anonymous unless a
// user_id is supplied; document_id links the original to a stored analysis.
func (h *FileHandler) UploadFile(c *gin.Context) {
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

	var documentID *uuid.UUID
	if docIDStr := c.PostForm("document_id"); docIDStr != "" {
		did, err := uuid.Parse(docIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_DOCUMENT_ID",
					"message": "Invalid document_id format",
				},
			})
			return
		}
		documentID = &did
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

	if fileHeader.Size > extract.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", int64(extract.MaxFileSize)),
			},
		})
		return
	}

	if !extract.AllowedExtension(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, TXT, DOC, DOCX",
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

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	fileID := uuid.New()

	storagePath, err := h.storage.Upload(c.Request.Context(), fileID, fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": fmt.Sprintf("Failed to upload file: %v", err),
			},
		})
		return
	}

	fileRecord := &models.File{
		ID:          fileID,
		UserID:      userID,
		DocumentID:  documentID,
		Filename:    fileHeader.Filename,
		MimeType:    mimeType,
		Size:        fileHeader.Size,
		StoragePath: storagePath,
	}

	if err := h.fileRepo.Create(c.Request.Context(), fileRecord); err != nil {
		// Clean up the stored object so the record and storage stay in sync
		h.storage.Delete(c.Request.Context(), storagePath)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to save file record: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":         fileRecord.ID,
			"filename":   fileRecord.Filename,
			"mime_type":  fileRecord.MimeType,
			"size":       fileRecord.Size,
			"created_at": fileRecord.CreatedAt,
		},
	})
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid file ID format",
			},
		})
		return
	}

	file, err := h.fileRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "File not found",
			},
		})
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), file.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": fmt.Sprintf("Failed to download file: %v", err),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, nil)
}

// DeleteFile handles DELETE /api/files/:id. The stored object goes first so a
// storage failure leaves the record pointing at a still-existing object.
func (h *FileHandler) DeleteFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid file ID format",
			},
		})
		return
	}

	file, err := h.fileRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "File not found",
			},
		})
		return
	}

	if err := h.storage.Delete(c.Request.Context(), file.StoragePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": fmt.Sprintf("Failed to delete stored file: %v", err),
			},
		})
		return
	}

	if err := h.fileRepo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to delete file record: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// ListDocumentFiles handles GET /api/documents/:id/files
func (h *FileHandler) ListDocumentFiles(c *gin.Context) {
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

	files, err := h.fileRepo.ListByDocumentID(c.Request.Context(), id)
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
		"data":    files,
	})
}
