package handlers

import (
	"errors"
	"net/http"

	"tosdetective-backend/gemini"
	"tosdetective-backend/service"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles HTTP requests for the analysis features
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// AnalyzeTextRequest represents the request body for the text-analysis routes
type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// SimplifyText handles POST /api/analyze/simplify
func (h *AnalysisHandler) SimplifyText(c *gin.Context) {
	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analysisService.SimplifyText(c.Request.Context(), service.SimplifyTextRequest{
		Text: req.Text,
	})
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"simplifiedText": result.Text,
			"mockGenerated":  result.Mocked,
		},
	})
}

// IdentifyRisks handles POST /api/analyze/risks
func (h *AnalysisHandler) IdentifyRisks(c *gin.Context) {
	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analysisService.IdentifyRiskyClauses(c.Request.Context(), service.IdentifyRiskyClausesRequest{
		Text: req.Text,
	})
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"riskyClauses":  result.Clauses,
			"mockGenerated": result.Mocked,
		},
	})
}

// Summarize handles POST /api/analyze/summary
func (h *AnalysisHandler) Summarize(c *gin.Context) {
	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analysisService.SummarizeDocument(c.Request.Context(), service.SummarizeDocumentRequest{
		Text: req.Text,
	})
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"summary":       result.Summary,
			"mockGenerated": result.Mocked,
		},
	})
}

// PredictRisks handles POST /api/analyze/predict
func (h *AnalysisHandler) PredictRisks(c *gin.Context) {
	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analysisService.PredictFutureRisks(c.Request.Context(), service.PredictFutureRisksRequest{
		Text: req.Text,
	})
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"prediction":    result.Prediction,
			"mockGenerated": result.Mocked,
		},
	})
}

// QuestionRequest represents the request body for document Q&A
type QuestionRequest struct {
	Text     string `json:"text" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// AnswerQuestion handles POST /api/question
func (h *AnalysisHandler) AnswerQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analysisService.AnswerQuestion(c.Request.Context(), service.AnswerQuestionRequest{
		Text:     req.Text,
		Question: req.Question,
	})
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"answer":        result.Answer,
			"mockGenerated": result.Mocked,
		},
	})
}

// RewriteRequest represents the request body for clause rewriting
type RewriteRequest struct {
	Clause string `json:"clause" binding:"required"`
}

// RewriteClause handles POST /api/rewrite
func (h *AnalysisHandler) RewriteClause(c *gin.Context) {
	var req RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analysisService.RewriteClause(c.Request.Context(), service.RewriteClauseRequest{
		Clause: req.Clause,
	})
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"rewrittenClause": result.Rewritten,
			"mockGenerated":   result.Mocked,
		},
	})
}

// SetKeyRequest represents the request body for submitting an API key
type SetKeyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// SetAPIKey handles POST /api/key
func (h *AnalysisHandler) SetAPIKey(c *gin.Context) {
	var req SetKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	h.analysisService.SetAPIKey(req.APIKey)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"state":         string(h.analysisService.Guard().State()),
			"usingMockData": h.analysisService.Guard().UsingMockData(),
		},
	})
}

// Status handles GET /api/status
func (h *AnalysisHandler) Status(c *gin.Context) {
	guard := h.analysisService.Guard()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"state":         string(guard.State()),
			"usingMockData": guard.UsingMockData(),
			"notice":        guard.Notice(),
		},
	})
}

// analysisError maps service errors onto the response envelope
func (h *AnalysisHandler) analysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyText),
		errors.Is(err, service.ErrEmptyQuestion),
		errors.Is(err, service.ErrEmptyClause):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_INPUT",
				"message": err.Error(),
			},
		})
	case errors.Is(err, gemini.ErrMissingAPIKey):
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_API_KEY",
				"message": "No API key configured. Submit one via POST /api/key.",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
	}
}
