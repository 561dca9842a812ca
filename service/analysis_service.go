package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"tosdetective-backend/gemini"
	"tosdetective-backend/models"
	"tosdetective-backend/repository"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyText        = errors.New("document text is empty")
	ErrEmptyQuestion    = errors.New("question is empty")
	ErrEmptyClause      = errors.New("clause is empty")
	ErrDocumentNotFound = errors.New("document not found")
	ErrClientNotSet     = errors.New("gemini client not set")
	ErrGuardNotSet      = errors.New("guard not set")
)

// DefaultHistoryLimit bounds the persisted analysis history
const DefaultHistoryLimit = 10

// AnalysisService runs the document-analysis features, routing every call
// through the quota/failure guard and persisting truncated snapshots.
type AnalysisService struct {
	client       *gemini.Client
	guard        *gemini.Guard
	mocks        *MockGenerator
	genaiClient  *genai.Client
	docRepo      *repository.DocumentRepository
	historyLimit int

	// seq orders analyses so a slow early result cannot clobber the
	// snapshot of a later one.
	seq atomic.Int64
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// WithGeminiClient sets the HTTP Gemini client
func WithGeminiClient(client *gemini.Client) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.client = client
	}
}

// WithGuard sets the quota/failure guard
func WithGuard(guard *gemini.Guard) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.guard = guard
	}
}

// WithGenAIClient sets the Gemini SDK client used for document Q&A
func WithGenAIClient(client *genai.Client) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.genaiClient = client
	}
}

// WithDocumentRepository sets the document repository
func WithDocumentRepository(repo *repository.DocumentRepository) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.docRepo = repo
	}
}

// WithHistoryLimit overrides the persisted history bound
func WithHistoryLimit(limit int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{
		mocks:        NewMockGenerator(),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Guard exposes the guard for status reporting
func (s *AnalysisService) Guard() *gemini.Guard {
	return s.guard
}

// SetAPIKey submits a user-provided key and resets the guard to live mode
func (s *AnalysisService) SetAPIKey(key string) {
	s.guard.SetAPIKey(key)
}

func (s *AnalysisService) ready() error {
	if s.client == nil {
		return ErrClientNotSet
	}
	if s.guard == nil {
		return ErrGuardNotSet
	}
	return nil
}

func (s *AnalysisService) flash() bool {
	return gemini.IsFlashModel(s.client.PrimaryModel())
}

// SimplifyTextRequest represents a request to simplify document text
type SimplifyTextRequest struct {
	Text string
}

// SimplifyTextResult represents the result of simplification
type SimplifyTextResult struct {
	Text   string
	Mocked bool
}

// SimplifyText rewrites the document in plain language
func (s *AnalysisService) SimplifyText(ctx context.Context, req SimplifyTextRequest) (*SimplifyTextResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	text, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (string, error) {
			return s.client.GenerateWithFallback(ctx, gemini.SimplifyPrompt(req.Text, s.flash()))
		},
		func() string {
			return s.mocks.SimplifyText(req.Text)
		})
	if err != nil {
		return nil, err
	}

	return &SimplifyTextResult{Text: text, Mocked: mocked}, nil
}

// IdentifyRiskyClausesRequest represents a risk-identification request
type IdentifyRiskyClausesRequest struct {
	Text string
}

// IdentifyRiskyClausesResult represents the flagged clauses
type IdentifyRiskyClausesResult struct {
	Clauses models.Clauses
	Mocked  bool
}

// IdentifyRiskyClauses flags clauses that are risky for the user
func (s *AnalysisService) IdentifyRiskyClauses(ctx context.Context, req IdentifyRiskyClausesRequest) (*IdentifyRiskyClausesResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	clauses, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (models.Clauses, error) {
			raw, err := s.client.GenerateWithFallback(ctx, gemini.RiskyClausesPrompt(req.Text, s.flash()))
			if err != nil {
				return nil, err
			}
			return clausesFromRecords(gemini.ExtractClauseArray(raw)), nil
		},
		func() models.Clauses {
			return s.mocks.IdentifyRiskyClauses(req.Text)
		})
	if err != nil {
		return nil, err
	}

	return &IdentifyRiskyClausesResult{Clauses: clauses, Mocked: mocked}, nil
}

// SummarizeDocumentRequest represents a summarization request
type SummarizeDocumentRequest struct {
	Text string
}

// SummarizeDocumentResult represents the summary
type SummarizeDocumentResult struct {
	Summary string
	Mocked  bool
}

// SummarizeDocument produces a bullet-point summary of the document
func (s *AnalysisService) SummarizeDocument(ctx context.Context, req SummarizeDocumentRequest) (*SummarizeDocumentResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	summary, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (string, error) {
			return s.client.GenerateWithFallback(ctx, gemini.SummaryPrompt(req.Text, s.flash()))
		},
		func() string {
			return s.mocks.SummarizeDocument(req.Text)
		})
	if err != nil {
		return nil, err
	}

	return &SummarizeDocumentResult{Summary: summary, Mocked: mocked}, nil
}

// PredictFutureRisksRequest represents a risk-forecast request
type PredictFutureRisksRequest struct {
	Text string
}

// PredictFutureRisksResult represents the forecast tree
type PredictFutureRisksResult struct {
	Prediction map[string]interface{}
	Mocked     bool
}

// PredictFutureRisks forecasts how the terms may affect the user over time
func (s *AnalysisService) PredictFutureRisks(ctx context.Context, req PredictFutureRisksRequest) (*PredictFutureRisksResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	prediction, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (map[string]interface{}, error) {
			raw, err := s.client.GenerateWithFallback(ctx, gemini.PredictionPrompt(req.Text, s.flash()))
			if err != nil {
				return nil, err
			}
			return gemini.ExtractObjectOrSentinel(raw), nil
		},
		func() map[string]interface{} {
			return s.mocks.PredictFutureRisks(req.Text)
		})
	if err != nil {
		return nil, err
	}

	return &PredictFutureRisksResult{Prediction: prediction, Mocked: mocked}, nil
}

// AnswerQuestionRequest represents a document Q&A request
type AnswerQuestionRequest struct {
	Text     string
	Question string
}

// AnswerQuestionResult represents the answer
type AnswerQuestionResult struct {
	Answer string
	Mocked bool
}

// AnswerQuestion answers a user question about the document. The SDK client
// serves the call when configured; the raw HTTP chain is the fallback.
func (s *AnalysisService) AnswerQuestion(ctx context.Context, req AnswerQuestionRequest) (*AnswerQuestionResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	answer, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (string, error) {
			prompt := gemini.QuestionPrompt(req.Text, req.Question, s.flash())
			if s.genaiClient != nil {
				text, err := s.generateViaSDK(ctx, prompt)
				if err == nil {
					return text, nil
				}
				log.Printf("SDK generation failed, falling back to HTTP chain: %v", err)
			}
			return s.client.GenerateWithFallback(ctx, prompt)
		},
		func() string {
			return s.mocks.AnswerQuestion(req.Text, req.Question)
		})
	if err != nil {
		return nil, err
	}

	return &AnswerQuestionResult{Answer: answer, Mocked: mocked}, nil
}

// generateViaSDK runs one generation through the official SDK client
func (s *AnalysisService) generateViaSDK(ctx context.Context, prompt string) (string, error) {
	model := s.genaiClient.GenerativeModel(s.client.PrimaryModel())
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", gemini.ErrMalformedResponse
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok && text != "" {
			return string(text), nil
		}
	}
	return "", gemini.ErrMalformedResponse
}

// RewriteClauseRequest represents a clause-rewrite request
type RewriteClauseRequest struct {
	Clause string
}

// RewriteClauseResult represents the fairer rewrite
type RewriteClauseResult struct {
	Rewritten string
	Mocked    bool
}

// RewriteClause rewrites one clause to be fairer to the user
func (s *AnalysisService) RewriteClause(ctx context.Context, req RewriteClauseRequest) (*RewriteClauseResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Clause) == "" {
		return nil, ErrEmptyClause
	}

	rewritten, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (string, error) {
			return s.client.GenerateWithFallback(ctx, gemini.RewriteClausePrompt(req.Clause))
		},
		func() string {
			return s.mocks.RewriteClause(req.Clause)
		})
	if err != nil {
		return nil, err
	}

	return &RewriteClauseResult{Rewritten: rewritten, Mocked: mocked}, nil
}

// AnalyzeDocumentRequest represents a full-document analysis request
type AnalyzeDocumentRequest struct {
	UserID   *uuid.UUID
	FileName string
	Text     string
}

// AnalyzeDocumentResult represents the assembled analysis
type AnalyzeDocumentResult struct {
	Document *models.Document
	Notice   string
}

// analysisBundle carries the three concurrent analysis outputs
type analysisBundle struct {
	simplified string
	clauses    models.Clauses
	summary    string
}

// AnalyzeDocument runs simplification, risk identification and summarization
// concurrently and assembles the Document. The join is all-succeed: any
// single failure discards every partial result, after which the guard
// decides between retry and wholesale offline fallback.
func (s *AnalysisService) AnalyzeDocument(ctx context.Context, req AnalyzeDocumentRequest) (*AnalyzeDocumentResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	seq := s.seq.Add(1)

	bundle, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (analysisBundle, error) {
			return s.analyzeLive(ctx, req.Text)
		},
		func() analysisBundle {
			return analysisBundle{
				simplified: s.mocks.SimplifyText(req.Text),
				clauses:    s.mocks.IdentifyRiskyClauses(req.Text),
				summary:    s.mocks.SummarizeDocument(req.Text),
			}
		})
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:             uuid.New(),
		UserID:         req.UserID,
		FileName:       req.FileName,
		OriginalText:   req.Text,
		SimplifiedText: bundle.simplified,
		RiskyClauses:   bundle.clauses,
		Summary:        bundle.summary,
		Sequence:       seq,
		MockGenerated:  mocked,
	}

	s.storeSnapshot(ctx, doc)

	return &AnalyzeDocumentResult{Document: doc, Notice: s.guard.Notice()}, nil
}

// analyzeLive fires the three feature calls concurrently. No ordering is
// guaranteed between them; all must settle successfully before the bundle is
// assembled.
func (s *AnalysisService) analyzeLive(ctx context.Context, text string) (analysisBundle, error) {
	var out analysisBundle
	flash := s.flash()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.client.GenerateWithFallback(gctx, gemini.SimplifyPrompt(text, flash))
		if err != nil {
			return err
		}
		out.simplified = raw
		return nil
	})
	g.Go(func() error {
		raw, err := s.client.GenerateWithFallback(gctx, gemini.RiskyClausesPrompt(text, flash))
		if err != nil {
			return err
		}
		out.clauses = clausesFromRecords(gemini.ExtractClauseArray(raw))
		return nil
	})
	g.Go(func() error {
		raw, err := s.client.GenerateWithFallback(gctx, gemini.SummaryPrompt(text, flash))
		if err != nil {
			return err
		}
		out.summary = raw
		return nil
	})

	if err := g.Wait(); err != nil {
		return analysisBundle{}, err
	}
	return out, nil
}

// storeSnapshot persists the truncated copy and prunes history. A result
// whose analysis has been superseded by a newer one is discarded instead of
// clobbering the latest snapshot.
func (s *AnalysisService) storeSnapshot(ctx context.Context, doc *models.Document) {
	if s.docRepo == nil {
		return
	}
	if doc.Sequence < s.seq.Load() {
		log.Printf("Discarding stale analysis result (sequence %d)", doc.Sequence)
		return
	}

	snap := doc.Snapshot()
	if err := s.docRepo.Create(ctx, snap); err != nil {
		log.Printf("Warning: failed to persist analysis snapshot: %v", err)
		return
	}
	doc.CreatedAt = snap.CreatedAt

	if err := s.docRepo.PruneHistory(ctx, s.historyLimit); err != nil {
		log.Printf("Warning: failed to prune analysis history: %v", err)
	}
}

// GetDocumentRequest represents a request for one stored analysis
type GetDocumentRequest struct {
	ID uuid.UUID
}

// GetDocumentResult represents the stored analysis
type GetDocumentResult struct {
	Document *models.Document
}

// GetDocument retrieves a stored analysis snapshot
func (s *AnalysisService) GetDocument(ctx context.Context, req GetDocumentRequest) (*GetDocumentResult, error) {
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}

	doc, err := s.docRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	return &GetDocumentResult{Document: doc}, nil
}

// ListRecentDocumentsRequest represents a history request
type ListRecentDocumentsRequest struct {
	Limit int
}

// ListRecentDocumentsResult represents the bounded history
type ListRecentDocumentsResult struct {
	Documents []*models.Document
}

// ListRecentDocuments lists the most recent stored analyses, newest first
func (s *AnalysisService) ListRecentDocuments(ctx context.Context, req ListRecentDocumentsRequest) (*ListRecentDocumentsResult, error) {
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}

	limit := req.Limit
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	docs, err := s.docRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	return &ListRecentDocumentsResult{Documents: docs}, nil
}

// GetLatestDocumentResult represents the newest stored analysis
type GetLatestDocumentResult struct {
	Document *models.Document
}

// GetLatestDocument retrieves the most recent analysis snapshot
func (s *AnalysisService) GetLatestDocument(ctx context.Context) (*GetLatestDocumentResult, error) {
	if s.docRepo == nil {
		return nil, errors.New("document repository not set")
	}

	doc, err := s.docRepo.GetLatest(ctx)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	return &GetLatestDocumentResult{Document: doc}, nil
}

// DeleteDocumentRequest identifies the snapshot to remove
type DeleteDocumentRequest struct {
	ID uuid.UUID
}

// DeleteDocument removes a stored analysis snapshot
func (s *AnalysisService) DeleteDocument(ctx context.Context, req DeleteDocumentRequest) error {
	if s.docRepo == nil {
		return errors.New("document repository not set")
	}

	return s.docRepo.Delete(ctx, req.ID)
}

// clausesFromRecords converts interpreter output into typed clauses
func clausesFromRecords(records []map[string]interface{}) models.Clauses {
	clauses := make(models.Clauses, 0, len(records))
	for _, rec := range records {
		clause := models.Clause{
			Clause:      stringField(rec, "clause"),
			Explanation: stringField(rec, "explanation"),
			RiskLevel:   models.ParseRiskLevel(stringField(rec, "riskLevel")),
			Category:    stringField(rec, "category"),
			RawResponse: stringField(rec, "rawResponse"),
		}
		if clause.Category == "" && clause.RawResponse == "" {
			clause.Category = "General"
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func stringField(rec map[string]interface{}, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}
