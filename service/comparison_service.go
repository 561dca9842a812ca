package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"tosdetective-backend/gemini"
	"tosdetective-backend/models"
)

var ErrMissingComparisonText = errors.New("both documents must contain text")

// ComparisonService compares two documents across the analysis dimensions
type ComparisonService struct {
	client *gemini.Client
	guard  *gemini.Guard
	mocks  *MockGenerator
}

// ComparisonServiceOption is a functional option for ComparisonService
type ComparisonServiceOption func(*ComparisonService)

// CompareWithGeminiClient sets the HTTP Gemini client
func CompareWithGeminiClient(client *gemini.Client) ComparisonServiceOption {
	return func(s *ComparisonService) {
		s.client = client
	}
}

// CompareWithGuard sets the quota/failure guard
func CompareWithGuard(guard *gemini.Guard) ComparisonServiceOption {
	return func(s *ComparisonService) {
		s.guard = guard
	}
}

// NewComparisonService creates a new comparison service
func NewComparisonService(opts ...ComparisonServiceOption) *ComparisonService {
	s := &ComparisonService{mocks: NewMockGenerator()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompareDocumentsRequest represents a two-document comparison request
type CompareDocumentsRequest struct {
	TextA string
	TextB string
}

// CompareDocumentsResult represents the comparison tree
type CompareDocumentsResult struct {
	Analysis *models.ComparisonAnalysis
	Mocked   bool
	Notice   string
}

// CompareDocuments builds the six-dimension comparison via one structured
// model call, with the offline generator as fallback.
func (s *ComparisonService) CompareDocuments(ctx context.Context, req CompareDocumentsRequest) (*CompareDocumentsResult, error) {
	if s.client == nil {
		return nil, ErrClientNotSet
	}
	if s.guard == nil {
		return nil, ErrGuardNotSet
	}
	if strings.TrimSpace(req.TextA) == "" || strings.TrimSpace(req.TextB) == "" {
		return nil, ErrMissingComparisonText
	}

	analysis, mocked, err := gemini.Do(ctx, s.guard,
		func(ctx context.Context) (models.ComparisonAnalysis, error) {
			raw, err := s.client.GenerateWithFallback(ctx, gemini.ComparisonPrompt(req.TextA, req.TextB))
			if err != nil {
				return models.ComparisonAnalysis{}, err
			}
			obj, err := gemini.ExtractJSONObject(raw)
			if err != nil {
				return models.ComparisonAnalysis{}, err
			}
			return comparisonFromObject(obj), nil
		},
		func() models.ComparisonAnalysis {
			return s.mocks.CompareDocuments(req.TextA, req.TextB)
		})
	if err != nil {
		return nil, err
	}

	return &CompareDocumentsResult{
		Analysis: &analysis,
		Mocked:   mocked,
		Notice:   s.guard.Notice(),
	}, nil
}

// CompareBasicResult represents the lightweight textual comparison
type CompareBasicResult struct {
	Comparison map[string]interface{}
}

// CompareBasic compares two documents with local textual analysis only. It
// never calls the model, so it works without an API key.
func (s *ComparisonService) CompareBasic(ctx context.Context, req CompareDocumentsRequest) (*CompareBasicResult, error) {
	if strings.TrimSpace(req.TextA) == "" || strings.TrimSpace(req.TextB) == "" {
		return nil, ErrMissingComparisonText
	}

	setA := wordSet(req.TextA)
	setB := wordSet(req.TextB)
	shared := 0
	for w := range setA {
		if setB[w] {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	similarity := 0
	if union > 0 {
		similarity = shared * 100 / union
	}

	return &CompareBasicResult{Comparison: map[string]interface{}{
		"similarityScore": similarity,
		"sharedWordCount": shared,
		"sharedRiskTerms": sharedRiskTerms(req.TextA, req.TextB),
		"documentA": map[string]interface{}{
			"wordCount":         len(strings.Fields(req.TextA)),
			"avgSentenceLength": avgSentenceLen(req.TextA),
		},
		"documentB": map[string]interface{}{
			"wordCount":         len(strings.Fields(req.TextB)),
			"avgSentenceLength": avgSentenceLen(req.TextB),
		},
	}}, nil
}

// CompareComprehensiveResult represents the full offline dimension tree
type CompareComprehensiveResult struct {
	Analysis *models.ComparisonAnalysis
}

// CompareComprehensive builds the six-dimension comparison from local textual
// analysis, without touching the model
func (s *ComparisonService) CompareComprehensive(ctx context.Context, req CompareDocumentsRequest) (*CompareComprehensiveResult, error) {
	if strings.TrimSpace(req.TextA) == "" || strings.TrimSpace(req.TextB) == "" {
		return nil, ErrMissingComparisonText
	}

	analysis := s.mocks.CompareDocuments(req.TextA, req.TextB)
	return &CompareComprehensiveResult{Analysis: &analysis}, nil
}

// comparisonFromObject maps the parsed model object onto the typed dimension
// tree. Unknown keys are dropped; each dimension stays opaque.
func comparisonFromObject(obj map[string]interface{}) models.ComparisonAnalysis {
	// Round-trip through JSON so nested values keep their generic shape
	data, err := json.Marshal(obj)
	if err != nil {
		return models.ComparisonAnalysis{}
	}
	var analysis models.ComparisonAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return models.ComparisonAnalysis{}
	}
	return analysis
}
