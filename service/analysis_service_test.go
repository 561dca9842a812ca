package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"tosdetective-backend/gemini"
	"tosdetective-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

// newGeminiStub serves handler for every model, counting requests
func newGeminiStub(t *testing.T, calls *atomic.Int64, handler func(prompt string) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		require.NotEmpty(t, req.Contents)
		require.NotEmpty(t, req.Contents[0].Parts)

		status, respBody := handler(req.Contents[0].Parts[0].Text)
		w.WriteHeader(status)
		fmt.Fprint(w, respBody)
	}))
}

func newTestService(t *testing.T, srvURL, apiKey string) *AnalysisService {
	t.Helper()
	keys := gemini.NewKeyStore(apiKey)
	client := gemini.NewClient(
		gemini.WithBaseURL(srvURL),
		gemini.WithKeyStore(keys),
		gemini.WithModels([]string{"gemini-2.0-flash"}),
	)
	return NewAnalysisService(
		WithGeminiClient(client),
		WithGuard(gemini.NewGuard(keys)),
	)
}

const clauseArrayText = `Here you go: [{"clause": "We may terminate your account.", "explanation": "One-sided termination.", "riskLevel": "High", "category": "Account Termination"}]`

func TestSimplifyTextLive(t *testing.T) {
	var calls atomic.Int64
	srv := newGeminiStub(t, &calls, func(prompt string) (int, string) {
		return http.StatusOK, generateResponse("plain english version")
	})
	defer srv.Close()

	svc := newTestService(t, srv.URL, "key")

	result, err := svc.SimplifyText(context.Background(), SimplifyTextRequest{Text: "legalese"})
	require.NoError(t, err)
	assert.False(t, result.Mocked)
	assert.Equal(t, "plain english version", result.Text)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSimplifyTextEmptyInput(t *testing.T) {
	svc := newTestService(t, "http://unused", "key")

	_, err := svc.SimplifyText(context.Background(), SimplifyTextRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestFeaturesServeMockWithoutKey(t *testing.T) {
	var calls atomic.Int64
	srv := newGeminiStub(t, &calls, func(prompt string) (int, string) {
		return http.StatusOK, generateResponse("should never be reached")
	})
	defer srv.Close()

	svc := newTestService(t, srv.URL, "")
	ctx := context.Background()
	text := "We may terminate your account at any time."

	simplify, err := svc.SimplifyText(ctx, SimplifyTextRequest{Text: text})
	require.NoError(t, err)
	assert.True(t, simplify.Mocked)
	assert.Contains(t, simplify.Text, MockDisclaimer)

	risks, err := svc.IdentifyRiskyClauses(ctx, IdentifyRiskyClausesRequest{Text: text})
	require.NoError(t, err)
	assert.True(t, risks.Mocked)
	assert.NotEmpty(t, risks.Clauses)

	summary, err := svc.SummarizeDocument(ctx, SummarizeDocumentRequest{Text: text})
	require.NoError(t, err)
	assert.True(t, summary.Mocked)

	predict, err := svc.PredictFutureRisks(ctx, PredictFutureRisksRequest{Text: text})
	require.NoError(t, err)
	assert.True(t, predict.Mocked)

	answer, err := svc.AnswerQuestion(ctx, AnswerQuestionRequest{Text: text, Question: "Can they terminate?"})
	require.NoError(t, err)
	assert.True(t, answer.Mocked)

	rewrite, err := svc.RewriteClause(ctx, RewriteClauseRequest{Clause: text})
	require.NoError(t, err)
	assert.True(t, rewrite.Mocked)

	assert.Equal(t, int64(0), calls.Load(), "no key means no network traffic for any feature")
}

func TestIdentifyRiskyClausesParsesArray(t *testing.T) {
	var calls atomic.Int64
	srv := newGeminiStub(t, &calls, func(prompt string) (int, string) {
		return http.StatusOK, generateResponse(clauseArrayText)
	})
	defer srv.Close()

	svc := newTestService(t, srv.URL, "key")

	result, err := svc.IdentifyRiskyClauses(context.Background(), IdentifyRiskyClausesRequest{Text: "doc"})
	require.NoError(t, err)
	assert.False(t, result.Mocked)
	require.Len(t, result.Clauses, 1)
	assert.Equal(t, "We may terminate your account.", result.Clauses[0].Clause)
	assert.Equal(t, models.RiskHigh, result.Clauses[0].RiskLevel)
	assert.Equal(t, "Account Termination", result.Clauses[0].Category)
}

func TestIdentifyRiskyClausesNonJSONSentinel(t *testing.T) {
	var calls atomic.Int64
	srv := newGeminiStub(t, &calls, func(prompt string) (int, string) {
		return http.StatusOK, generateResponse("I am unable to produce structured output.")
	})
	defer srv.Close()

	svc := newTestService(t, srv.URL, "key")

	result, err := svc.IdentifyRiskyClauses(context.Background(), IdentifyRiskyClausesRequest{Text: "doc"})
	require.NoError(t, err)
	assert.False(t, result.Mocked, "a non-JSON reply is degraded, not treated as failure")
	require.Len(t, result.Clauses, 1)
	assert.Equal(t, gemini.NonJSONSentinel, result.Clauses[0].Clause)
	assert.Equal(t, "I am unable to produce structured output.", result.Clauses[0].RawResponse)
	assert.Equal(t, models.RiskUnknown, result.Clauses[0].RiskLevel)
}

func TestPredictFutureRisksParsesObject(t *testing.T) {
	var calls atomic.Int64
	srv := newGeminiStub(t, &calls, func(prompt string) (int, string) {
		return http.StatusOK, generateResponse(`{"predictions": [], "overallRiskScore": 40}`)
	})
	defer srv.Close()

	svc := newTestService(t, srv.URL, "key")

	result, err := svc.PredictFutureRisks(context.Background(), PredictFutureRisksRequest{Text: "doc"})
	require.NoError(t, err)
	assert.False(t, result.Mocked)
	assert.Equal(t, float64(40), result.Prediction["overallRiskScore"])
}

func TestAnalyzeDocumentLive(t *testing.T) {
	var calls atomic.Int64
	srv := newGeminiStub(t, &calls, func(prompt string) (int, string) {
		return http.StatusOK, generateResponse(clauseArrayText)
	})
	defer srv.Close()

	svc := newTestService(t, srv.URL, "key")

	result, err := svc.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{
		FileName: "tos.txt",
		Text:     "We may terminate your account.",
	})
	require.NoError(t, err)

	doc := result.Document
	assert.False(t, doc.MockGenerated)
	assert.Equal(t, "tos.txt", doc.FileName)
	assert.Equal(t, clauseArrayText, doc.SimplifiedText)
	assert.Equal(t, clauseArrayText, doc.Summary)
	require.Len(t, doc.RiskyClauses, 1)
	assert.Equal(t, int64(1), doc.Sequence)
	assert.Empty(t, result.Notice)
	assert.Equal(t, int64(3), calls.Load(), "simplify, risks and summary each hit the API once")
}

func TestAnalyzeDocumentAllOrNothing(t *testing.T) {
	// The risks call fails while simplify and summary succeed. The join must
	// discard the partial live results and fall back to a fully mocked bundle.
	var calls atomic.Int64
	srv := newGeminiStub(t, &calls, func(prompt string) (int, string) {
		if strings.Contains(prompt, "JSON array") {
			return http.StatusInternalServerError, `{"error": {"status": "INTERNAL", "message": "boom"}}`
		}
		return http.StatusOK, generateResponse("live text")
	})
	defer srv.Close()

	svc := newTestService(t, srv.URL, "key")

	result, err := svc.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{
		FileName: "tos.txt",
		Text:     "We may terminate your account without notice.",
	})
	require.NoError(t, err)

	doc := result.Document
	assert.True(t, doc.MockGenerated)
	assert.Contains(t, doc.SimplifiedText, MockDisclaimer, "no partial live output may survive the failed join")
	assert.NotEqual(t, "live text", doc.SimplifiedText)
	assert.NotEmpty(t, doc.RiskyClauses)
	assert.NotEmpty(t, result.Notice)
	assert.Equal(t, gemini.StateOpen, svc.Guard().State())
}

func TestAnalyzeDocumentSequencesIncrease(t *testing.T) {
	svc := newTestService(t, "http://unused", "")

	first, err := svc.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{FileName: "a.txt", Text: "terms"})
	require.NoError(t, err)
	second, err := svc.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{FileName: "b.txt", Text: "terms"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Document.Sequence)
	assert.Equal(t, int64(2), second.Document.Sequence)
}

func TestAnswerQuestionValidation(t *testing.T) {
	svc := newTestService(t, "http://unused", "key")

	_, err := svc.AnswerQuestion(context.Background(), AnswerQuestionRequest{Text: "", Question: "q"})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = svc.AnswerQuestion(context.Background(), AnswerQuestionRequest{Text: "doc", Question: " "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestRewriteClauseValidation(t *testing.T) {
	svc := newTestService(t, "http://unused", "key")

	_, err := svc.RewriteClause(context.Background(), RewriteClauseRequest{Clause: ""})
	assert.ErrorIs(t, err, ErrEmptyClause)
}

func TestServiceRequiresClientAndGuard(t *testing.T) {
	svc := NewAnalysisService()

	_, err := svc.SimplifyText(context.Background(), SimplifyTextRequest{Text: "doc"})
	assert.ErrorIs(t, err, ErrClientNotSet)
}

func TestSnapshotAccessorsRequireRepository(t *testing.T) {
	svc := NewAnalysisService()

	_, err := svc.GetLatestDocument(context.Background())
	assert.Error(t, err)

	err = svc.DeleteDocument(context.Background(), DeleteDocumentRequest{ID: uuid.New()})
	assert.Error(t, err)
}
