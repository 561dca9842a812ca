package service

import (
	"testing"

	"tosdetective-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockIdentifyRiskyClausesKeywords(t *testing.T) {
	mocks := NewMockGenerator()
	text := "We may terminate your account at our sole discretion. Changes take effect without notice to you."

	clauses := mocks.IdentifyRiskyClauses(text)
	require.NotEmpty(t, clauses)

	categories := make(map[string]bool)
	for _, c := range clauses {
		categories[c.Category] = true
	}
	assert.True(t, categories["Account Termination"], "'terminate' must map to Account Termination")
	assert.True(t, categories["Hidden Trap"], "'without notice' must map to Hidden Trap")
}

func TestMockIdentifyRiskyClausesQuotesSentence(t *testing.T) {
	mocks := NewMockGenerator()
	text := "Welcome to our service. You agree to waive your right to a jury trial. Thanks for reading."

	clauses := mocks.IdentifyRiskyClauses(text)
	require.Len(t, clauses, 1)
	assert.Equal(t, "You agree to waive your right to a jury trial.", clauses[0].Clause)
	assert.Equal(t, "Rights Waiver", clauses[0].Category)
	assert.Equal(t, models.RiskHigh, clauses[0].RiskLevel)
	assert.Contains(t, clauses[0].Explanation, MockDisclaimer)
}

func TestMockIdentifyRiskyClausesNoMatches(t *testing.T) {
	mocks := NewMockGenerator()

	clauses := mocks.IdentifyRiskyClauses("A perfectly benign greeting.")
	require.Len(t, clauses, 1)
	assert.Equal(t, models.RiskUnknown, clauses[0].RiskLevel)
	assert.Equal(t, "General", clauses[0].Category)
}

func TestMockSimplifyTextReplacesLegalese(t *testing.T) {
	mocks := NewMockGenerator()

	got := mocks.SimplifyText("The user shall indemnify the provider pursuant to section 4.")
	assert.Contains(t, got, MockDisclaimer)
	assert.Contains(t, got, "will cover the costs of")
	assert.Contains(t, got, "under section 4")
	assert.NotContains(t, got, "shall")
	assert.NotContains(t, got, "pursuant to")
}

func TestMockSummarizeDocumentToS(t *testing.T) {
	mocks := NewMockGenerator()

	got := mocks.SummarizeDocument("We may terminate accounts. Disputes go to arbitration. We limit liability.")
	assert.Contains(t, got, "terms of service")
	assert.Contains(t, got, "terminate or suspend")
	assert.Contains(t, got, "arbitration")
	assert.Contains(t, got, MockDisclaimer)
}

func TestMockSummarizeDocumentPrivacyPolicy(t *testing.T) {
	mocks := NewMockGenerator()

	got := mocks.SummarizeDocument("This Privacy Policy explains what data we collect and the cookies we use.")
	assert.Contains(t, got, "privacy policy")
	assert.Contains(t, got, "collects personal information")
	assert.Contains(t, got, "Cookies")
}

func TestMockPredictFutureRisks(t *testing.T) {
	mocks := NewMockGenerator()

	got := mocks.PredictFutureRisks("We may modify these terms. We may terminate accounts. Fees may apply.")

	predictions, ok := got["predictions"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, predictions, 3)
	assert.Equal(t, 65, got["overallRiskScore"])
	assert.Equal(t, MockDisclaimer, got["disclaimer"])
}

func TestMockPredictFutureRisksEmptyDocument(t *testing.T) {
	mocks := NewMockGenerator()

	got := mocks.PredictFutureRisks("Nothing of note here.")
	predictions, ok := got["predictions"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, predictions, 1)
	assert.Equal(t, "Low", predictions[0]["likelihood"])
	assert.Equal(t, 35, got["overallRiskScore"])
}

func TestMockAnswerQuestion(t *testing.T) {
	mocks := NewMockGenerator()
	text := "Refunds are issued within 30 days. Accounts may be closed for abuse."

	got := mocks.AnswerQuestion(text, "How do refunds work?")
	assert.Contains(t, got, "Refunds are issued within 30 days.")
	assert.Contains(t, got, MockDisclaimer)

	got = mocks.AnswerQuestion(text, "What about pets?")
	assert.Contains(t, got, "does not appear to address")
}

func TestMockRewriteClauseSoftens(t *testing.T) {
	mocks := NewMockGenerator()

	got := mocks.RewriteClause("We may suspend your account at our sole discretion without notice.")
	assert.Contains(t, got, "reasonable discretion")
	assert.Contains(t, got, "30 days' prior notice")
	assert.Contains(t, got, MockDisclaimer)
}

func TestMockCompareDocuments(t *testing.T) {
	mocks := NewMockGenerator()
	textA := "We may terminate accounts. Disputes go to arbitration."
	textB := "We may terminate accounts. You waive class action rights."

	analysis := mocks.CompareDocuments(textA, textB)

	assert.True(t, analysis.MockGenerated)
	assert.NotNil(t, analysis.ContentMatching["overlapScore"])
	assert.Contains(t, analysis.KeyTermsAnalysis["sharedTerms"], "terminate")

	identical := mocks.CompareDocuments(textA, textA)
	assert.Equal(t, 100, identical.ContentMatching["overlapScore"])
}
