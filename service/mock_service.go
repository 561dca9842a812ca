package service

import (
	"fmt"
	"sort"
	"strings"

	"tosdetective-backend/models"
)

// MockDisclaimer labels every offline result. The generators keep the UI
// functional without a paid key and carry no claim of analytical accuracy.
const MockDisclaimer = "[Offline sample analysis - not produced by a language model]"

// riskRule maps a risk-indicating term to a static category, level and
// explanation.
type riskRule struct {
	term        string
	category    string
	level       models.RiskLevel
	explanation string
}

// riskVocabulary is the fixed term table scanned by the offline risk
// generator. Order matters: clauses are emitted in this order.
var riskVocabulary = []riskRule{
	{"arbitration", "Dispute Resolution", models.RiskHigh,
		"You may be giving up the right to sue in court; disputes would be settled by a private arbitrator instead."},
	{"class action", "Dispute Resolution", models.RiskHigh,
		"You may be waiving the right to join a class action with other affected users."},
	{"terminate", "Account Termination", models.RiskHigh,
		"The service can close or suspend your account, and this clause sets the terms for when and how."},
	{"sole discretion", "Hidden Trap", models.RiskHigh,
		"Decisions under this clause are made entirely by the company, with no stated standard you can hold it to."},
	{"without notice", "Hidden Trap", models.RiskHigh,
		"This can happen without the company telling you first."},
	{"indemnify", "Indemnification", models.RiskHigh,
		"You may have to cover the company's legal costs if your use of the service leads to a claim."},
	{"waive", "Rights Waiver", models.RiskHigh,
		"You are giving up a legal right you would otherwise have."},
	{"liability", "Liability Limits", models.RiskMedium,
		"The company is limiting what it owes you if something goes wrong."},
	{"warranty", "Liability Limits", models.RiskMedium,
		"The service is provided without the usual guarantees of quality or fitness."},
	{"third party", "Data Sharing", models.RiskMedium,
		"Your information or content may be shared with companies other than the one you signed up with."},
	{"modify", "Unilateral Changes", models.RiskMedium,
		"The company can change the agreement after you accept it."},
	{"governing law", "Jurisdiction", models.RiskLow,
		"Disputes are decided under a specific jurisdiction's law, which may not be yours."},
	{"cookie", "Privacy", models.RiskLow,
		"The service tracks you with cookies or similar technologies."},
}

// MockGenerator is the deterministic offline counterpart of every live
// feature. Results are keyword-driven scans of the document text.
type MockGenerator struct{}

// NewMockGenerator creates the offline generator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

var legaleseReplacer = strings.NewReplacer(
	"herein", "in this document",
	"hereinafter", "from now on",
	"heretofore", "until now",
	"shall", "will",
	"pursuant to", "under",
	"notwithstanding", "despite",
	"thereof", "of it",
	"therein", "in it",
	"forthwith", "immediately",
	"in perpetuity", "forever",
	"indemnify", "cover the costs of",
	"sole discretion", "own judgment",
)

// SimplifyText produces a plain-language rendition by swapping common
// legalese for everyday words.
func (m *MockGenerator) SimplifyText(text string) string {
	simplified := legaleseReplacer.Replace(text)
	return MockDisclaimer + "\n\n" + simplified
}

// IdentifyRiskyClauses scans sentences for the fixed risk vocabulary and
// synthesizes one clause per first matching sentence per term.
func (m *MockGenerator) IdentifyRiskyClauses(text string) models.Clauses {
	sentences := splitSentences(text)
	clauses := make(models.Clauses, 0)

	for _, rule := range riskVocabulary {
		for _, sentence := range sentences {
			if strings.Contains(strings.ToLower(sentence), rule.term) {
				clauses = append(clauses, models.Clause{
					Clause:      sentence,
					Explanation: rule.explanation + " " + MockDisclaimer,
					RiskLevel:   rule.level,
					Category:    rule.category,
				})
				break
			}
		}
	}

	if len(clauses) == 0 {
		clauses = append(clauses, models.Clause{
			Clause:      "No high-risk terms were found by the offline scan.",
			Explanation: "The offline scan looks for a fixed vocabulary of risky terms and found none. " + MockDisclaimer,
			RiskLevel:   models.RiskUnknown,
			Category:    "General",
		})
	}

	return clauses
}

// SummarizeDocument sniffs the document type from keywords and emits a
// bullet list gated on which term families are present.
func (m *MockGenerator) SummarizeDocument(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder

	if strings.Contains(lower, "privacy policy") {
		b.WriteString("Summary of this privacy policy:\n")
		if strings.Contains(lower, "collect") {
			b.WriteString("- The service collects personal information about you.\n")
		}
		if strings.Contains(lower, "cookie") {
			b.WriteString("- Cookies or similar tracking technologies are used.\n")
		}
		if strings.Contains(lower, "third part") || strings.Contains(lower, "share") {
			b.WriteString("- Your data may be shared with third parties.\n")
		}
		if strings.Contains(lower, "retain") || strings.Contains(lower, "retention") {
			b.WriteString("- The service keeps your data for some period after you leave.\n")
		}
		if strings.Contains(lower, "delete") || strings.Contains(lower, "access") {
			b.WriteString("- You have some rights to access or delete your data.\n")
		}
	} else {
		b.WriteString("Summary of these terms of service:\n")
		if strings.Contains(lower, "terminat") {
			b.WriteString("- The service can terminate or suspend your account.\n")
		}
		if strings.Contains(lower, "arbitration") {
			b.WriteString("- Disputes are resolved through arbitration rather than the courts.\n")
		}
		if strings.Contains(lower, "liability") || strings.Contains(lower, "warranty") {
			b.WriteString("- The company limits its liability and disclaims warranties.\n")
		}
		if strings.Contains(lower, "modify") || strings.Contains(lower, "change") {
			b.WriteString("- The terms can change after you accept them.\n")
		}
		if strings.Contains(lower, "fee") || strings.Contains(lower, "payment") || strings.Contains(lower, "refund") {
			b.WriteString("- There are payment, fee, or refund conditions to be aware of.\n")
		}
		if strings.Contains(lower, "license") || strings.Contains(lower, "content") {
			b.WriteString("- You grant the service rights over content you submit.\n")
		}
	}

	b.WriteString("- Read the flagged clauses for the details that matter most.\n")
	b.WriteString("\n" + MockDisclaimer)
	return b.String()
}

// PredictFutureRisks forecasts from the same vocabulary scan
func (m *MockGenerator) PredictFutureRisks(text string) map[string]interface{} {
	lower := strings.ToLower(text)
	predictions := make([]map[string]interface{}, 0)

	if strings.Contains(lower, "modify") || strings.Contains(lower, "change") {
		predictions = append(predictions, map[string]interface{}{
			"risk":       "The terms may change after you accept them, possibly without direct notice.",
			"likelihood": "High",
			"timeframe":  "6-12 months",
		})
	}
	if strings.Contains(lower, "terminat") {
		predictions = append(predictions, map[string]interface{}{
			"risk":       "Your account could be suspended or closed under the termination clause.",
			"likelihood": "Medium",
			"timeframe":  "any time",
		})
	}
	if strings.Contains(lower, "third part") {
		predictions = append(predictions, map[string]interface{}{
			"risk":       "Data sharing with third parties may expand over time.",
			"likelihood": "Medium",
			"timeframe":  "12-24 months",
		})
	}
	if strings.Contains(lower, "fee") || strings.Contains(lower, "price") {
		predictions = append(predictions, map[string]interface{}{
			"risk":       "Fees or prices may increase under the payment terms.",
			"likelihood": "Medium",
			"timeframe":  "12 months",
		})
	}
	if len(predictions) == 0 {
		predictions = append(predictions, map[string]interface{}{
			"risk":       "The offline scan found no specific forward-looking risk terms.",
			"likelihood": "Low",
			"timeframe":  "n/a",
		})
	}

	score := 20 + 15*len(predictions)
	if score > 100 {
		score = 100
	}

	return map[string]interface{}{
		"predictions":      predictions,
		"overallRiskScore": score,
		"disclaimer":       MockDisclaimer,
	}
}

// AnswerQuestion returns the document sentences most related to the
// question, matched on shared words.
func (m *MockGenerator) AnswerQuestion(text, question string) string {
	keywords := make([]string, 0)
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.Trim(w, "?.,!\"'")
		if len(w) >= 4 {
			keywords = append(keywords, w)
		}
	}

	var matches []string
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matches = append(matches, sentence)
				break
			}
		}
		if len(matches) >= 2 {
			break
		}
	}

	if len(matches) == 0 {
		return "The document does not appear to address this question. " + MockDisclaimer
	}
	return "The most relevant passages are:\n" + strings.Join(matches, "\n") + "\n\n" + MockDisclaimer
}

var clauseSoftener = strings.NewReplacer(
	"sole discretion", "reasonable discretion",
	"without notice", "with at least 30 days' prior notice",
	"at any time", "at any time, with reasonable notice",
	"in perpetuity", "for the duration of your use of the service",
)

// RewriteClause produces a deterministically softened version of a clause
func (m *MockGenerator) RewriteClause(clause string) string {
	return "Fairer version: " + clauseSoftener.Replace(clause) + "\n\n" + MockDisclaimer
}

// CompareDocuments builds a deterministic comparison from word-overlap and
// vocabulary statistics.
func (m *MockGenerator) CompareDocuments(textA, textB string) models.ComparisonAnalysis {
	wordsA := wordSet(textA)
	wordsB := wordSet(textB)

	shared := 0
	for w := range wordsA {
		if wordsB[w] {
			shared++
		}
	}
	union := len(wordsA) + len(wordsB) - shared
	overlap := 0
	if union > 0 {
		overlap = shared * 100 / union
	}

	catsA := categoryCounts(textA)
	catsB := categoryCounts(textB)

	return models.ComparisonAnalysis{
		ContentMatching: models.Dimension{
			"summary":      fmt.Sprintf("The documents share roughly %d%% of their vocabulary. %s", overlap, MockDisclaimer),
			"overlapScore": overlap,
		},
		RiskAssessment: models.Dimension{
			"summary":        fmt.Sprintf("Offline scan flagged %d risk categories in document A and %d in document B. %s", len(catsA), len(catsB), MockDisclaimer),
			"documentARisks": len(catsA),
			"documentBRisks": len(catsB),
		},
		ReadabilityAnalysis: models.Dimension{
			"summary":              "Readability compared by average sentence length. " + MockDisclaimer,
			"documentAAvgSentence": avgSentenceLen(textA),
			"documentBAvgSentence": avgSentenceLen(textB),
		},
		StructuralAnalysis: models.Dimension{
			"summary":            "Structure compared by sentence counts. " + MockDisclaimer,
			"documentASentences": len(splitSentences(textA)),
			"documentBSentences": len(splitSentences(textB)),
		},
		KeyTermsAnalysis: models.Dimension{
			"summary":     "Key risk terms present in each document. " + MockDisclaimer,
			"sharedTerms": sharedRiskTerms(textA, textB),
		},
		ClauseCategories: models.Dimension{
			"summary":   "Risk categories detected by the offline vocabulary scan. " + MockDisclaimer,
			"documentA": catsA,
			"documentB": catsB,
		},
		MockGenerated: true,
	}
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:()\"'")
		if len(w) >= 4 {
			set[w] = true
		}
	}
	return set
}

func categoryCounts(text string) map[string]int {
	lower := strings.ToLower(text)
	counts := make(map[string]int)
	for _, rule := range riskVocabulary {
		if strings.Contains(lower, rule.term) {
			counts[rule.category]++
		}
	}
	return counts
}

func sharedRiskTerms(textA, textB string) []string {
	lowerA := strings.ToLower(textA)
	lowerB := strings.ToLower(textB)
	var terms []string
	for _, rule := range riskVocabulary {
		if strings.Contains(lowerA, rule.term) && strings.Contains(lowerB, rule.term) {
			terms = append(terms, rule.term)
		}
	}
	sort.Strings(terms)
	return terms
}

func avgSentenceLen(text string) int {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += len(strings.Fields(s))
	}
	return total / len(sentences)
}
