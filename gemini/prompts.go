package gemini

import "fmt"

// PromptCharLimit caps how much document text is embedded into any prompt.
// Truncation lives here, at the service boundary, so no upload path needs to
// re-implement the constant.
const PromptCharLimit = 100000

// TruncationMarker is appended to document text cut at PromptCharLimit
const TruncationMarker = "\n\n[Content truncated due to length...]"

// TruncateForPrompt returns text unchanged when it fits, otherwise exactly
// the first PromptCharLimit characters followed by TruncationMarker.
func TruncateForPrompt(text string) string {
	if len(text) <= PromptCharLimit {
		return text
	}
	return text[:PromptCharLimit] + TruncationMarker
}

// SimplifyPrompt builds the plain-language rewrite instruction. Flash
// variants get the terse template.
func SimplifyPrompt(text string, flash bool) string {
	text = TruncateForPrompt(text)

	if flash {
		return fmt.Sprintf(`Rewrite the following Terms of Service in plain, simple English a non-lawyer can understand. Keep the original structure. Output plain text only, no markdown.

DOCUMENT:
%s`, text)
	}

	return fmt.Sprintf(`You are a legal-document assistant helping consumers understand Terms of Service.

TASK:
Rewrite the document below in plain, simple English that a person with no legal training can understand.

REQUIREMENTS:
- Preserve the original section structure and ordering
- Replace legal jargon with everyday words, keeping the meaning intact
- Do not add commentary, opinions, or legal advice
- Output plain text only, no markdown formatting

DOCUMENT:
%s`, text)
}

// RiskyClausesPrompt builds the risk-identification instruction. The output
// contract (field names and the riskLevel domain) is spelled out because the
// response is parsed as JSON.
func RiskyClausesPrompt(text string, flash bool) string {
	text = TruncateForPrompt(text)

	if flash {
		return fmt.Sprintf(`Find clauses in the Terms of Service below that are risky for the user. Respond with ONLY a JSON array, no prose. Each element: {"clause": <verbatim text>, "explanation": <why it is risky>, "riskLevel": "Low"|"Medium"|"High", "category": <short label>}.

DOCUMENT:
%s`, text)
	}

	return fmt.Sprintf(`You are a legal-document assistant reviewing Terms of Service for consumer risk.

TASK:
Identify every clause in the document below that could be risky or unfavorable for the user, such as unilateral termination, forced arbitration, broad liability waivers, data sharing, or silent modification rights.

OUTPUT REQUIREMENTS:
- Respond with ONLY a JSON array, nothing before or after it
- Each element must have exactly these fields:
  "clause": the verbatim clause text from the document
  "explanation": a short plain-English explanation of the risk
  "riskLevel": one of "Low", "Medium", "High"
  "category": a short label such as "Account Termination" or "Dispute Resolution"
- Order elements by their position in the document

DOCUMENT:
%s`, text)
}

// SummaryPrompt builds the summarization instruction
func SummaryPrompt(text string, flash bool) string {
	text = TruncateForPrompt(text)

	if flash {
		return fmt.Sprintf(`Summarize the key points of the Terms of Service below as a short bullet list. Plain text only.

DOCUMENT:
%s`, text)
	}

	return fmt.Sprintf(`You are a legal-document assistant summarizing Terms of Service for consumers.

TASK:
Summarize the document below as a bullet list of its most important points: what the user agrees to, what rights they give up, what the service may do, and how disputes are handled.

OUTPUT REQUIREMENTS:
- 5 to 10 bullets, one sentence each
- Plain language, no legal jargon
- Plain text only, no markdown

DOCUMENT:
%s`, text)
}

// PredictionPrompt builds the future-risk forecast instruction, expecting an
// object-shaped JSON response.
func PredictionPrompt(text string, flash bool) string {
	text = TruncateForPrompt(text)

	if flash {
		return fmt.Sprintf(`Based on the Terms of Service below, predict risks the user may face in the future. Respond with ONLY a JSON object: {"predictions": [{"risk": <text>, "likelihood": "Low"|"Medium"|"High", "timeframe": <text>}], "overallRiskScore": <0-100>}.

DOCUMENT:
%s`, text)
	}

	return fmt.Sprintf(`You are a legal-document assistant forecasting how Terms of Service may affect a user over time.

TASK:
Based on the document below, predict concrete risks the user may face in the future (price changes, data usage expansion, account loss, weakened recourse).

OUTPUT REQUIREMENTS:
- Respond with ONLY a JSON object, nothing before or after it
- Shape: {"predictions": [{"risk": <description>, "likelihood": "Low"|"Medium"|"High", "timeframe": <e.g. "6-12 months">}], "overallRiskScore": <integer 0-100>}
- 3 to 6 predictions, most likely first

DOCUMENT:
%s`, text)
}

// QuestionPrompt builds the document Q&A instruction
func QuestionPrompt(text, question string, flash bool) string {
	text = TruncateForPrompt(text)

	if flash {
		return fmt.Sprintf(`Answer the question using only the Terms of Service below. If the document does not cover it, say so. Plain text only.

QUESTION: %s

DOCUMENT:
%s`, question, text)
	}

	return fmt.Sprintf(`You are a legal-document assistant answering a user's question about their Terms of Service.

QUESTION:
%s

TASK:
Answer using only the document below. Quote the relevant clause when one exists. If the document does not address the question, say so plainly instead of guessing.

OUTPUT REQUIREMENTS:
- Plain language, 1-3 short paragraphs
- Plain text only, no markdown

DOCUMENT:
%s`, question, text)
}

// RewriteClausePrompt builds the fairer-clause rewrite instruction
func RewriteClausePrompt(clause string) string {
	clause = TruncateForPrompt(clause)

	return fmt.Sprintf(`You are a legal-document assistant. Rewrite the clause below so it is fairer to the user while staying realistic for the service provider. Keep it to one clause. Output plain text only.

CLAUSE:
%s`, clause)
}

// ComparisonPrompt builds the two-document comparison instruction, expecting
// one JSON object keyed by analysis dimension.
func ComparisonPrompt(textA, textB string) string {
	textA = TruncateForPrompt(textA)
	textB = TruncateForPrompt(textB)

	return fmt.Sprintf(`You are a legal-document assistant comparing two Terms of Service documents.

TASK:
Compare DOCUMENT A and DOCUMENT B across these dimensions: content overlap, user risk, readability, structure, key terms, and clause categories.

OUTPUT REQUIREMENTS:
- Respond with ONLY a JSON object, nothing before or after it
- Use exactly these top-level keys: "contentMatching", "riskAssessment", "readabilityAnalysis", "structuralAnalysis", "keyTermsAnalysis", "clauseCategories"
- Each value is an object; include a "summary" field in each plus whatever
  structured detail supports it (scores 0-100, lists of terms, per-category counts)

DOCUMENT A:
%s

DOCUMENT B:
%s`, textA, textB)
}
