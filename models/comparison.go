package models

// Dimension is one axis of a two-document comparison
type Dimension map[string]interface{}

// ComparisonAnalysis is the full result of comparing two documents.
// Each dimension is produced wholesale by the model and treated as an
// opaque read-only tree by callers. Comparisons are not persisted;
// the result lives only in the response.
type ComparisonAnalysis struct {
	ContentMatching     Dimension `json:"contentMatching,omitempty"`
	RiskAssessment      Dimension `json:"riskAssessment,omitempty"`
	ReadabilityAnalysis Dimension `json:"readabilityAnalysis,omitempty"`
	StructuralAnalysis  Dimension `json:"structuralAnalysis,omitempty"`
	KeyTermsAnalysis    Dimension `json:"keyTermsAnalysis,omitempty"`
	ClauseCategories    Dimension `json:"clauseCategories,omitempty"`
	MockGenerated       bool      `json:"mock_generated,omitempty"`
}
