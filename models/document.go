package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RiskLevel classifies how dangerous a flagged clause is for the user
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

// ParseRiskLevel maps free-text model output onto the known levels
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s)
	default:
		return RiskUnknown
	}
}

// Clause is one flagged unit of risky legal text plus metadata.
// Clauses are never mutated once created; they belong to exactly one Document.
type Clause struct {
	Clause      string    `json:"clause"`
	Explanation string    `json:"explanation"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Category    string    `json:"category"`
	RawResponse string    `json:"rawResponse,omitempty"`
}

// Clauses is an ordered list of flagged clauses
type Clauses []Clause

// Value implements driver.Valuer for JSONB
func (c Clauses) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB
func (c *Clauses) Scan(value interface{}) error {
	if value == nil {
		*c = make(Clauses, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*c = make(Clauses, 0)
		return nil
	}

	if len(bytes) == 0 {
		*c = make(Clauses, 0)
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// Snapshot persistence limits. Analyses are kept as truncated copies so a
// pathological upload cannot bloat the documents table.
const (
	SnapshotTextLimit   = 10000
	SnapshotClauseLimit = 10
)

// Document is the full analysis result for one uploaded file.
// Immutable after creation; a new upload supersedes it rather than merging.
type Document struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	FileName       string     `json:"file_name"`
	OriginalText   string     `json:"original_text"`
	SimplifiedText string     `json:"simplified_text"`
	RiskyClauses   Clauses    `json:"risky_clauses"`
	Summary        string     `json:"summary"`
	Sequence       int64      `json:"sequence"`
	Truncated      bool       `json:"truncated"`
	MockGenerated  bool       `json:"mock_generated"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Snapshot returns the truncated copy that gets persisted: the first
// SnapshotTextLimit characters of each text field and the first
// SnapshotClauseLimit clauses.
func (d *Document) Snapshot() *Document {
	snap := *d
	snap.OriginalText = clip(d.OriginalText, SnapshotTextLimit)
	snap.SimplifiedText = clip(d.SimplifiedText, SnapshotTextLimit)
	snap.Summary = clip(d.Summary, SnapshotTextLimit)
	if len(d.RiskyClauses) > SnapshotClauseLimit {
		snap.RiskyClauses = append(Clauses(nil), d.RiskyClauses[:SnapshotClauseLimit]...)
	}
	snap.Truncated = snap.Truncated ||
		len(d.OriginalText) > SnapshotTextLimit ||
		len(d.SimplifiedText) > SnapshotTextLimit ||
		len(d.Summary) > SnapshotTextLimit ||
		len(d.RiskyClauses) > SnapshotClauseLimit
	return &snap
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
