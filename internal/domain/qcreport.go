package domain

import "time"

// QCStatus is the outcome of a quality evaluation.
type QCStatus string

// Quality statuses. PASS and WARNING deliver; BLOCKED triggers the rescue
// cycle on the first pass and aborts on the second.
const (
	QCPass    QCStatus = "PASS"
	QCWarning QCStatus = "WARNING"
	QCBlocked QCStatus = "BLOCKED"
)

// CriterionID identifies one of the eight quality criteria.
type CriterionID string

// The eight quality criteria.
const (
	CriterionPreflight  CriterionID = "preflight"
	CriterionDraft      CriterionID = "draft"
	CriterionAnchor     CriterionID = "anchor"
	CriterionTrust      CriterionID = "trust"
	CriterionIntent     CriterionID = "intent"
	CriterionLSI        CriterionID = "lsi"
	CriterionFit        CriterionID = "fit"
	CriterionCompliance CriterionID = "compliance"
)

// AllCriteria lists the criteria in report order.
var AllCriteria = []CriterionID{
	CriterionPreflight,
	CriterionDraft,
	CriterionAnchor,
	CriterionTrust,
	CriterionIntent,
	CriterionLSI,
	CriterionFit,
	CriterionCompliance,
}

// Severity grades an individual issue.
type Severity string

// Issue severities.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// FixCategory names an issue category the AutoFix engine may know a strategy
// for. Issues outside these categories are never auto-fixable.
type FixCategory string

// Auto-fixable issue categories.
const (
	FixLSICount          FixCategory = "lsi_count"
	FixAnchorPlacement   FixCategory = "anchor_placement"
	FixMissingDisclaimer FixCategory = "missing_disclaimer"
	FixStructure         FixCategory = "structure"
	FixContentExpansion  FixCategory = "content_expansion"
)

// Issue is one structured finding from a quality criterion.
type Issue struct {
	Criterion   CriterionID `json:"criterion"`
	Severity    Severity    `json:"severity"`
	Message     string      `json:"message"`
	Category    FixCategory `json:"category,omitempty"`
	AutoFixable bool        `json:"auto_fixable"`
}

// QCReport is the full result of evaluating one draft. A report is produced
// fresh per draft and never mutated; a rescue yields a second, independent
// report.
type QCReport struct {
	Status          QCStatus            `json:"status"`
	OverallScore    int                 `json:"overall_score"` // 0-100 weighted mean
	CriterionScores map[CriterionID]int `json:"criterion_scores"`
	CriticalFails   []CriterionID       `json:"critical_fails,omitempty"`
	Issues          []Issue             `json:"issues"`
	Recommendations []string            `json:"recommendations"`
	EvaluatedAt     time.Time           `json:"evaluated_at"`
}

// HasAutoFixable reports whether at least one issue is eligible for AutoFix.
func (r *QCReport) HasAutoFixable() bool {
	for _, issue := range r.Issues {
		if issue.AutoFixable {
			return true
		}
	}
	return false
}

// AutoFixLog records what the AutoFix engine attempted on a job. Empty unless
// AutoFix ran.
type AutoFixLog struct {
	Attempted    []FixCategory `json:"attempted"`
	Applied      bool          `json:"applied"`
	OriginalHash string        `json:"original_hash"`
	FixedHash    string        `json:"fixed_hash,omitempty"`
}
