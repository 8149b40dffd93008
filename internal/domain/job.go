// Package domain holds the data model for backlink article jobs: the job
// input, collaborator results, quality reports, and the execution log.
package domain

// JobInput is the immutable value object describing one backlink article job.
// It is created once by the validator and never mutated afterwards.
type JobInput struct {
	ID string `json:"id"`

	// Required fields
	PublisherDomain string `json:"publisher_domain"` // no protocol, no path
	TargetURL       string `json:"target_url"`       // absolute URL
	AnchorText      string `json:"anchor_text"`      // 1-500 chars

	// Optional fields, defaulted by the validator
	Provider     string `json:"provider"`       // writer backend id
	Strategy     string `json:"strategy"`       // bridge strategy hint
	CountryCode  string `json:"country_code"`   // ISO 3166-1 alpha-2, lowercase
	MinWordCount int    `json:"min_word_count"` // minimum article length
}

// Strategy constants.
const (
	StrategyAuto    = "auto"
	StrategyStrong  = "strong"
	StrategyPivot   = "pivot"
	StrategyWrapper = "wrapper"
)

// Default values applied by the validator.
const (
	DefaultProvider     = "template"
	DefaultStrategy     = StrategyAuto
	DefaultCountryCode  = "us"
	DefaultMinWordCount = 900
)

// Anchor text length bounds.
const (
	MinAnchorLength = 1
	MaxAnchorLength = 500
)
