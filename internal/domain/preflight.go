package domain

// BridgeType is the connective strategy linking publisher context to target
// context in the generated article.
type BridgeType string

// Bridge types, from tightest to loosest coupling.
const (
	BridgeStrong  BridgeType = "strong"
	BridgePivot   BridgeType = "pivot"
	BridgeWrapper BridgeType = "wrapper"
)

// IntentAlignment grades how well one dimension of the search intent lines up
// between anchor context and target context.
type IntentAlignment string

// Intent alignment grades.
const (
	AlignmentAligned IntentAlignment = "aligned"
	AlignmentPartial IntentAlignment = "partial"
	AlignmentOff     IntentAlignment = "off"
)

// Intent dimensions evaluated by the research phase.
const (
	IntentDimensionTopic       = "topic"
	IntentDimensionAudience    = "audience"
	IntentDimensionFunnelStage = "funnel_stage"
)

// TargetProfile describes the page the backlink points at.
type TargetProfile struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Topic     string   `json:"topic"`
	Vertical  string   `json:"vertical"` // e.g. "finance", "health", "" when generic
	Subtopics []string `json:"subtopics"`
}

// PublisherProfile describes the site that will host the article.
type PublisherProfile struct {
	Domain         string   `json:"domain"`
	Category       string   `json:"category"`
	Tone           string   `json:"tone"` // e.g. "editorial", "casual"
	ToneMarkers    []string `json:"tone_markers"`
	ReadabilityMin float64  `json:"readability_min"` // Flesch reading ease band
	ReadabilityMax float64  `json:"readability_max"`
}

// AnchorProfile describes the anchor text in the context of the target brand.
type AnchorProfile struct {
	Text       string   `json:"text"`
	BrandTerms []string `json:"brand_terms"` // terms that mark a branded anchor
}

// IntentResearch carries the search-intent findings the writer and the
// quality controller both consume.
type IntentResearch struct {
	PrimaryIntent     string                     `json:"primary_intent"` // informational, commercial, ...
	Alignment         map[string]IntentAlignment `json:"alignment"`      // dimension -> grade
	RelatedTerms      []string                   `json:"related_terms"`  // LSI terms near the link
	RequiredSubtopics []string                   `json:"required_subtopics"`
}

// PreflightResult is the structured output of the profiling phase. It is
// owned by the job for its lifetime and immutable after creation.
type PreflightResult struct {
	Target    TargetProfile    `json:"target"`
	Publisher PublisherProfile `json:"publisher"`
	Anchor    AnchorProfile    `json:"anchor"`
	Research  IntentResearch   `json:"research"`
	Bridge    BridgeType       `json:"bridge"` // recommended bridge type
}

// WorstAlignment returns the weakest alignment grade across all researched
// intent dimensions. An empty alignment map counts as partial.
func (p *PreflightResult) WorstAlignment() IntentAlignment {
	if len(p.Research.Alignment) == 0 {
		return AlignmentPartial
	}
	worst := AlignmentAligned
	for _, grade := range p.Research.Alignment {
		switch grade {
		case AlignmentOff:
			return AlignmentOff
		case AlignmentPartial:
			worst = AlignmentPartial
		}
	}
	return worst
}
