package qc

import (
	"math"
	"time"

	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/logger"
)

// Config holds the quality controller's thresholds and criterion weights.
// Loaded once at startup and passed in explicitly; the scoring logic performs
// no hidden configuration lookups.
type Config struct {
	MinSections           int                            `yaml:"min_sections"`
	SubtopicCoverage      float64                        `yaml:"subtopic_coverage"`
	LSIMin                int                            `yaml:"lsi_min"`
	LSIMax                int                            `yaml:"lsi_max"`
	LSIWindow             int                            `yaml:"lsi_window"` // sentences either side of the link
	DefaultReadabilityMin float64                        `yaml:"default_readability_min"`
	DefaultReadabilityMax float64                        `yaml:"default_readability_max"`
	PassScore             int                            `yaml:"pass_score"`
	WarningScore          int                            `yaml:"warning_score"`
	Weights               map[domain.CriterionID]float64 `yaml:"weights"`
}

// Criterion weight applied to the hard-gating criteria by default.
const gatingWeight = 1.5

// DefaultConfig returns the stock thresholds: equal criterion weights except
// Anchor and Compliance, which gate hard failures and weigh heavier.
func DefaultConfig() Config {
	weights := make(map[domain.CriterionID]float64, len(domain.AllCriteria))
	for _, id := range domain.AllCriteria {
		weights[id] = 1.0
	}
	weights[domain.CriterionAnchor] = gatingWeight
	weights[domain.CriterionCompliance] = gatingWeight

	return Config{
		MinSections:           2,
		SubtopicCoverage:      0.6,
		LSIMin:                6,
		LSIMax:                10,
		LSIWindow:             2,
		DefaultReadabilityMin: 50,
		DefaultReadabilityMax: 70,
		PassScore:             80,
		WarningScore:          50,
		Weights:               weights,
	}
}

// SetDefaults fills any unset fields from the stock configuration.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if c.MinSections == 0 {
		c.MinSections = def.MinSections
	}
	if c.SubtopicCoverage == 0 {
		c.SubtopicCoverage = def.SubtopicCoverage
	}
	if c.LSIMin == 0 {
		c.LSIMin = def.LSIMin
	}
	if c.LSIMax == 0 {
		c.LSIMax = def.LSIMax
	}
	if c.LSIWindow == 0 {
		c.LSIWindow = def.LSIWindow
	}
	if c.DefaultReadabilityMin == 0 {
		c.DefaultReadabilityMin = def.DefaultReadabilityMin
	}
	if c.DefaultReadabilityMax == 0 {
		c.DefaultReadabilityMax = def.DefaultReadabilityMax
	}
	if c.PassScore == 0 {
		c.PassScore = def.PassScore
	}
	if c.WarningScore == 0 {
		c.WarningScore = def.WarningScore
	}
	if len(c.Weights) == 0 {
		c.Weights = def.Weights
	}
}

// Controller evaluates drafts against the eight quality criteria. Evaluate is
// a pure function of its three inputs; the controller holds only immutable
// configuration.
type Controller struct {
	cfg    Config
	logger logger.Logger
}

// NewController creates a quality controller.
func NewController(cfg Config, log logger.Logger) *Controller {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Controller{cfg: cfg, logger: log}
}

// Evaluate scores one draft and derives the report status. A report is
// produced fresh per draft and never mutated afterwards.
func (c *Controller) Evaluate(job *domain.JobInput, pf *domain.PreflightResult, draft *domain.Draft) *domain.QCReport {
	doc := ParseArticle(draft.Text)

	results := map[domain.CriterionID]criterionResult{
		domain.CriterionPreflight:  evalPreflight(pf),
		domain.CriterionDraft:      evalDraft(c.cfg, job, pf, doc),
		domain.CriterionAnchor:     evalAnchor(job, pf, doc),
		domain.CriterionTrust:      evalTrust(job, doc),
		domain.CriterionIntent:     evalIntent(pf),
		domain.CriterionLSI:        evalLSI(c.cfg, job, pf, doc),
		domain.CriterionFit:        evalFit(c.cfg, pf, doc),
		domain.CriterionCompliance: evalCompliance(pf, doc, draft.Text),
	}

	report := &domain.QCReport{
		CriterionScores: make(map[domain.CriterionID]int, len(results)),
		EvaluatedAt:     time.Now(),
	}

	var weightedSum, weightTotal float64
	for _, id := range domain.AllCriteria {
		res := results[id]
		report.CriterionScores[id] = res.score
		report.Issues = append(report.Issues, res.issues...)
		report.Recommendations = append(report.Recommendations, res.recommendations...)
		if res.critical {
			report.CriticalFails = append(report.CriticalFails, id)
		}

		weight := c.cfg.Weights[id]
		if weight <= 0 {
			weight = 1.0
		}
		weightedSum += weight * float64(res.score)
		weightTotal += weight
	}

	report.OverallScore = int(math.Round(weightedSum / weightTotal))
	report.Status = c.deriveStatus(report)

	c.logger.Debug("quality evaluation complete",
		logger.String("job_id", job.ID),
		logger.String("status", string(report.Status)),
		logger.Int("overall_score", report.OverallScore),
		logger.Int("word_count", doc.WordCount),
		logger.Int("issues", len(report.Issues)),
	)

	return report
}

// deriveStatus maps the overall score and critical-fail set to a status. A
// single criterion whose blocking condition is met forces BLOCKED regardless
// of the numeric average.
func (c *Controller) deriveStatus(report *domain.QCReport) domain.QCStatus {
	if len(report.CriticalFails) > 0 {
		return domain.QCBlocked
	}
	switch {
	case report.OverallScore >= c.cfg.PassScore:
		return domain.QCPass
	case report.OverallScore >= c.cfg.WarningScore:
		return domain.QCWarning
	default:
		return domain.QCBlocked
	}
}
