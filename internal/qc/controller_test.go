package qc

import (
	"fmt"
	"strings"
	"testing"

	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/logger"
)

func testJob() *domain.JobInput {
	return &domain.JobInput{
		ID:              "job-1",
		PublisherDomain: "news.example",
		TargetURL:       "https://shop.example/item",
		AnchorText:      "check the full comparison",
		Provider:        "template",
		Strategy:        domain.StrategyAuto,
		CountryCode:     "us",
		MinWordCount:    100,
	}
}

func testPreflight() *domain.PreflightResult {
	return &domain.PreflightResult{
		Target: domain.TargetProfile{
			URL:       "https://shop.example/item",
			Title:     "Budget Laptops",
			Topic:     "laptops",
			Subtopics: []string{"battery life", "pricing"},
		},
		Publisher: domain.PublisherProfile{
			Domain:         "news.example",
			Tone:           "editorial",
			ReadabilityMin: 5,
			ReadabilityMax: 95,
		},
		Anchor: domain.AnchorProfile{
			Text:       "check the full comparison",
			BrandTerms: []string{"shopex"},
		},
		Research: domain.IntentResearch{
			PrimaryIntent: "commercial",
			Alignment: map[string]domain.IntentAlignment{
				domain.IntentDimensionTopic:       domain.AlignmentAligned,
				domain.IntentDimensionAudience:    domain.AlignmentAligned,
				domain.IntentDimensionFunnelStage: domain.AlignmentAligned,
			},
			RelatedTerms:      []string{"battery life", "screen size", "ram", "storage", "warranty", "processor"},
			RequiredSubtopics: []string{"battery life", "pricing"},
		},
		Bridge: domain.BridgePivot,
	}
}

// goodDraftText builds a draft that satisfies every criterion for testJob and
// testPreflight.
func goodDraftText(minWords int) string {
	var sb strings.Builder
	sb.WriteString("# Choosing a Laptop on a Budget\n\n")
	sb.WriteString("Picking well means knowing what to ignore. This guide covers the essentials.\n\n")
	sb.WriteString("## Battery Life\n\n")
	sb.WriteString("Battery life varies widely between models and matters more than raw speed for most buyers. ")
	sb.WriteString("Factors like battery life, screen size, ram, storage, warranty, and processor all shape the decision. ")
	sb.WriteString("For a worked example, see the [check the full comparison](https://shop.example/item) guide. ")
	sb.WriteString("It covers each factor in enough depth to act on.\n\n")
	sb.WriteString("## Pricing\n\n")
	sb.WriteString("Pricing follows seasonal cycles, and patient buyers do better. ")
	sb.WriteString("Published [labor statistics](https://www.bls.gov/data.htm) show wide variation in tech spending.\n\n")

	filler := "Good planning beats good luck in nearly every purchase decision worth making. "
	for len(strings.Fields(sb.String())) < minWords+40 {
		sb.WriteString(filler)
	}
	return sb.String()
}

func testDraft(text string) *domain.Draft {
	return domain.NewDraft(text, "template", "", 0, 0, 0)
}

func TestController_Evaluate_Pass(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	report := controller.Evaluate(testJob(), testPreflight(), testDraft(goodDraftText(100)))

	if report.Status != domain.QCPass {
		t.Fatalf("expected PASS, got %s (score %d, fails %v, issues %v)",
			report.Status, report.OverallScore, report.CriticalFails, report.Issues)
	}
	if report.OverallScore < 80 {
		t.Errorf("expected overall score >= 80, got %d", report.OverallScore)
	}
	if len(report.CriterionScores) != len(domain.AllCriteria) {
		t.Errorf("expected %d criterion scores, got %d", len(domain.AllCriteria), len(report.CriterionScores))
	}
	if len(report.CriticalFails) != 0 {
		t.Errorf("expected no critical fails, got %v", report.CriticalFails)
	}
}

func TestController_Evaluate_WordCountBlocks(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	job := testJob()
	job.MinWordCount = 5000

	report := controller.Evaluate(job, testPreflight(), testDraft(goodDraftText(100)))

	if report.Status != domain.QCBlocked {
		t.Fatalf("expected BLOCKED, got %s", report.Status)
	}

	var found bool
	for _, issue := range report.Issues {
		if issue.Criterion == domain.CriterionDraft && issue.Severity == domain.SeverityCritical {
			found = true
			if !issue.AutoFixable {
				t.Error("word-count issue should be auto-fixable")
			}
			if issue.Category != domain.FixContentExpansion {
				t.Errorf("expected content_expansion category, got %s", issue.Category)
			}
		}
	}
	if !found {
		t.Errorf("expected a critical draft issue, got %v", report.Issues)
	}
}

func TestController_MissingDisclaimerBlocksDespiteHighScore(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	pf := testPreflight()
	pf.Target.Vertical = VerticalFinance

	report := controller.Evaluate(testJob(), pf, testDraft(goodDraftText(100)))

	if report.Status != domain.QCBlocked {
		t.Fatalf("expected BLOCKED on missing disclaimer, got %s", report.Status)
	}

	hasComplianceFail := false
	for _, id := range report.CriticalFails {
		if id == domain.CriterionCompliance {
			hasComplianceFail = true
		}
	}
	if !hasComplianceFail {
		t.Errorf("expected compliance critical fail, got %v", report.CriticalFails)
	}
}

func TestController_DisclaimerSatisfiesCompliance(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	pf := testPreflight()
	pf.Target.Vertical = VerticalFinance

	text := goodDraftText(100) + "\n\n*" + DisclaimerFor(VerticalFinance) + "*\n"
	report := controller.Evaluate(testJob(), pf, testDraft(text))

	if report.CriterionScores[domain.CriterionCompliance] != 100 {
		t.Errorf("expected compliance score 100, got %d", report.CriterionScores[domain.CriterionCompliance])
	}
}

func TestController_NoTier1CitationBlocks(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	text := strings.ReplaceAll(goodDraftText(100),
		"https://www.bls.gov/data.htm", "https://randomblog.example/post")

	report := controller.Evaluate(testJob(), testPreflight(), testDraft(text))

	if report.Status != domain.QCBlocked {
		t.Fatalf("expected BLOCKED without tier-1 citation, got %s", report.Status)
	}
}

func TestController_IntentOffBlocks(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	pf := testPreflight()
	pf.Research.Alignment[domain.IntentDimensionFunnelStage] = domain.AlignmentOff

	report := controller.Evaluate(testJob(), pf, testDraft(goodDraftText(100)))

	if report.Status != domain.QCBlocked {
		t.Fatalf("expected BLOCKED on off intent, got %s", report.Status)
	}

	hasIntentFail := false
	for _, id := range report.CriticalFails {
		if id == domain.CriterionIntent {
			hasIntentFail = true
		}
	}
	if !hasIntentFail {
		t.Errorf("expected intent critical fail, got %v", report.CriticalFails)
	}
}

func TestController_DeriveStatusBands(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())

	tests := []struct {
		score    int
		fails    []domain.CriterionID
		expected domain.QCStatus
	}{
		{95, nil, domain.QCPass},
		{80, nil, domain.QCPass},
		{79, nil, domain.QCWarning},
		{50, nil, domain.QCWarning},
		{49, nil, domain.QCBlocked},
		{0, nil, domain.QCBlocked},
		{95, []domain.CriterionID{domain.CriterionCompliance}, domain.QCBlocked},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d_fails_%d", tt.score, len(tt.fails)), func(t *testing.T) {
			report := &domain.QCReport{OverallScore: tt.score, CriticalFails: tt.fails}
			if got := controller.deriveStatus(report); got != tt.expected {
				t.Errorf("score %d fails %v: expected %s, got %s", tt.score, tt.fails, tt.expected, got)
			}
		})
	}
}

func TestClassifyAnchor(t *testing.T) {
	pf := testPreflight()

	tests := []struct {
		anchor       string
		expectedTier string
	}{
		{"click here", riskLow},
		{"shopex deals", riskLow},           // branded beats commercial
		{"laptops guide", riskMedium},       // partial topic match
		{"best laptops deals", riskHigh},    // topic + commercial modifier
		{"check the full comparison", riskLow},
	}

	for _, tt := range tests {
		t.Run(tt.anchor, func(t *testing.T) {
			_, tier := classifyAnchor(tt.anchor, pf)
			if tier != tt.expectedTier {
				t.Errorf("anchor %q: expected tier %s, got %s", tt.anchor, tt.expectedTier, tier)
			}
		})
	}
}

func TestEvalAnchor_HighRiskBlocks(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	job := testJob()
	job.AnchorText = "best laptops deals"
	text := strings.ReplaceAll(goodDraftText(100), "check the full comparison", "best laptops deals")

	report := controller.Evaluate(job, testPreflight(), testDraft(text))

	if report.Status != domain.QCBlocked {
		t.Fatalf("expected BLOCKED for high-risk anchor, got %s", report.Status)
	}
}

func TestEvalAnchor_MissingAnchorIsCritical(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	job := testJob()
	job.AnchorText = "phrase that appears nowhere"

	report := controller.Evaluate(job, testPreflight(), testDraft(goodDraftText(100)))

	if report.Status != domain.QCBlocked {
		t.Fatalf("expected BLOCKED for missing anchor, got %s", report.Status)
	}
}

func TestController_ReportsAreIndependent(t *testing.T) {
	controller := NewController(DefaultConfig(), logger.NewNop())
	job, pf := testJob(), testPreflight()
	draft := testDraft(goodDraftText(100))

	first := controller.Evaluate(job, pf, draft)
	second := controller.Evaluate(job, pf, draft)

	if first == second {
		t.Fatal("expected distinct report instances")
	}
	if first.Status != second.Status || first.OverallScore != second.OverallScore {
		t.Errorf("evaluation not deterministic: %s/%d vs %s/%d",
			first.Status, first.OverallScore, second.Status, second.OverallScore)
	}
}
