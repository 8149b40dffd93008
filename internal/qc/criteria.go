package qc

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robwestz/bacowr/internal/domain"
)

// criterionResult is the outcome of evaluating one criterion.
type criterionResult struct {
	score           int  // 0-100
	critical        bool // blocking condition met, forces BLOCKED
	issues          []domain.Issue
	recommendations []string
}

func (r *criterionResult) addIssue(issue domain.Issue) {
	r.issues = append(r.issues, issue)
}

func (r *criterionResult) recommend(rec string) {
	r.recommendations = append(r.recommendations, rec)
}

// evalPreflight checks that the chosen bridge type is compatible with the
// computed intent alignment. Blocking: a strong or pivot bridge over "off"
// alignment.
func evalPreflight(pf *domain.PreflightResult) criterionResult {
	res := criterionResult{score: 100}
	alignment := pf.WorstAlignment()

	switch alignment {
	case domain.AlignmentAligned:
		switch pf.Bridge {
		case domain.BridgeStrong:
			res.score = 100
		case domain.BridgePivot:
			res.score = 90
		default:
			res.score = 80
		}

	case domain.AlignmentPartial:
		switch pf.Bridge {
		case domain.BridgeStrong:
			res.score = 70
			res.addIssue(domain.Issue{
				Criterion: domain.CriterionPreflight,
				Severity:  domain.SeverityInfo,
				Message:   "strong bridge over partially aligned intent",
			})
			res.recommend("Consider a pivot bridge for partially aligned intent")
		case domain.BridgePivot:
			res.score = 90
		default:
			res.score = 85
		}

	case domain.AlignmentOff:
		if pf.Bridge == domain.BridgeWrapper {
			res.score = 65
			res.addIssue(domain.Issue{
				Criterion: domain.CriterionPreflight,
				Severity:  domain.SeverityWarning,
				Message:   "wrapper bridge over off intent alignment",
			})
		} else {
			res.score = 20
			res.critical = true
			res.addIssue(domain.Issue{
				Criterion: domain.CriterionPreflight,
				Severity:  domain.SeverityCritical,
				Message:   fmt.Sprintf("%s bridge mismatched with off intent alignment", pf.Bridge),
			})
			res.recommend("Re-run profiling or downgrade to a wrapper bridge")
		}
	}
	return res
}

// evalDraft checks word count, structural sections, and required-subtopic
// coverage. Blocking: word count below the configured minimum.
func evalDraft(cfg Config, job *domain.JobInput, pf *domain.PreflightResult, doc *ArticleDoc) criterionResult {
	res := criterionResult{score: 100}

	if doc.WordCount < job.MinWordCount {
		res.critical = true
		res.score -= 40
		res.addIssue(domain.Issue{
			Criterion:   domain.CriterionDraft,
			Severity:    domain.SeverityCritical,
			Message:     fmt.Sprintf("word count %d below minimum %d", doc.WordCount, job.MinWordCount),
			Category:    domain.FixContentExpansion,
			AutoFixable: true,
		})
		res.recommend(fmt.Sprintf("Expand the article by at least %d words", job.MinWordCount-doc.WordCount))
	}

	if sections := doc.SectionCount(); sections < cfg.MinSections {
		res.score -= 20
		res.addIssue(domain.Issue{
			Criterion:   domain.CriterionDraft,
			Severity:    domain.SeverityWarning,
			Message:     fmt.Sprintf("only %d structural sections, need at least %d", sections, cfg.MinSections),
			Category:    domain.FixStructure,
			AutoFixable: true,
		})
	}

	if required := pf.Research.RequiredSubtopics; len(required) > 0 {
		lower := strings.ToLower(doc.PlainText)
		covered := 0
		var missing []string
		for _, subtopic := range required {
			if strings.Contains(lower, strings.ToLower(subtopic)) {
				covered++
			} else {
				missing = append(missing, subtopic)
			}
		}
		if frac := float64(covered) / float64(len(required)); frac < cfg.SubtopicCoverage {
			res.score -= 20
			res.addIssue(domain.Issue{
				Criterion: domain.CriterionDraft,
				Severity:  domain.SeverityWarning,
				Message: fmt.Sprintf("subtopic coverage %.0f%% below required %.0f%%",
					frac*100, cfg.SubtopicCoverage*100),
			})
			res.recommend("Cover missing subtopics: " + strings.Join(missing, ", "))
		}
	}

	if res.score < 0 {
		res.score = 0
	}
	return res
}

// Anchor risk tiers derived from the pattern match.
const (
	riskLow    = "low"
	riskMedium = "medium"
	riskHigh   = "high"
)

var genericAnchors = map[string]bool{
	"click here": true, "here": true, "learn more": true, "read more": true,
	"this site": true, "this page": true, "more info": true, "website": true,
	"source": true,
}

var commercialModifiers = []string{
	"best", "cheap", "cheapest", "buy", "discount", "top", "deal", "deals",
	"price", "bonus", "free", "review", "reviews",
}

// classifyAnchor maps anchor text to a pattern and the resulting risk tier.
func classifyAnchor(anchorText string, pf *domain.PreflightResult) (pattern, tier string) {
	anchor := strings.ToLower(strings.TrimSpace(anchorText))

	if genericAnchors[anchor] {
		return "generic", riskLow
	}
	for _, brand := range pf.Anchor.BrandTerms {
		if brand != "" && strings.Contains(anchor, strings.ToLower(brand)) {
			return "branded", riskLow
		}
	}

	topicHit := false
	for _, term := range strings.Fields(strings.ToLower(pf.Target.Topic)) {
		if len(term) > 2 && strings.Contains(anchor, term) {
			topicHit = true
			break
		}
	}
	commercial := false
	for _, mod := range commercialModifiers {
		if strings.Contains(anchor, mod) {
			commercial = true
			break
		}
	}

	switch {
	case topicHit && commercial:
		return "exact", riskHigh
	case topicHit:
		return "partial", riskMedium
	default:
		return "generic", riskLow
	}
}

// evalAnchor checks anchor presence, placement outside headings, and the
// anchor risk tier. Blocking: a high-risk (exact-match commercial) pattern.
func evalAnchor(job *domain.JobInput, pf *domain.PreflightResult, doc *ArticleDoc) criterionResult {
	res := criterionResult{score: 100}

	if doc.AnchorSentence(job.AnchorText) == -1 {
		res.critical = true
		res.score = 10
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionAnchor,
			Severity:  domain.SeverityCritical,
			Message:   "anchor text does not appear in the draft",
		})
		res.recommend("Regenerate with the anchor text embedded as a link")
		return res
	}

	anchorLower := strings.ToLower(job.AnchorText)
	for _, h := range doc.Headings {
		if strings.Contains(strings.ToLower(h.Text), anchorLower) {
			res.score -= 25
			res.addIssue(domain.Issue{
				Criterion:   domain.CriterionAnchor,
				Severity:    domain.SeverityWarning,
				Message:     fmt.Sprintf("anchor text appears in heading %q", h.Text),
				Category:    domain.FixAnchorPlacement,
				AutoFixable: true,
			})
			break
		}
	}

	pattern, tier := classifyAnchor(job.AnchorText, pf)
	switch tier {
	case riskHigh:
		res.critical = true
		res.score -= 50
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionAnchor,
			Severity:  domain.SeverityCritical,
			Message:   fmt.Sprintf("high-risk %s-match anchor pattern", pattern),
		})
		res.recommend("Soften the anchor toward a branded or generic phrase")
	case riskMedium:
		res.score -= 15
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionAnchor,
			Severity:  domain.SeverityInfo,
			Message:   fmt.Sprintf("%s-match anchor pattern carries moderate risk", pattern),
		})
	}

	if res.score < 0 {
		res.score = 0
	}
	return res
}

// tier1Suffixes and tier1Hosts define the highest-authority citation class:
// government, academic, and major-news sources.
var tier1Suffixes = []string{".gov", ".edu", ".ac.uk", ".int"}

var tier1Hosts = map[string]bool{
	"reuters.com": true, "apnews.com": true, "bbc.com": true, "bbc.co.uk": true,
	"nytimes.com": true, "washingtonpost.com": true, "theguardian.com": true,
	"wsj.com": true, "bloomberg.com": true, "nature.com": true,
	"science.org": true, "oecd.org": true, "europa.eu": true,
}

func isTier1(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	for _, suffix := range tier1Suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	if tier1Hosts[host] {
		return true
	}
	for h := range tier1Hosts {
		if strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// evalTrust checks citation quality. Blocking: zero tier-1 citations.
func evalTrust(job *domain.JobInput, doc *ArticleDoc) criterionResult {
	res := criterionResult{}

	citations := 0
	tier1 := 0
	for _, link := range doc.Links {
		if link.URL == job.TargetURL {
			continue // the backlink itself is not a citation
		}
		citations++
		if isTier1(link.URL) {
			tier1++
		}
	}

	switch {
	case tier1 == 0:
		res.critical = true
		res.score = 25
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionTrust,
			Severity:  domain.SeverityCritical,
			Message:   "no tier-1 (government/academic/major-news) citation present",
		})
		res.recommend("Add at least one citation to a government, academic, or major-news source")
	case citations >= 2:
		res.score = 100
	default:
		res.score = 85
	}
	return res
}

// evalIntent checks that no intent sub-dimension is flagged off. Blocking:
// any dimension off.
func evalIntent(pf *domain.PreflightResult) criterionResult {
	res := criterionResult{}

	var offDims, partialDims []string
	for dim, grade := range pf.Research.Alignment {
		switch grade {
		case domain.AlignmentOff:
			offDims = append(offDims, dim)
		case domain.AlignmentPartial:
			partialDims = append(partialDims, dim)
		}
	}

	if len(offDims) > 0 {
		res.critical = true
		res.score = 30
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionIntent,
			Severity:  domain.SeverityCritical,
			Message:   "intent alignment off for: " + strings.Join(offDims, ", "),
		})
		res.recommend("Re-run search-intent research; the target does not serve this query space")
		return res
	}

	res.score = 100 - 15*len(partialDims)
	if res.score < 60 {
		res.score = 60
	}
	return res
}

// evalLSI checks that enough of the researched related terms sit within two
// sentences of the link placement. Blocking: count outside the configured
// band.
func evalLSI(cfg Config, job *domain.JobInput, pf *domain.PreflightResult, doc *ArticleDoc) criterionResult {
	res := criterionResult{}

	if len(pf.Research.RelatedTerms) == 0 {
		res.score = 75
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionLSI,
			Severity:  domain.SeverityInfo,
			Message:   "research produced no related terms; link context not evaluated",
		})
		return res
	}

	anchorIdx := doc.AnchorSentence(job.AnchorText)
	if anchorIdx == -1 {
		res.score = 40
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionLSI,
			Severity:  domain.SeverityWarning,
			Message:   "link placement not found; related-term window not evaluated",
		})
		return res
	}

	window := doc.SentenceWindow(anchorIdx, cfg.LSIWindow)
	count := NewTermMatcher(pf.Research.RelatedTerms).Count(window)

	switch {
	case count >= cfg.LSIMin && count <= cfg.LSIMax:
		res.score = 100
	case count < cfg.LSIMin:
		res.critical = true
		res.score = 40 + (50*count)/cfg.LSIMin
		res.addIssue(domain.Issue{
			Criterion:   domain.CriterionLSI,
			Severity:    domain.SeverityCritical,
			Message:     fmt.Sprintf("%d related terms near the link, need %d-%d", count, cfg.LSIMin, cfg.LSIMax),
			Category:    domain.FixLSICount,
			AutoFixable: true,
		})
		res.recommend("Work more of the researched related terms into the sentences around the link")
	default:
		res.critical = true
		res.score = 60
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionLSI,
			Severity:  domain.SeverityCritical,
			Message:   fmt.Sprintf("%d related terms near the link reads as keyword stuffing, cap is %d", count, cfg.LSIMax),
		})
		res.recommend("Thin out the related terms clustered around the link")
	}
	return res
}

// evalFit checks the readability band and tone markers of the publisher
// profile. Blocking: readability more than 20 points outside the band.
func evalFit(cfg Config, pf *domain.PreflightResult, doc *ArticleDoc) criterionResult {
	res := criterionResult{}

	lo, hi := pf.Publisher.ReadabilityMin, pf.Publisher.ReadabilityMax
	if lo == 0 && hi == 0 {
		lo, hi = cfg.DefaultReadabilityMin, cfg.DefaultReadabilityMax
	}

	flesch := FleschReadingEase(doc.PlainText)
	var dist float64
	switch {
	case flesch < lo:
		dist = lo - flesch
	case flesch > hi:
		dist = flesch - hi
	}

	switch {
	case dist == 0:
		res.score = 100
	case dist <= 10:
		res.score = 75
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionFit,
			Severity:  domain.SeverityInfo,
			Message:   fmt.Sprintf("readability %.0f slightly outside publisher band [%.0f-%.0f]", flesch, lo, hi),
		})
	case dist <= 20:
		res.score = 55
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionFit,
			Severity:  domain.SeverityWarning,
			Message:   fmt.Sprintf("readability %.0f outside publisher band [%.0f-%.0f]", flesch, lo, hi),
		})
		res.recommend("Adjust sentence length toward the publisher's readability band")
	default:
		res.critical = true
		res.score = 30
		res.addIssue(domain.Issue{
			Criterion: domain.CriterionFit,
			Severity:  domain.SeverityCritical,
			Message:   fmt.Sprintf("readability %.0f far outside publisher band [%.0f-%.0f]", flesch, lo, hi),
		})
		res.recommend("Rewrite for the publisher's audience; the reading level is badly mismatched")
	}

	if markers := pf.Publisher.ToneMarkers; len(markers) > 0 {
		found := NewTermMatcher(markers).Count(doc.PlainText)
		if float64(found)/float64(len(markers)) < 0.5 {
			res.score -= 10
			res.recommend("Echo more of the publisher's tone markers: " + strings.Join(markers, ", "))
		}
	}

	if res.score < 0 {
		res.score = 0
	}
	return res
}

// evalCompliance checks that a regulated vertical carries its required
// disclaimer. Blocking: required disclaimer missing.
func evalCompliance(pf *domain.PreflightResult, doc *ArticleDoc, draftText string) criterionResult {
	res := criterionResult{score: 100}

	vertical := DetectVertical(pf.Target.Vertical, doc.PlainText)
	if vertical == "" {
		return res
	}

	if HasDisclaimer(vertical, draftText) {
		return res
	}

	res.critical = true
	res.score = 20
	res.addIssue(domain.Issue{
		Criterion:   domain.CriterionCompliance,
		Severity:    domain.SeverityCritical,
		Message:     fmt.Sprintf("required %s disclaimer missing", vertical),
		Category:    domain.FixMissingDisclaimer,
		AutoFixable: true,
	})
	res.recommend(fmt.Sprintf("Append the standard %s disclaimer", vertical))
	return res
}
