// Package autofix applies deterministic repairs to a blocked draft. Each
// auto-fixable issue category maps to exactly one text transform, so fixing
// the same draft twice yields the same output.
package autofix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/logger"
	"github.com/robwestz/bacowr/internal/qc"
)

// ErrNoFix is returned when no reported issue has a known repair strategy,
// or when every applicable strategy left the draft unchanged.
var ErrNoFix = errors.New("autofix: no applicable repair strategy")

// fixOrder is the canonical order transforms run in. Structural fixes come
// before text insertions so later transforms see the final layout, and the
// disclaimer goes last so it stays at the end of the article.
var fixOrder = []domain.FixCategory{
	domain.FixAnchorPlacement,
	domain.FixStructure,
	domain.FixContentExpansion,
	domain.FixLSICount,
	domain.FixMissingDisclaimer,
}

// Engine repairs drafts based on a quality report.
type Engine struct {
	cfg qc.Config
	log logger.Logger
}

// New creates an AutoFix engine sharing the quality controller's thresholds.
func New(cfg qc.Config, log logger.Logger) *Engine {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{cfg: cfg, log: log}
}

// Apply runs every applicable repair for the report's auto-fixable issues and
// returns the repaired draft with a log of what was attempted. The input
// draft is never mutated. ErrNoFix means the caller should fall back to
// regeneration.
func (e *Engine) Apply(job *domain.JobInput, pf *domain.PreflightResult, draft *domain.Draft, report *domain.QCReport) (*domain.Draft, *domain.AutoFixLog, error) {
	fixLog := &domain.AutoFixLog{OriginalHash: draft.ContentHash}

	wanted := make(map[domain.FixCategory]bool)
	for _, issue := range report.Issues {
		if issue.AutoFixable && issue.Category != "" {
			wanted[issue.Category] = true
		}
	}

	text := draft.Text
	for _, category := range fixOrder {
		if !wanted[category] {
			continue
		}
		fixLog.Attempted = append(fixLog.Attempted, category)

		fixed := e.transform(category, job, pf, text)
		if fixed != text {
			e.log.Debug("autofix transform applied",
				logger.String("job_id", job.ID),
				logger.String("category", string(category)))
			text = fixed
		}
	}

	if text == draft.Text {
		return draft, fixLog, ErrNoFix
	}

	repaired := draft.WithText(text)
	fixLog.Applied = true
	fixLog.FixedHash = repaired.ContentHash

	e.log.Info("autofix applied",
		logger.String("job_id", job.ID),
		logger.Int("transforms", len(fixLog.Attempted)),
		logger.String("fixed_hash", repaired.ContentHash))
	return repaired, fixLog, nil
}

func (e *Engine) transform(category domain.FixCategory, job *domain.JobInput, pf *domain.PreflightResult, text string) string {
	switch category {
	case domain.FixAnchorPlacement:
		return fixAnchorPlacement(text, job.AnchorText, pf.Target.Title)
	case domain.FixStructure:
		return fixStructure(text, e.cfg.MinSections)
	case domain.FixContentExpansion:
		return fixContentExpansion(text, job, pf)
	case domain.FixLSICount:
		return e.fixLSICount(text, job, pf)
	case domain.FixMissingDisclaimer:
		return fixMissingDisclaimer(text, pf)
	default:
		return text
	}
}

// fixAnchorPlacement removes the anchor phrase from any heading it appears
// in. The link placement in the body is left alone.
func fixAnchorPlacement(text, anchorText, fallbackTitle string) string {
	anchorLower := strings.ToLower(anchorText)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !strings.Contains(strings.ToLower(trimmed), anchorLower) {
			continue
		}

		markerEnd := strings.IndexFunc(trimmed, func(r rune) bool { return r != '#' })
		if markerEnd == -1 {
			continue
		}
		marker := trimmed[:markerEnd]
		title := strings.TrimSpace(trimmed[len(marker):])
		title = removeFold(title, anchorText)
		if title == "" {
			title = fallbackTitle
		}
		if title == "" {
			title = "Overview"
		}
		lines[i] = marker + " " + title
	}
	return strings.Join(lines, "\n")
}

// removeFold strips the first case-insensitive occurrence of phrase and
// collapses the surrounding whitespace.
func removeFold(s, phrase string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(phrase))
	if idx == -1 {
		return s
	}
	out := s[:idx] + s[idx+len(phrase):]
	return strings.Join(strings.Fields(out), " ")
}

// structureHeadings are inserted in order until the draft carries enough
// sections.
var structureHeadings = []string{"Key Takeaways", "Background"}

// fixStructure inserts section headings before the trailing paragraphs until
// the section count reaches the minimum.
func fixStructure(text string, minSections int) string {
	paragraphs := splitParagraphs(text)
	sections := 0
	for _, p := range paragraphs {
		if strings.HasPrefix(p, "## ") {
			sections++
		}
	}

	for _, heading := range structureHeadings {
		if sections >= minSections {
			break
		}
		if len(paragraphs) < 2 {
			paragraphs = append(paragraphs, "## "+heading)
		} else {
			last := len(paragraphs) - 1
			paragraphs = append(paragraphs[:last],
				append([]string{"## " + heading}, paragraphs[last:]...)...)
		}
		sections++
	}
	return strings.Join(paragraphs, "\n\n") + "\n"
}

// fixContentExpansion appends an elaboration section until the word count
// clears the job minimum.
func fixContentExpansion(text string, job *domain.JobInput, pf *domain.PreflightResult) string {
	// Word counts follow the quality controller: markdown stripped first.
	if qc.ParseArticle(text).WordCount >= job.MinWordCount {
		return text
	}

	topic := pf.Target.Topic
	if topic == "" {
		topic = "the subject"
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(text, "\n"))
	sb.WriteString("\n\n## A Closer Look\n\n")

	subtopics := pf.Research.RequiredSubtopics
	if len(subtopics) == 0 {
		subtopics = []string{topic}
	}

	i := 0
	for qc.ParseArticle(sb.String()).WordCount < job.MinWordCount {
		subtopic := subtopics[i%len(subtopics)]
		sb.WriteString(fmt.Sprintf(
			"Anyone weighing %s should give %s a careful look before deciding. ", topic, subtopic))
		sb.WriteString(fmt.Sprintf(
			"Practical experience with %s tends to separate useful advice from noise. ", subtopic))
		i++
	}
	sb.WriteString("\n")
	return sb.String()
}

// fixLSICount inserts a sentence carrying the missing related terms directly
// after the link placement.
func (e *Engine) fixLSICount(text string, job *domain.JobInput, pf *domain.PreflightResult) string {
	terms := pf.Research.RelatedTerms
	if len(terms) == 0 {
		return text
	}

	linkMarker := "[" + job.AnchorText + "]"
	linkIdx := strings.Index(text, linkMarker)
	if linkIdx == -1 {
		return text
	}

	doc := qc.ParseArticle(text)
	anchorIdx := doc.AnchorSentence(job.AnchorText)
	if anchorIdx == -1 {
		return text
	}

	window := doc.SentenceWindow(anchorIdx, e.cfg.LSIWindow)
	present := make(map[string]bool)
	for _, term := range qc.NewTermMatcher(terms).Match(window) {
		present[term] = true
	}

	needed := e.cfg.LSIMin - len(present)
	if needed <= 0 {
		return text
	}

	var missing []string
	for _, term := range terms {
		if len(missing) == needed {
			break
		}
		if !present[strings.ToLower(term)] {
			missing = append(missing, term)
		}
	}
	if len(missing) == 0 {
		return text
	}

	sentence := " Weighing " + joinNaturally(missing) + " alongside that guidance keeps the advice grounded."

	// Insert after the sentence that carries the link, skipping the URL part
	// of the markdown link so its dots are not mistaken for sentence ends.
	pos := linkIdx + len(linkMarker)
	if pos < len(text) && text[pos] == '(' {
		if close := strings.IndexByte(text[pos:], ')'); close != -1 {
			pos += close + 1
		}
	}
	end := sentenceEnd(text, pos)
	return text[:end] + sentence + text[end:]
}

// sentenceEnd returns the index just past the first sentence terminator at or
// after start, or the end of the paragraph.
func sentenceEnd(text string, start int) int {
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			return i + 1
		case '\n':
			return i
		}
	}
	return len(text)
}

// fixMissingDisclaimer appends the required disclaimer for the detected
// vertical.
func fixMissingDisclaimer(text string, pf *domain.PreflightResult) string {
	doc := qc.ParseArticle(text)
	vertical := qc.DetectVertical(pf.Target.Vertical, doc.PlainText)
	disclaimer := qc.DisclaimerFor(vertical)
	if disclaimer == "" || qc.HasDisclaimer(vertical, text) {
		return text
	}
	return strings.TrimRight(text, "\n") + "\n\n*" + disclaimer + "*\n"
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, strings.TrimRight(p, "\n"))
		}
	}
	return paragraphs
}

// joinNaturally renders a term list as prose: "a", "a and b", "a, b, and c".
func joinNaturally(terms []string) string {
	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	case 2:
		return terms[0] + " and " + terms[1]
	default:
		return strings.Join(terms[:len(terms)-1], ", ") + ", and " + terms[len(terms)-1]
	}
}
