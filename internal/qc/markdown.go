package qc

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one markdown heading in a draft.
type Heading struct {
	Level int
	Text  string
}

// Link is one markdown link in a draft.
type Link struct {
	Text string
	URL  string
}

// ArticleDoc is the structural view of a markdown draft that the quality
// criteria inspect: headings, links, plain text, and sentence boundaries.
type ArticleDoc struct {
	Headings  []Heading
	Links     []Link
	PlainText string
	Sentences []string
	WordCount int
}

var markdown = goldmark.New()

// ParseArticle parses a markdown draft into its structural view.
func ParseArticle(source string) *ArticleDoc {
	src := []byte(source)
	root := markdown.Parser().Parse(text.NewReader(src))

	doc := &ArticleDoc{}
	var plain strings.Builder

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			doc.Headings = append(doc.Headings, Heading{
				Level: node.Level,
				Text:  nodeText(node, src),
			})
			plain.WriteString(nodeText(node, src))
			plain.WriteString(". ")
			return ast.WalkSkipChildren, nil
		case *ast.Link:
			doc.Links = append(doc.Links, Link{
				Text: nodeText(node, src),
				URL:  string(node.Destination),
			})
			plain.WriteString(nodeText(node, src))
			plain.WriteString(" ")
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			plain.Write(node.Segment.Value(src))
			plain.WriteString(" ")
		case *ast.String:
			plain.Write(node.Value)
			plain.WriteString(" ")
		}
		return ast.WalkContinue, nil
	})

	doc.PlainText = strings.Join(strings.Fields(plain.String()), " ")
	doc.WordCount = len(strings.Fields(doc.PlainText))
	doc.Sentences = splitSentences(doc.PlainText)
	return doc
}

// SectionCount returns the number of H2 headings.
func (d *ArticleDoc) SectionCount() int {
	count := 0
	for _, h := range d.Headings {
		if h.Level == 2 {
			count++
		}
	}
	return count
}

// AnchorSentence returns the index of the sentence containing the given
// anchor text, or -1 when the anchor does not appear.
func (d *ArticleDoc) AnchorSentence(anchorText string) int {
	needle := strings.ToLower(anchorText)
	for i, s := range d.Sentences {
		if strings.Contains(strings.ToLower(s), needle) {
			return i
		}
	}
	return -1
}

// SentenceWindow joins the sentences within radius of center, clamped to the
// document bounds.
func (d *ArticleDoc) SentenceWindow(center, radius int) string {
	if center < 0 || len(d.Sentences) == 0 {
		return ""
	}
	lo := max(0, center-radius)
	hi := min(len(d.Sentences), center+radius+1)
	return strings.Join(d.Sentences[lo:hi], " ")
}

// nodeText collects the raw text of a node's descendants.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// splitSentences performs a naive sentence split on terminal punctuation
// followed by whitespace. Good enough for window checks on generated prose.
func splitSentences(text string) []string {
	var sentences []string
	var sb strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		sb.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') &&
			(i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n') {
			if s := strings.TrimSpace(sb.String()); s != "" {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
