package qc

import (
	"strings"
	"testing"
)

const sampleArticle = `# Title Here

Intro sentence one. Intro sentence two!

## First Section

Body with a [useful link](https://www.bls.gov/data.htm) inside. Another sentence follows?

## Second Section

Closing words without terminal punctuation
`

func TestParseArticle_Structure(t *testing.T) {
	doc := ParseArticle(sampleArticle)

	if len(doc.Headings) != 3 {
		t.Fatalf("expected 3 headings, got %d: %v", len(doc.Headings), doc.Headings)
	}
	if doc.Headings[0].Level != 1 || doc.Headings[0].Text != "Title Here" {
		t.Errorf("unexpected first heading: %+v", doc.Headings[0])
	}
	if got := doc.SectionCount(); got != 2 {
		t.Errorf("expected 2 sections, got %d", got)
	}

	if len(doc.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(doc.Links))
	}
	if doc.Links[0].URL != "https://www.bls.gov/data.htm" || doc.Links[0].Text != "useful link" {
		t.Errorf("unexpected link: %+v", doc.Links[0])
	}

	if strings.Contains(doc.PlainText, "#") || strings.Contains(doc.PlainText, "](") {
		t.Errorf("plain text still contains markdown syntax: %q", doc.PlainText)
	}
	if doc.WordCount == 0 {
		t.Error("expected nonzero word count")
	}
}

func TestParseArticle_AnchorSentence(t *testing.T) {
	doc := ParseArticle(sampleArticle)

	idx := doc.AnchorSentence("useful link")
	if idx == -1 {
		t.Fatal("anchor sentence not found")
	}
	if !strings.Contains(strings.ToLower(doc.Sentences[idx]), "useful link") {
		t.Errorf("sentence %d does not contain anchor: %q", idx, doc.Sentences[idx])
	}

	if got := doc.AnchorSentence("absent phrase"); got != -1 {
		t.Errorf("expected -1 for absent anchor, got %d", got)
	}
}

func TestSentenceWindow(t *testing.T) {
	doc := &ArticleDoc{Sentences: []string{"a.", "b.", "c.", "d.", "e."}}

	tests := []struct {
		name     string
		center   int
		radius   int
		expected string
	}{
		{"middle", 2, 1, "b. c. d."},
		{"clamped_start", 0, 2, "a. b. c."},
		{"clamped_end", 4, 2, "c. d. e."},
		{"whole_doc", 2, 10, "a. b. c. d. e."},
		{"negative_center", -1, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doc.SentenceWindow(tt.center, tt.radius); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one! Third one? Trailing fragment")
	if len(got) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %v", len(got), got)
	}
	if got[3] != "Trailing fragment" {
		t.Errorf("unexpected trailing sentence: %q", got[3])
	}
}

func TestSplitSentences_DecimalNotSplit(t *testing.T) {
	got := splitSentences("The rate rose 3.5 percent last year. It fell after.")
	if len(got) != 2 {
		t.Errorf("decimal point split a sentence: %v", got)
	}
}
