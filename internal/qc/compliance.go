package qc

import "strings"

// Verticals that require a disclaimer when the article touches them.
const (
	VerticalGambling = "gambling"
	VerticalFinance  = "finance"
	VerticalHealth   = "health"
	VerticalCrypto   = "crypto"
)

// verticalLexicons are the topic keywords used to detect a regulated vertical
// when the preflight profile does not name one.
var verticalLexicons = map[string][]string{
	VerticalGambling: {
		"casino", "betting", "sportsbook", "wager", "jackpot", "slots",
		"poker", "odds boost", "bookmaker", "gambling",
	},
	VerticalFinance: {
		"loan", "mortgage", "credit score", "interest rate", "refinance",
		"investment portfolio", "broker", "apr", "annuity", "retirement fund",
	},
	VerticalHealth: {
		"symptom", "diagnosis", "treatment", "dosage", "medication",
		"supplement", "side effects", "clinical trial", "therapy",
	},
	VerticalCrypto: {
		"bitcoin", "ethereum", "blockchain", "defi", "token sale",
		"crypto wallet", "stablecoin", "altcoin", "nft",
	},
}

// disclaimers are the required disclaimer texts per vertical. Detection
// accepts any text containing the matching marker below; these full texts are
// what the AutoFix engine and the template writer insert.
var disclaimers = map[string]string{
	VerticalGambling: "Gambling involves risk. Please gamble responsibly and only with funds you can afford to lose. If gambling is a problem for you or someone you know, help is available.",
	VerticalFinance:  "This content is for informational purposes only and is not financial advice. Consult a licensed financial advisor before making investment decisions.",
	VerticalHealth:   "This article is for informational purposes only and is not medical advice. Always consult a qualified healthcare provider about medical conditions or treatment.",
	VerticalCrypto:   "Cryptocurrency investments are volatile and high risk. This content is not financial advice; never invest more than you can afford to lose.",
}

// disclaimerMarkers are the minimal phrases whose presence satisfies the
// compliance check for each vertical.
var disclaimerMarkers = map[string][]string{
	VerticalGambling: {"gamble responsibly", "gambling involves risk"},
	VerticalFinance:  {"not financial advice", "consult a licensed financial advisor"},
	VerticalHealth:   {"not medical advice", "consult a qualified healthcare provider"},
	VerticalCrypto:   {"not financial advice", "high risk"},
}

// minVerticalHits is how many distinct lexicon terms must appear before a
// vertical is inferred from text alone.
const minVerticalHits = 3

var verticalMatchers = buildVerticalMatchers()

func buildVerticalMatchers() map[string]*TermMatcher {
	matchers := make(map[string]*TermMatcher, len(verticalLexicons))
	for vertical, terms := range verticalLexicons {
		matchers[vertical] = NewTermMatcher(terms)
	}
	return matchers
}

// DisclaimerFor returns the required disclaimer text for a vertical, or ""
// when the vertical carries no disclaimer requirement.
func DisclaimerFor(vertical string) string {
	return disclaimers[strings.ToLower(vertical)]
}

// RequiresDisclaimer reports whether the vertical is regulated.
func RequiresDisclaimer(vertical string) bool {
	_, ok := disclaimers[strings.ToLower(vertical)]
	return ok
}

// DetectVertical infers a regulated vertical from article text. The declared
// vertical wins when set; otherwise the lexicon with the most distinct hits,
// at or above the detection threshold, is chosen.
func DetectVertical(declared, text string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if RequiresDisclaimer(declared) {
		return declared
	}

	best := ""
	bestHits := 0
	for vertical, matcher := range verticalMatchers {
		hits := matcher.Count(text)
		if hits >= minVerticalHits && hits > bestHits {
			best = vertical
			bestHits = hits
		}
	}
	return best
}

// HasDisclaimer reports whether the text satisfies the disclaimer
// requirement for the vertical.
func HasDisclaimer(vertical, text string) bool {
	markers, ok := disclaimerMarkers[strings.ToLower(vertical)]
	if !ok {
		return true
	}
	lower := strings.ToLower(text)
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
