// Package validator normalizes and validates raw job input before any
// expensive work starts. Validation is pure: it either returns an immutable
// JobInput or a ValidationError listing every violated constraint.
package validator

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/robwestz/bacowr/internal/domain"
)

// RawInput is the unvalidated job request as received from the caller.
type RawInput struct {
	ID              string `json:"id" yaml:"id"`
	PublisherDomain string `json:"publisher_domain" yaml:"publisher_domain"`
	TargetURL       string `json:"target_url" yaml:"target_url"`
	AnchorText      string `json:"anchor_text" yaml:"anchor_text"`
	Provider        string `json:"provider" yaml:"provider"`
	Strategy        string `json:"strategy" yaml:"strategy"`
	CountryCode     string `json:"country_code" yaml:"country_code"`
	MinWordCount    int    `json:"min_word_count" yaml:"min_word_count"`
}

// ValidationError reports every violated constraint, not just the first, so
// the caller can surface them all at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job input: %s", strings.Join(e.Violations, "; "))
}

// Validate normalizes raw input into a JobInput or returns a ValidationError.
// Applying Validate to the fields of its own output yields an identical
// JobInput: all normalization steps are idempotent and the job ID is kept
// once assigned.
func Validate(raw RawInput) (*domain.JobInput, error) {
	var violations []string

	publisherDomain, errs := normalizePublisherDomain(raw.PublisherDomain)
	violations = append(violations, errs...)

	targetURL, errs := validateTargetURL(raw.TargetURL)
	violations = append(violations, errs...)

	anchorText := strings.TrimSpace(raw.AnchorText)
	if n := utf8.RuneCountInString(anchorText); n < domain.MinAnchorLength {
		violations = append(violations, "anchor_text must not be empty")
	} else if n > domain.MaxAnchorLength {
		violations = append(violations,
			fmt.Sprintf("anchor_text exceeds %d characters (got %d)", domain.MaxAnchorLength, n))
	}

	strategy := strings.ToLower(strings.TrimSpace(raw.Strategy))
	switch strategy {
	case "":
		strategy = domain.DefaultStrategy
	case domain.StrategyAuto, domain.StrategyStrong, domain.StrategyPivot, domain.StrategyWrapper:
	default:
		violations = append(violations, fmt.Sprintf("unknown strategy %q", raw.Strategy))
	}

	countryCode := strings.ToLower(strings.TrimSpace(raw.CountryCode))
	if countryCode == "" {
		countryCode = domain.DefaultCountryCode
	} else if !isAlpha2(countryCode) {
		violations = append(violations, fmt.Sprintf("country_code must be two letters (got %q)", raw.CountryCode))
	}

	minWordCount := raw.MinWordCount
	if minWordCount == 0 {
		minWordCount = domain.DefaultMinWordCount
	} else if minWordCount < 0 {
		violations = append(violations, "min_word_count must not be negative")
	}

	provider := strings.TrimSpace(raw.Provider)
	if provider == "" {
		provider = domain.DefaultProvider
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = uuid.NewString()
	}

	return &domain.JobInput{
		ID:              id,
		PublisherDomain: publisherDomain,
		TargetURL:       targetURL,
		AnchorText:      anchorText,
		Provider:        provider,
		Strategy:        strategy,
		CountryCode:     countryCode,
		MinWordCount:    minWordCount,
	}, nil
}

// normalizePublisherDomain strips protocol, path, and whitespace, and
// lowercases the host.
func normalizePublisherDomain(raw string) (string, []string) {
	d := strings.TrimSpace(raw)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	d = strings.ToLower(d)

	if d == "" {
		return d, []string{"publisher_domain must not be empty"}
	}
	if strings.ContainsAny(d, " \t") {
		return d, []string{fmt.Sprintf("publisher_domain contains whitespace: %q", d)}
	}
	if !strings.Contains(d, ".") {
		return d, []string{fmt.Sprintf("publisher_domain is not a valid domain: %q", d)}
	}
	return d, nil
}

func validateTargetURL(raw string) (string, []string) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u, []string{"target_url must not be empty"}
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return u, []string{fmt.Sprintf("target_url is not a valid URL: %v", err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return u, []string{fmt.Sprintf("target_url must be absolute http(s), got scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return u, []string{"target_url has no host"}
	}
	return u, nil
}

func isAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
