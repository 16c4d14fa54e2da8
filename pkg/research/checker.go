package research

import (
	"regexp"
	"strings"
)

// Checker validates that research output has the components a strong script
// needs. It is deterministic and local: the score is advisory and never
// blocks the pipeline.
type Checker struct{}

// NewChecker creates a research quality checker.
func NewChecker() *Checker {
	return &Checker{}
}

type component struct {
	name        string
	description string
	present     func(text, lower, upper string) bool
}

const componentPoints = 15

var (
	quoteRE = regexp.MustCompile(`"([^"]{20,})"`)

	numberREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$\d+\.?\d*\s*(billion|million|crore|lakh)`),
		regexp.MustCompile(`(?i)Rs\.?\s*\d+,?\d*`),
		regexp.MustCompile(`\d+,\d{3}`),
		regexp.MustCompile(`\d+\.\d+%`),
		regexp.MustCompile(`(?i)\d+\s*(crore|lakh)`),
	}

	comparisonREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+x`),
		regexp.MustCompile(`(?i)\d+\s*times`),
		regexp.MustCompile(`(?i)\d+%\s*(more|less|higher|lower)`),
	}

	personIndicators = []string{"ceo", "founder", "director", "chief", "president", "name:"}

	localeIndicators = []string{
		"india", "indian", "rs.", "rs ", "rupee", "crore", "lakh",
		"bengaluru", "bangalore", "mumbai", "delhi", "hyderabad",
		"chennai", "pune", "kolkata", "ahmedabad",
	}

	transitionPhrases = []string{
		"but here's where",
		"here's the crazy part",
		"plot twist",
		"but wait",
		"here's what most people don't know",
		"transition",
	}
)

func components() []component {
	return []component{
		{"hook_fact", "A scroll-stopping hook fact", func(_, _, upper string) bool {
			return strings.Contains(upper, "HOOK FACT") || strings.Contains(upper, "HOOK:")
		}},
		{"key_person", "A specific person with name and title", func(_, lower, _ string) bool {
			return containsAny(lower, personIndicators)
		}},
		{"direct_quote", "At least one direct quote in quotation marks", func(text, _, _ string) bool {
			return len(quoteRE.FindAllString(text, 1)) >= 1
		}},
		{"specific_number", "At least one specific number (not rounded)", func(text, _, _ string) bool {
			return matchesAny(text, numberREs)
		}},
		{"locale_angle", "Local audience relevance with a rupee amount if possible", func(_, lower, _ string) bool {
			return containsAny(lower, localeIndicators)
		}},
		{"transition", "A 'but here's where it gets interesting' moment", func(_, lower, _ string) bool {
			return containsAny(lower, transitionPhrases)
		}},
		{"insight", "A bigger picture reframe", func(_, lower, upper string) bool {
			return strings.Contains(upper, "INSIGHT") || strings.Contains(lower, "bigger picture")
		}},
	}
}

// Check scores research text against the required components, with bonus
// points for multiple quotes, comparison stats, and recent dates. A check
// passes at score >= 70 with at most 2 issues.
func (c *Checker) Check(text string) (passes bool, issues []string, score int) {
	lower := strings.ToLower(text)
	upper := strings.ToUpper(text)

	for _, comp := range components() {
		if comp.present(text, lower, upper) {
			score += componentPoints
		} else {
			issues = append(issues, "Missing: "+comp.description)
		}
	}

	if len(quoteRE.FindAllString(text, 2)) >= 2 {
		score += 5
	}
	if matchesAny(text, comparisonREs) {
		score += 5
	}
	if strings.Contains(text, "2024") || strings.Contains(text, "2025") {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	passes = score >= 70 && len(issues) <= 2
	return passes, issues, score
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func matchesAny(text string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
