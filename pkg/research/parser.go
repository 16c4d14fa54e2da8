package research

import (
	"regexp"
	"strings"
)

// Detection is the parsed result of the topic classification call.
type Detection struct {
	Type        TopicClass
	Suggestions []string
	Questions   []string
	Raw         string
}

// TopicClass is the letter class the detect prompt asks for.
type TopicClass string

// Topic classes. Specific and Trending proceed; Generic and Ambiguous end
// the run with a request for more input.
const (
	ClassSpecific  TopicClass = "A"
	ClassGeneric   TopicClass = "B"
	ClassTrending  TopicClass = "C"
	ClassAmbiguous TopicClass = "D"
)

var (
	anglePattern     = regexp.MustCompile(`ANGLE \d+:\s*"([^"]+)"`)
	quotedAnglesRE   = regexp.MustCompile(`"([^"]{30,})"`)
	questionNumRE    = regexp.MustCompile(`Question \d+:\s*(.+)`)
	questionBulletRE = regexp.MustCompile(`- (.+\?)`)
)

// classPatterns returns the phrasings a class letter may appear in. The
// response format is free text, so several equivalent forms are accepted.
func classPatterns(letter string) []string {
	return []string{
		"TYPE:** " + letter,
		"TYPE: " + letter,
		"TYPE " + letter,
		"**" + letter + "**",
		"TOPIC TYPE:** " + letter,
		"TOPIC TYPE: " + letter,
	}
}

// parseDetection classifies the detect call's free-text response. Unparseable
// responses default to Specific: err toward proceeding rather than blocking.
func parseDetection(content string) Detection {
	d := Detection{Type: ClassSpecific, Raw: content}
	upper := strings.ToUpper(content)

	matches := func(letter string) bool {
		for _, p := range classPatterns(letter) {
			if strings.Contains(upper, p) {
				return true
			}
		}
		return false
	}

	switch {
	case matches("B"):
		d.Type = ClassGeneric
	case matches("C"):
		d.Type = ClassTrending
	case matches("D"):
		d.Type = ClassAmbiguous
	case matches("A"):
		d.Type = ClassSpecific
	default:
		// No explicit letter; fall back to the reasoning keywords.
		if strings.Contains(upper, "GENERIC") && strings.Contains(upper, "NEEDS TRANSFORMATION") {
			d.Type = ClassGeneric
		} else if strings.Contains(upper, "AMBIGUOUS") && strings.Contains(upper, "NEEDS CLARIFICATION") {
			d.Type = ClassAmbiguous
		}
	}

	d.Suggestions = extractSuggestions(content)
	if d.Type == ClassAmbiguous {
		d.Questions = extractQuestions(content)
	}
	return d
}

// extractSuggestions pulls up to 3 suggested angle strings.
func extractSuggestions(content string) []string {
	var suggestions []string
	for _, m := range anglePattern.FindAllStringSubmatch(content, -1) {
		suggestions = append(suggestions, m[1])
	}
	if len(suggestions) == 0 {
		// Fallback: any quoted string long enough to be an angle.
		for _, m := range quotedAnglesRE.FindAllStringSubmatch(content, 3) {
			suggestions = append(suggestions, m[1])
		}
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// extractQuestions pulls up to 2 clarifying questions.
func extractQuestions(content string) []string {
	for _, re := range []*regexp.Regexp{questionNumRE, questionBulletRE} {
		var questions []string
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			q := strings.TrimSpace(m[1])
			if strings.Contains(q, "?") {
				questions = append(questions, q)
			}
		}
		if len(questions) > 0 {
			if len(questions) > 2 {
				questions = questions[:2]
			}
			return questions
		}
	}
	return nil
}

// Selection is the parsed result of the angle-selection call. Extraction
// failures leave fields empty rather than erroring.
type Selection struct {
	Angle         string
	DraftHook     string
	SearchQueries []string
	Raw           string
}

func parseSelection(content string) Selection {
	return Selection{
		Angle:         extractBetween(content, "**Winner:**", "\n"),
		DraftHook:     extractBetween(content, "**The Hook (Draft):**", "\n"),
		SearchQueries: extractSearchQueries(content),
		Raw:           content,
	}
}

// extractBetween returns the trimmed text between two markers, or "" when
// either marker is absent.
func extractBetween(text, start, end string) string {
	startIdx := strings.Index(text, start)
	if startIdx < 0 {
		return ""
	}
	startIdx += len(start)
	endIdx := strings.Index(text[startIdx:], end)
	if endIdx < 0 {
		return strings.TrimSpace(text[startIdx:])
	}
	return strings.TrimSpace(text[startIdx : startIdx+endIdx])
}

// extractSearchQueries collects quoted lines under the "Search Queries" (or
// "Deep Dive") header, up to 4.
func extractSearchQueries(text string) []string {
	var queries []string
	inQueries := false
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "Search Queries") || strings.Contains(line, "Deep Dive") {
			inQueries = true
			continue
		}
		if !inQueries {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "**Why") {
			break
		}
		// Lines arrive numbered ("1. \"...\""), so strip the numbering
		// before looking for the quote.
		trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "1234567890."))
		if strings.HasPrefix(trimmed, `"`) {
			query := strings.TrimSpace(strings.Trim(trimmed, `"`))
			if query != "" {
				queries = append(queries, query)
			}
		}
	}
	if len(queries) > 4 {
		queries = queries[:4]
	}
	return queries
}
