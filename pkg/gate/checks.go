package gate

import (
	"regexp"
	"strings"
)

var capsTokenRE = regexp.MustCompile(`\b[A-Z]{3,}\b`)

// findBlockedTerms returns every blocklisted term present in the text.
// Blocklist terms are all-caps spam words, so the match is case-sensitive:
// "destroyed" in running prose is fine, "DESTROYED" is not.
func findBlockedTerms(text string, blocklist []string) []string {
	var found []string
	for _, term := range blocklist {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// findExcessCaps returns all-caps tokens that are not allowlisted acronyms.
// Duplicate tokens count once.
func findExcessCaps(text string, allowlist []string) []string {
	allowed := make(map[string]bool, len(allowlist))
	for _, a := range allowlist {
		allowed[a] = true
	}

	seen := make(map[string]bool)
	var found []string
	for _, token := range capsTokenRE.FindAllString(text, -1) {
		if allowed[token] || seen[token] {
			continue
		}
		seen[token] = true
		found = append(found, token)
	}
	return found
}
