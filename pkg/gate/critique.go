package gate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	scoreRE   = regexp.MustCompile(`(?m)^\s*SCORE:\s*(\d+)`)
	verdictRE = regexp.MustCompile(`(?m)^\s*VERDICT:\s*(PASS|FAIL)`)
	reasonRE  = regexp.MustCompile(`(?m)^\s*-\s*(.+)$`)
)

type critique struct {
	Score   int
	Verdict string
	Reasons []string
}

func critiquePrompt(draft string, mode string) string {
	return fmt.Sprintf(`You are a quality critic for viral short-form video scripts.

MODE: %s

Check the draft against these requirements:

1. HOOKS: pattern-interrupting, start with a person or company, include a
   specific detail, 10-20 words, no spam caps words.
2. BODY: 120-200 words, short spoken sentences, no greetings, no bullet
   points, mode-appropriate structure (numbered list for listicle, flowing
   paragraphs otherwise).
3. VIRAL ELEMENTS: at least one direct quote in quotation marks, specific
   non-rounded numbers, locale relevance where natural.

Scoring: 80-100 all requirements met, 60-79 pass with notes, 0-59 fail.

Respond in exactly this format:
SCORE: <0-100>
VERDICT: <PASS or FAIL>
REASONS:
- <reason 1>
- <reason 2>

DRAFT TO REVIEW:

%s`, strings.ToUpper(mode), draft)
}

// parseCritique recovers score, verdict and reasons from the critic's
// response. A missing score falls back to the neutral value; a missing
// verdict is left empty so the caller can decide on the score instead.
func parseCritique(content string) critique {
	c := critique{Score: neutralScore}

	if m := scoreRE.FindStringSubmatch(content); m != nil {
		var score int
		fmt.Sscanf(m[1], "%d", &score)
		if score >= 0 && score <= 100 {
			c.Score = score
		}
	}
	if m := verdictRE.FindStringSubmatch(content); m != nil {
		c.Verdict = m[1]
	}

	if idx := strings.Index(content, "REASONS:"); idx >= 0 {
		for _, m := range reasonRE.FindAllStringSubmatch(content[idx:], -1) {
			reason := strings.TrimSpace(m[1])
			if reason != "" {
				c.Reasons = append(c.Reasons, reason)
			}
		}
	}
	return c
}
