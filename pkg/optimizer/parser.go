package optimizer

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bestHookRE  = regexp.MustCompile(`BEST_HOOK:\s*(\d+)`)
	rankingRE   = regexp.MustCompile(`HOOK_RANKING:\s*([\d,\s]+)`)
	credRE      = regexp.MustCompile(`CREDIBILITY_SCORE:\s*(\d+)`)
	viralRE     = regexp.MustCompile(`VIRAL_POTENTIAL:\s*(.+)`)
	optimizedRE = regexp.MustCompile(`(?s)## FINAL SCRIPT\s*(.*?)(?:###|---|\z)`)
)

// analysis is what the re-rank call gives back, after tolerant parsing.
type analysis struct {
	BestHook       int
	Ranking        []int
	Credibility    int
	ViralPotential string
	Optimized      string
}

func defaultAnalysis() analysis {
	return analysis{
		BestHook:       1,
		Ranking:        []int{1, 2, 3, 4, 5},
		ViralPotential: "Unknown",
	}
}

// parseAnalysis extracts the machine-readable markers from the analyst's
// free-text response. Every field falls back to a safe default.
func parseAnalysis(content string) analysis {
	a := defaultAnalysis()

	if m := bestHookRE.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			a.BestHook = n
		}
	}

	if m := rankingRE.FindStringSubmatch(content); m != nil {
		var ranking []int
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(part)
			if n, err := strconv.Atoi(part); err == nil {
				ranking = append(ranking, n)
			}
		}
		if len(ranking) > 0 {
			a.Ranking = ranking
		}
	}

	if m := credRE.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			a.Credibility = n
		}
	}

	if m := viralRE.FindStringSubmatch(content); m != nil {
		a.ViralPotential = strings.TrimSpace(m[1])
	}

	if m := optimizedRE.FindStringSubmatch(content); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			a.Optimized = s
		}
	}

	return a
}
