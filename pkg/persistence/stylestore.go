package persistence

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"scriptforge/pkg/retrieval"
)

var wordRE = regexp.MustCompile(`[a-z0-9]+`)

// stopwords excluded from keyword extraction and query matching.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "from": true, "have": true, "has": true, "was": true,
	"are": true, "but": true, "not": true, "they": true, "their": true,
	"its": true, "you": true, "your": true, "about": true, "into": true,
	"than": true, "what": true, "when": true, "how": true, "why": true,
	"viral": true, "hook": true, "script": true,
}

// AddStyleRef stores one reference snippet in the corpus. Keywords are
// derived from the content for similarity ranking.
func (s *Store) AddStyleRef(ctx context.Context, kind retrieval.Kind, mode, content string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO style_refs (id, kind, mode, content, keywords) VALUES (?, ?, ?, ?, ?)`,
		id, string(kind), mode, content, strings.Join(extractKeywords(content), " "),
	)
	if err != nil {
		return "", fmt.Errorf("failed to add style reference: %w", err)
	}
	return id, nil
}

// QuerySimilar implements retrieval.StyleStore. Candidates of the requested
// kind are ranked by keyword overlap with the query; mode filters when set.
// This is a deliberately plain similarity: the corpus is small (hundreds of
// scripts) and keyword overlap is good enough to surface on-topic references.
func (s *Store) QuerySimilar(ctx context.Context, query string, mode string, kind retrieval.Kind, limit int) ([]retrieval.StyleDoc, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, content, keywords, mode FROM style_refs WHERE kind = ?`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query style references: %w", err)
	}
	defer func() { _ = rows.Close() }()

	queryWords := extractKeywords(query)

	type scored struct {
		doc   retrieval.StyleDoc
		score int
	}
	var candidates []scored
	for rows.Next() {
		var doc retrieval.StyleDoc
		var keywords, rowMode string
		if err := rows.Scan(&doc.SourceID, &doc.Kind, &doc.Content, &keywords, &rowMode); err != nil {
			return nil, fmt.Errorf("failed to scan style reference: %w", err)
		}
		if mode != "" && rowMode != "" && rowMode != mode {
			continue
		}
		candidates = append(candidates, scored{doc: doc, score: overlap(queryWords, keywords)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	docs := make([]retrieval.StyleDoc, len(candidates))
	for i, c := range candidates {
		docs[i] = c.doc
	}
	return docs, nil
}

func extractKeywords(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, w := range wordRE.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 4 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

func overlap(queryWords []string, keywords string) int {
	have := make(map[string]bool)
	for _, w := range strings.Fields(keywords) {
		have[w] = true
	}
	score := 0
	for _, w := range queryWords {
		if have[w] {
			score++
		}
	}
	return score
}
