package retrieval

import (
	"context"
	"fmt"
	"strings"

	"scriptforge/pkg/llm"
	"scriptforge/pkg/logx"
	"scriptforge/pkg/pipeline"
)

const (
	fullQueryLimit = 6
	hookQueryLimit = 6

	maxFullDocs  = 2
	maxTotalDocs = 3

	fullSnippetChars = 500
	hookSnippetChars = 300

	// Used verbatim when both lookups come back empty or fail.
	noExamplesFallback = "No prior examples found. Use a generic viral structure."
)

// Stage fetches stylistic reference snippets for the topic. It is a pure
// read: no state other than StyleContext is touched, and lookup failures
// degrade to the generic fallback instead of stopping the run.
type Stage struct {
	store      StyleStore
	compressor llm.Client
	logger     *logx.Logger
}

// NewStage creates the retrieval stage. compressor is optional; when set,
// each full snippet is distilled to its techniques with one generation call.
func NewStage(store StyleStore, compressor llm.Client) *Stage {
	return &Stage{
		store:      store,
		compressor: compressor,
		logger:     logx.NewLogger("retrieval"),
	}
}

func (s *Stage) Name() string { return "retrieval" }

func (s *Stage) Run(ctx context.Context, st *pipeline.State) (pipeline.Outcome, error) {
	fullQuery := st.Topic
	if st.SelectedAngle != nil && st.SelectedAngle.Focus != "" {
		fullQuery = st.Topic + " " + st.SelectedAngle.Focus
	}
	hookQuery := "viral hook for " + st.Topic

	// The two lookups fail independently. A dead store on one kind still
	// lets the other contribute context.
	fullDocs := s.query(ctx, fullQuery, st.Mode, KindFull, fullQueryLimit)
	hookDocs := s.query(ctx, hookQuery, st.Mode, KindHook, hookQueryLimit)

	snippets := s.assemble(ctx, fullDocs, hookDocs)
	if len(snippets) == 0 {
		st.StyleContext = noExamplesFallback
		s.logger.Info("no style references found for %q", st.Topic)
		return pipeline.Outcome{Summary: map[string]any{"examples": 0}}, nil
	}

	var b strings.Builder
	for i, snippet := range snippets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- STYLE EXAMPLE %d ---\n%s", i+1, snippet)
	}
	st.StyleContext = b.String()
	s.logger.Info("retrieved %d style references", len(snippets))

	return pipeline.Outcome{Summary: map[string]any{"examples": len(snippets)}}, nil
}

func (s *Stage) query(ctx context.Context, q string, mode pipeline.Mode, kind Kind, limit int) []StyleDoc {
	docs, err := s.store.QuerySimilar(ctx, q, string(mode), kind, limit)
	if err != nil {
		s.logger.Warn("style lookup (%s) failed: %v", kind, err)
		return nil
	}
	return docs
}

// assemble picks at most maxFullDocs full scripts followed by hooks, up to
// maxTotalDocs snippets total, skipping sources already used.
func (s *Stage) assemble(ctx context.Context, fullDocs, hookDocs []StyleDoc) []string {
	var snippets []string
	seen := make(map[string]bool)

	for _, doc := range fullDocs {
		if len(snippets) >= maxFullDocs {
			break
		}
		if doc.SourceID != "" && seen[doc.SourceID] {
			continue
		}
		seen[doc.SourceID] = true
		snippets = append(snippets, s.fullSnippet(ctx, doc))
	}

	for _, doc := range hookDocs {
		if len(snippets) >= maxTotalDocs {
			break
		}
		if doc.SourceID != "" && seen[doc.SourceID] {
			continue
		}
		seen[doc.SourceID] = true
		snippets = append(snippets, "HOOK: "+truncate(doc.Content, hookSnippetChars))
	}

	return snippets
}

// fullSnippet prefers a compressed technique summary of the reference script
// and falls back to a plain truncation when no compressor is configured or
// the call fails.
func (s *Stage) fullSnippet(ctx context.Context, doc StyleDoc) string {
	raw := truncate(doc.Content, fullSnippetChars)
	if s.compressor == nil {
		return raw
	}

	req := llm.NewRequest("", compressPrompt(raw))
	req.Temperature = llm.TemperaturePlanning
	req.MaxTokens = 300
	resp, err := s.compressor.Complete(ctx, req)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		if err != nil {
			s.logger.Warn("technique compression failed, using raw snippet: %v", err)
		}
		return raw
	}
	return strings.TrimSpace(resp.Content)
}

func compressPrompt(snippet string) string {
	return fmt.Sprintf(`Summarize the writing TECHNIQUES used in this short-form video script in 3-4 bullet points. Focus on hook construction, pacing and transitions, not the subject matter.

SCRIPT:
%s`, snippet)
}

// truncate cuts text to at most limit runes, never splitting a multi-byte
// character.
func truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
