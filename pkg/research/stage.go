// Package research turns a topic into a narrative-ready research bundle
// through a five step sub-pipeline: detect, scan, select, deep-dive,
// connect. Generic or ambiguous topics end the run early with suggestions
// or clarifying questions instead of research.
package research

import (
	"context"
	"fmt"
	"strings"

	"scriptforge/pkg/llm"
	"scriptforge/pkg/logx"
	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/utils"
)

const (
	// Supplied content shorter than this is treated as notes, not a document.
	minDocumentChars = 100

	// Documents above this token count are processed chunk by chunk.
	chunkTokenBudget = 6000

	researcherMaxTokens = 4000
	selectorMaxTokens   = 2000
)

// Stage implements the research stage of the pipeline. Two clients are
// used: the researcher for the wide scan and deep-dive calls, the selector
// for classification, selection, and narrative assembly.
type Stage struct {
	researcher llm.Client
	selector   llm.Client
	checker    *Checker
	counter    *utils.TokenCounter
	logger     *logx.Logger
}

// NewStage creates the research stage.
func NewStage(researcher, selector llm.Client) *Stage {
	counter, err := utils.NewTokenCounter()
	if err != nil {
		// Counter falls back to character estimation when nil.
		counter = nil
	}
	return &Stage{
		researcher: researcher,
		selector:   selector,
		checker:    NewChecker(),
		counter:    counter,
		logger:     logx.NewLogger("research"),
	}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return "research" }

// Run implements pipeline.Stage. It never returns an error: every failure
// mode degrades to some usable research text.
func (s *Stage) Run(ctx context.Context, st *pipeline.State) (pipeline.Outcome, error) {
	switch {
	case st.SkipResearch:
		return s.skip(st), nil
	case len(st.SuppliedContent) > minDocumentChars:
		return s.fromDocument(ctx, st), nil
	default:
		return s.fullResearch(ctx, st), nil
	}
}

// skip bypasses all generation calls and builds the research text directly
// from whatever the user supplied.
func (s *Stage) skip(st *pipeline.State) pipeline.Outcome {
	s.logger.Info("skipping research, using provided content only")

	var parts []string
	if strings.TrimSpace(st.SuppliedContent) != "" {
		parts = append(parts, "PROVIDED FILES:\n"+st.SuppliedContent)
	}
	if strings.TrimSpace(st.UserNotes) != "" {
		parts = append(parts, "USER NOTES:\n"+st.UserNotes)
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("TOPIC: %s\n(No additional content provided - write based on topic only)", st.Topic))
	}

	st.ResearchStatus = pipeline.ResearchComplete
	st.ResearchText = strings.Join(parts, "\n\n")
	st.TopicType = pipeline.TopicSkipped
	st.ResearchQualityScore = 0

	return pipeline.Outcome{Summary: map[string]any{
		"status":     string(st.ResearchStatus),
		"topic_type": string(st.TopicType),
		"skipped":    true,
	}}
}

// fullResearch runs all five steps against the live research client.
func (s *Stage) fullResearch(ctx context.Context, st *pipeline.State) pipeline.Outcome {
	s.logger.Info("detecting topic type for %q", st.Topic)
	detectResp, err := s.selector.Complete(ctx, selectorRequest(detectPrompt(st.Topic)))
	if err != nil {
		return s.degrade(ctx, st, fmt.Errorf("detect: %w", err))
	}

	detection := parseDetection(detectResp.Content)
	s.logger.Info("topic type: %s", detection.Type)

	switch detection.Type {
	case ClassGeneric:
		st.ResearchStatus = pipeline.ResearchNeedsAngle
		st.TopicType = pipeline.TopicGeneric
		st.SuggestedAngles = detection.Suggestions
		return pipeline.Outcome{Halt: true, Summary: map[string]any{
			"status":           string(st.ResearchStatus),
			"suggested_angles": len(st.SuggestedAngles),
		}}
	case ClassAmbiguous:
		st.ResearchStatus = pipeline.ResearchNeedsClarification
		st.TopicType = pipeline.TopicAmbiguous
		st.SuggestedAngles = detection.Suggestions
		st.ClarifyingQuestions = detection.Questions
		return pipeline.Outcome{Halt: true, Summary: map[string]any{
			"status":    string(st.ResearchStatus),
			"questions": len(st.ClarifyingQuestions),
		}}
	case ClassTrending:
		st.TopicType = pipeline.TopicTrending
	default:
		st.TopicType = pipeline.TopicSpecific
	}

	s.logger.Info("scanning for angles on %q", st.Topic)
	scanResp, err := s.researcher.Complete(ctx, researcherRequest(scanPrompt(st.Topic)))
	if err != nil {
		return s.degrade(ctx, st, fmt.Errorf("scan: %w", err))
	}

	connected, sel, err := s.selectAndDive(ctx, st, scanResp.Content)
	if err != nil {
		return s.degrade(ctx, st, err)
	}

	s.finish(st, connected, sel, nil)
	return completedOutcome(st)
}

// fromDocument replaces detect and scan with direct fact extraction over the
// supplied document, then runs the remaining steps against the extracted
// facts plus a supplementary live pass. Both fact sets are concatenated
// without truncation: the writer gets too much raw material rather than a
// premature summary.
func (s *Stage) fromDocument(ctx context.Context, st *pipeline.State) pipeline.Outcome {
	s.logger.Info("processing supplied document (%d chars)", len(st.SuppliedContent))

	chunks := s.counter.ChunkByTokens(st.SuppliedContent, chunkTokenBudget)
	var extracted []string
	for i, chunk := range chunks {
		resp, err := s.selector.Complete(ctx, selectorRequest(extractDocumentPrompt(st.Topic, chunk, st.UserNotes)))
		if err != nil {
			return s.degrade(ctx, st, fmt.Errorf("document extraction (chunk %d of %d): %w", i+1, len(chunks), err))
		}
		extracted = append(extracted, resp.Content)
	}
	docFacts := strings.Join(extracted, "\n\n")

	// Supplementary live pass over the topic itself.
	scanResp, err := s.researcher.Complete(ctx, researcherRequest(scanPrompt(st.Topic)))
	if err != nil {
		return s.degrade(ctx, st, fmt.Errorf("supplementary scan: %w", err))
	}
	scanContext := scanResp.Content + "\n\n## FACTS FROM SUPPLIED DOCUMENT:\n\n" + docFacts

	connected, sel, err := s.selectAndDive(ctx, st, scanContext)
	if err != nil {
		return s.degrade(ctx, st, err)
	}

	s.finish(st, connected+"\n\n"+docFacts, sel, nil)
	return completedOutcome(st)
}

// selectAndDive runs steps three through five: select an angle, deep-dive
// into it, and connect the findings into a narrative.
func (s *Stage) selectAndDive(ctx context.Context, st *pipeline.State, scanContext string) (string, Selection, error) {
	s.logger.Info("selecting the best angle")
	selectResp, err := s.selector.Complete(ctx, selectorRequest(selectPrompt(scanContext, st.UserNotes)))
	if err != nil {
		return "", Selection{}, fmt.Errorf("select: %w", err)
	}
	sel := parseSelection(selectResp.Content)

	s.logger.Info("deep diving into %q", sel.Angle)
	deepResp, err := s.researcher.Complete(ctx, researcherRequest(deepDivePrompt(sel)))
	if err != nil {
		return "", Selection{}, fmt.Errorf("deep dive: %w", err)
	}

	s.logger.Info("connecting facts into narrative")
	connectResp, err := s.selector.Complete(ctx, selectorRequest(connectPrompt(deepResp.Content, sel)))
	if err != nil {
		return "", Selection{}, fmt.Errorf("connect: %w", err)
	}
	return connectResp.Content, sel, nil
}

// finish records the research output and the advisory quality score.
func (s *Stage) finish(st *pipeline.State, text string, sel Selection, extraIssues []string) {
	st.ResearchStatus = pipeline.ResearchComplete
	st.ResearchText = text
	if sel.Angle != "" || sel.DraftHook != "" {
		st.SelectedAngle = &pipeline.AngleDescriptor{
			Name:  sel.Angle,
			Focus: sel.DraftHook,
		}
	}

	_, issues, score := s.checker.Check(text)
	st.ResearchQualityScore = score
	st.ResearchIssues = append(issues, extraIssues...)
	s.logger.Info("research quality score: %d/100 (%d issues)", score, len(st.ResearchIssues))
}

// degrade is the stage-wide fallback: one best-effort extraction call over
// whatever raw material exists, then a plain placeholder if even that fails.
// Research quality may drop but the pipeline always continues.
func (s *Stage) degrade(ctx context.Context, st *pipeline.State, cause error) pipeline.Outcome {
	s.logger.Warn("research degraded: %v", cause)

	material := st.SuppliedContent
	if strings.TrimSpace(material) == "" {
		material = st.UserNotes
	}
	if strings.TrimSpace(material) != "" {
		resp, err := s.selector.Complete(ctx, selectorRequest(degradedExtractPrompt(st.Topic, material)))
		if err == nil && resp.Content != "" {
			s.finish(st, resp.Content, Selection{}, []string{"Fallback mode - content extracted"})
			return completedOutcome(st)
		}
	}

	st.ResearchStatus = pipeline.ResearchError
	st.ResearchText = fmt.Sprintf("TOPIC: %s\n(No additional content provided - write based on topic only)", st.Topic)
	st.ResearchQualityScore = 0
	st.ResearchIssues = []string{"Research unavailable - writing from the topic alone"}
	return pipeline.Outcome{Summary: map[string]any{
		"status":   string(st.ResearchStatus),
		"degraded": true,
	}}
}

func completedOutcome(st *pipeline.State) pipeline.Outcome {
	return pipeline.Outcome{Summary: map[string]any{
		"status":        string(st.ResearchStatus),
		"topic_type":    string(st.TopicType),
		"quality_score": st.ResearchQualityScore,
		"issues":        len(st.ResearchIssues),
	}}
}

func researcherRequest(prompt string) llm.Request {
	req := llm.NewRequest("", prompt)
	req.MaxTokens = researcherMaxTokens
	req.Temperature = llm.TemperaturePlanning
	return req
}

func selectorRequest(prompt string) llm.Request {
	req := llm.NewRequest("", prompt)
	req.MaxTokens = selectorMaxTokens
	req.Temperature = llm.TemperaturePlanning
	return req
}
