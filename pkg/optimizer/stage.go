// Package optimizer is the terminal stage: it ranks the hooks of the winning
// draft, designates the best variant and optionally returns a polished final
// script. It runs outside the revision loop and never fails the run.
package optimizer

import (
	"context"
	"fmt"
	"strings"

	"scriptforge/pkg/llm"
	"scriptforge/pkg/logx"
	"scriptforge/pkg/pipeline"
)

const analystMaxTokens = 6000

type Stage struct {
	analyst llm.Client
	logger  *logx.Logger
}

func NewStage(analyst llm.Client) *Stage {
	return &Stage{
		analyst: analyst,
		logger:  logx.NewLogger("optimizer"),
	}
}

func (s *Stage) Name() string { return "optimizer" }

// Finalize analyzes a representative script and produces the final ranking.
// The analyst call is best effort: on any failure the default ordering and
// the unmodified combined output are returned, never an error.
func (s *Stage) Finalize(ctx context.Context, st *pipeline.State) (pipeline.FinalDecision, error) {
	content := st.CombinedOutput
	if content == "" && len(st.Variants) > 0 {
		content = st.Variants[0].Body
	}

	// The first variant stands in for the batch: every variant follows the
	// same hook-count contract, so one analysis generalizes.
	sample := content
	if len(st.Variants) > 0 {
		sample = st.Variants[0].Body
	}

	a := defaultAnalysis()
	req := llm.NewRequest("", analyzePrompt(sample, string(st.Mode)))
	req.Temperature = llm.TemperaturePlanning
	req.MaxTokens = analystMaxTokens
	resp, err := s.analyst.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("analysis call failed, using default ranking: %v", err)
	} else {
		a = parseAnalysis(resp.Content)
	}

	finalText := content
	if a.Optimized != "" {
		finalText = a.Optimized
	}
	if strings.TrimSpace(finalText) == "" {
		finalText = fmt.Sprintf("SCRIPT: %s\n(No draft available.)", st.Topic)
	}

	s.logger.Info("best hook #%d, viral potential: %s", a.BestHook, a.ViralPotential)

	return pipeline.FinalDecision{
		BestVariantIndex: a.BestHook,
		RankedHookOrder:  a.Ranking,
		FinalText:        finalText,
		Summary: map[string]any{
			"best_hook":       a.BestHook,
			"viral_potential": a.ViralPotential,
			"credibility":     a.Credibility,
		},
	}, nil
}
