// Package gate scores the current draft and decides whether the writer gets
// another attempt. Multi-variant batches always pass: once divergent drafts
// exist the product shows all of them to the user, and gating would discard
// legitimate diversity. Single drafts go through deterministic local checks
// first, then a critique call. The gate is default-open: its own failures
// never block the pipeline.
package gate

import (
	"context"
	"fmt"

	"scriptforge/pkg/llm"
	"scriptforge/pkg/logx"
	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/policy"
)

const (
	blocklistFailScore = 20
	capsFailScore      = 40
	neutralScore       = 60
)

type Stage struct {
	critic llm.Client
	policy *policy.Policy
	logger *logx.Logger
}

func NewStage(critic llm.Client, pol *policy.Policy) *Stage {
	return &Stage{
		critic: critic,
		policy: pol,
		logger: logx.NewLogger("gate"),
	}
}

func (s *Stage) Name() string { return "gate" }

func (s *Stage) Run(ctx context.Context, st *pipeline.State) (pipeline.Outcome, error) {
	if len(st.Variants) > 1 {
		st.GateVerdict = pipeline.VerdictPass
		st.GateScore = 100
		st.GateReasons = nil
		s.logger.Info("%d variants present, passing without critique", len(st.Variants))
		return s.outcome(st), nil
	}

	body := st.CombinedOutput
	if body == "" && len(st.Variants) == 1 {
		body = st.Variants[0].Body
	}

	if blocked := findBlockedTerms(body, s.policy.Blocklist); len(blocked) > 0 {
		st.GateVerdict = pipeline.VerdictFail
		st.GateScore = blocklistFailScore
		st.GateReasons = reasonsFor("contains banned term", blocked)
		s.logger.Info("failed blocklist check: %v", blocked)
		return s.outcome(st), nil
	}

	if caps := findExcessCaps(body, s.policy.CapsAllowlist); len(caps) > s.policy.CapsLimit {
		st.GateVerdict = pipeline.VerdictFail
		st.GateScore = capsFailScore
		st.GateReasons = reasonsFor("excessive all-caps token", caps)
		s.logger.Info("failed caps check: %v", caps)
		return s.outcome(st), nil
	}

	s.critique(ctx, st, body)
	return s.outcome(st), nil
}

// critique runs the generation-based review. Any failure of the call itself
// degrades to Pass with a neutral score.
func (s *Stage) critique(ctx context.Context, st *pipeline.State, body string) {
	req := llm.NewRequest("", critiquePrompt(body, string(st.Mode)))
	req.Temperature = llm.TemperatureCritique
	resp, err := s.critic.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("critique call failed, passing by default: %v", err)
		st.GateVerdict = pipeline.VerdictPass
		st.GateScore = neutralScore
		st.GateReasons = nil
		return
	}

	c := parseCritique(resp.Content)
	st.GateScore = c.Score
	st.GateReasons = c.Reasons
	// The critic's own verdict wins; the score cutoff is the fallback when
	// the verdict line is missing.
	switch {
	case c.Verdict == "PASS":
		st.GateVerdict = pipeline.VerdictPass
	case c.Verdict == "FAIL":
		st.GateVerdict = pipeline.VerdictFail
	case c.Score >= s.policy.PassCutoff:
		st.GateVerdict = pipeline.VerdictPass
	default:
		st.GateVerdict = pipeline.VerdictFail
	}
	s.logger.Info("critique verdict: %s (score %d, %d reasons)", st.GateVerdict, c.Score, len(c.Reasons))
}

func reasonsFor(label string, terms []string) []string {
	reasons := make([]string, len(terms))
	for i, term := range terms {
		reasons[i] = fmt.Sprintf("%s %q", label, term)
	}
	return reasons
}

func (s *Stage) outcome(st *pipeline.State) pipeline.Outcome {
	return pipeline.Outcome{Summary: map[string]any{
		"verdict": string(st.GateVerdict),
		"score":   st.GateScore,
	}}
}
