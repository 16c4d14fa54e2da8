// Package writer produces the candidate scripts: a planning call splits the
// research into disjoint angles, then one generation task per angle runs
// concurrently. Any failure during the fan-out collapses the whole batch to
// a single synchronous draft, so the variant list is never empty.
package writer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"scriptforge/pkg/llm"
	"scriptforge/pkg/logx"
	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/policy"
)

const plannerMaxTokens = 2000

type Stage struct {
	planner llm.Client
	writer  llm.Client
	policy  *policy.Policy
	logger  *logx.Logger
}

func NewStage(planner, writer llm.Client, pol *policy.Policy) *Stage {
	return &Stage{
		planner: planner,
		writer:  writer,
		policy:  pol,
		logger:  logx.NewLogger("writer"),
	}
}

func (s *Stage) Name() string { return "writer" }

func (s *Stage) Run(ctx context.Context, st *pipeline.State) (pipeline.Outcome, error) {
	var feedback string
	if st.RevisionCount > 0 && len(st.GateReasons) > 0 {
		feedback = strings.Join(st.GateReasons, "\n")
		s.logger.Info("revision %d, carrying %d gate reasons into the prompt", st.RevisionCount, len(st.GateReasons))
	}

	if s.policy.VariantCount > 1 {
		err := s.multiAngle(ctx, st, feedback)
		if err == nil {
			return outcome(st, "multi"), nil
		}
		s.logger.Warn("multi-angle generation failed, falling back to single script: %v", err)
	}

	mode := "single"
	if err := s.single(ctx, st, feedback); err != nil {
		s.logger.Warn("single script generation failed, using placeholder: %v", err)
		s.placeholder(st)
		mode = "placeholder"
	}
	return outcome(st, mode), nil
}

// multiAngle runs the plan + fan-out path. The fan-in barrier is
// all-or-nothing: one failed generation task discards every variant and the
// caller falls back to single mode.
func (s *Stage) multiAngle(ctx context.Context, st *pipeline.State, feedback string) error {
	count := s.policy.VariantCount

	req := llm.NewRequest("You are a viral content strategist. Output only valid JSON.",
		planPrompt(st.Topic, st.ResearchText, count))
	req.Temperature = llm.TemperaturePlanning
	req.MaxTokens = plannerMaxTokens
	resp, err := s.planner.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("angle planning: %w", err)
	}

	angles, err := parseAngles(resp.Content)
	if err != nil {
		return err
	}
	angles = fillAngles(angles, count, st.Topic, s.policy.DefaultAngles)
	for i, angle := range angles {
		s.logger.Info("script %d angle: %s", i+1, angle.Name)
	}

	bodies := make([]string, len(angles))
	errs := make([]error, len(angles))
	var wg sync.WaitGroup
	for i, angle := range angles {
		wg.Add(1)
		go func(i int, angle pipeline.AngleDescriptor) {
			defer wg.Done()
			req := llm.NewRequest(
				"You are an elite viral short-form scriptwriter. Write in a conversational, spoken style. No bullet points.",
				writePrompt(st.Topic, angle, st.ResearchText, st.StyleContext, i+1, feedback))
			req.Temperature = llm.TemperatureCreative
			resp, err := s.writer.Complete(ctx, req)
			if err != nil {
				errs[i] = fmt.Errorf("script %d: %w", i+1, err)
				return
			}
			bodies[i] = resp.Content
		}(i, angle)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	variants := make([]pipeline.ScriptVariant, len(angles))
	for i, angle := range angles {
		variants[i] = pipeline.ScriptVariant{
			AngleName:  angle.Name,
			AngleFocus: angle.Focus,
			Body:       bodies[i],
		}
	}
	st.Variants = variants
	st.CombinedOutput = compile(st.Topic, variants)
	st.SummaryTable = summaryTable(variants)
	return nil
}

func (s *Stage) single(ctx context.Context, st *pipeline.State, feedback string) error {
	req := llm.NewRequest(
		"You are an elite viral short-form scriptwriter. Write in a conversational, spoken style. No bullet points.",
		singlePrompt(st, feedback))
	req.Temperature = llm.TemperatureCreative
	resp, err := s.writer.Complete(ctx, req)
	if err != nil {
		return err
	}

	st.Variants = []pipeline.ScriptVariant{{AngleName: "Single Draft", Body: resp.Content}}
	st.CombinedOutput = resp.Content
	return nil
}

// placeholder is the last resort when every generation call failed. The run
// still finishes with a well-formed, non-empty variant list.
func (s *Stage) placeholder(st *pipeline.State) {
	body := fmt.Sprintf(`SCRIPT: %s

Hook: %s, explained in 60 seconds.

Script generation was unavailable for this run. Use the research notes below
to draft manually.

%s`, st.Topic, st.Topic, st.ResearchText)
	st.Variants = []pipeline.ScriptVariant{{AngleName: "Placeholder Draft", Body: body}}
	st.CombinedOutput = body
}

// summaryTable builds the markdown overview kept alongside the combined
// output: one row per script with its angle and first hook.
func summaryTable(variants []pipeline.ScriptVariant) string {
	var b strings.Builder
	b.WriteString("## SUMMARY\n\n| Script | Angle | Primary Hook |\n|--------|-------|--------------|\n")
	for i, v := range variants {
		fmt.Fprintf(&b, "| Script %d | %s | %q |\n", i+1, v.AngleName, firstHook(v.Body))
	}
	return b.String()
}

func firstHook(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Hook 1:"); ok {
			return truncateRunes(strings.TrimSpace(rest), 60)
		}
	}
	return "See script for hooks"
}

func compile(topic string, variants []pipeline.ScriptVariant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %d VIRAL SCRIPTS: %s\n\n---\n", len(variants), strings.ToUpper(topic))
	for _, v := range variants {
		fmt.Fprintf(&b, "\n%s\n\n---\n", v.Body)
	}
	return b.String()
}

func outcome(st *pipeline.State, mode string) pipeline.Outcome {
	return pipeline.Outcome{Summary: map[string]any{
		"mode":     mode,
		"variants": len(st.Variants),
	}}
}
