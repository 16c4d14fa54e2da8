package pipeline

import (
	"context"
	"fmt"
	"time"

	"scriptforge/pkg/logx"
	"scriptforge/pkg/metrics"
)

// Stages wires the concrete stage implementations into the engine.
type Stages struct {
	Research  Stage
	Retrieval Stage
	Writer    Stage
	Gate      Stage
	Optimizer Finalizer
}

// Engine drives a fixed stage graph over a State: research, retrieval, then
// the writer/gate revision loop, then the optimizer. Control flow is
// single-threaded; concurrency lives inside individual stages.
type Engine struct {
	stages Stages
	budget int
	sink   ProgressSink
	logger *logx.Logger
}

// NewEngine creates an engine. revisionBudget bounds how many times the
// writer is re-invoked after a Fail verdict; the writer therefore runs at
// most revisionBudget+1 times. sink may be nil.
func NewEngine(stages Stages, revisionBudget int, sink ProgressSink) *Engine {
	if revisionBudget < 0 {
		revisionBudget = 0
	}
	return &Engine{
		stages: stages,
		budget: revisionBudget,
		sink:   sink,
		logger: logx.NewLogger("engine"),
	}
}

// Run executes the pipeline over the given state. The returned error is
// reserved for unrecoverable stage failures (fatal configuration); every
// degradable failure is absorbed inside the stages, so a completed run
// always carries a usable FinalText.
func (e *Engine) Run(ctx context.Context, s *State) (*Result, error) {
	out, err := e.runStage(ctx, e.stages.Research, s)
	if err != nil {
		return nil, err
	}
	if out.Halt {
		outcome := OutcomeNeedsAngle
		if s.ResearchStatus == ResearchNeedsClarification {
			outcome = OutcomeNeedsClarification
		}
		e.logger.Info("research needs more input (%s), ending run early", s.ResearchStatus)
		return &Result{
			State:               s,
			Outcome:             outcome,
			SuggestedAngles:     s.SuggestedAngles,
			ClarifyingQuestions: s.ClarifyingQuestions,
		}, nil
	}

	if _, err := e.runStage(ctx, e.stages.Retrieval, s); err != nil {
		return nil, err
	}

	// Writer/gate loop. Only this edge is retryable, bounded by the budget;
	// an exhausted budget proceeds to the optimizer with whatever draft
	// exists rather than failing the run.
	for {
		if _, err := e.runStage(ctx, e.stages.Writer, s); err != nil {
			return nil, err
		}
		if _, err := e.runStage(ctx, e.stages.Gate, s); err != nil {
			return nil, err
		}
		if s.GateVerdict == VerdictPass {
			break
		}
		if s.RevisionCount >= e.budget {
			e.logger.Info("revision budget exhausted (score %d), continuing with current draft", s.GateScore)
			break
		}
		s.RevisionCount++
		e.logger.Info("quality gate failed (score %d), revising: attempt %d of %d",
			s.GateScore, s.RevisionCount+1, e.budget+1)
	}

	start := time.Now()
	decision, err := e.stages.Optimizer.Finalize(ctx, s)
	metrics.ObserveStageDuration(e.stages.Optimizer.Name(), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", e.stages.Optimizer.Name(), err)
	}
	e.emit(e.stages.Optimizer.Name(), decision.Summary)

	return &Result{
		State:            s,
		Outcome:          OutcomeCompleted,
		BestVariantIndex: decision.BestVariantIndex,
		RankedHookOrder:  decision.RankedHookOrder,
		FinalText:        decision.FinalText,
	}, nil
}

func (e *Engine) runStage(ctx context.Context, st Stage, s *State) (Outcome, error) {
	start := time.Now()
	out, err := st.Run(ctx, s)
	metrics.ObserveStageDuration(st.Name(), time.Since(start))
	if err != nil {
		return Outcome{}, fmt.Errorf("stage %s: %w", st.Name(), err)
	}
	e.emit(st.Name(), out.Summary)
	return out, nil
}

// emit delivers a progress event. The sink is a side channel: a panicking
// or slow observer must never affect routing.
func (e *Engine) emit(name string, summary map[string]any) {
	if e.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("progress sink panicked for stage %s: %v", name, r)
		}
	}()
	e.sink(name, summary)
}
