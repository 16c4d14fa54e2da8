package pipeline

import "context"

// Outcome is what a stage hands back to the engine besides mutating the
// state: whether the run should halt early, and a summary for the progress
// sink.
type Outcome struct {
	Halt    bool
	Summary map[string]any
}

// Stage is one node in the pipeline graph. A stage mutates only the state
// fields it owns. Errors returned from Run halt the run; stages are expected
// to degrade internally instead wherever the contract allows it.
type Stage interface {
	Name() string
	Run(ctx context.Context, s *State) (Outcome, error)
}

// FinalDecision carries the optimizer's output into the Result.
type FinalDecision struct {
	BestVariantIndex int
	RankedHookOrder  []int
	FinalText        string
	Summary          map[string]any
}

// Finalizer is the terminal stage. It is separate from Stage because its
// decisions live on the Result rather than the State.
type Finalizer interface {
	Name() string
	Finalize(ctx context.Context, s *State) (FinalDecision, error)
}

// ProgressSink receives a fire-and-forget event after each stage completes.
// Panics and misbehavior in the sink are swallowed by the engine.
type ProgressSink func(stageName string, summary map[string]any)
