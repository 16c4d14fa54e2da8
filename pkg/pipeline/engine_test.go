package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptforge/internal/mocks"
	"scriptforge/pkg/gate"
	"scriptforge/pkg/optimizer"
	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/policy"
	"scriptforge/pkg/research"
	"scriptforge/pkg/retrieval"
	"scriptforge/pkg/writer"
)

// stubStage is a minimal Stage with a scripted behavior.
type stubStage struct {
	name  string
	calls int
	run   func(st *pipeline.State) (pipeline.Outcome, error)
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Run(_ context.Context, st *pipeline.State) (pipeline.Outcome, error) {
	s.calls++
	if s.run == nil {
		return pipeline.Outcome{}, nil
	}
	return s.run(st)
}

type stubFinalizer struct {
	calls int
}

func (f *stubFinalizer) Name() string { return "optimizer" }

func (f *stubFinalizer) Finalize(_ context.Context, st *pipeline.State) (pipeline.FinalDecision, error) {
	f.calls++
	return pipeline.FinalDecision{
		BestVariantIndex: 1,
		RankedHookOrder:  []int{1, 2, 3, 4, 5},
		FinalText:        st.CombinedOutput,
	}, nil
}

func passthroughStages() (pipeline.Stages, *stubStage, *stubStage, *stubFinalizer) {
	writerStage := &stubStage{name: "writer", run: func(st *pipeline.State) (pipeline.Outcome, error) {
		st.Variants = []pipeline.ScriptVariant{{Body: "draft"}}
		st.CombinedOutput = "draft"
		return pipeline.Outcome{}, nil
	}}
	gateStage := &stubStage{name: "gate", run: func(st *pipeline.State) (pipeline.Outcome, error) {
		st.GateVerdict = pipeline.VerdictPass
		return pipeline.Outcome{}, nil
	}}
	fin := &stubFinalizer{}
	stages := pipeline.Stages{
		Research:  &stubStage{name: "research"},
		Retrieval: &stubStage{name: "retrieval"},
		Writer:    writerStage,
		Gate:      gateStage,
		Optimizer: fin,
	}
	return stages, writerStage, gateStage, fin
}

func TestEngineHappyPathRunsEachStageOnce(t *testing.T) {
	stages, writerStage, gateStage, fin := passthroughStages()
	engine := pipeline.NewEngine(stages, 2, nil)

	st := &pipeline.State{Topic: "some topic"}
	result, err := engine.Run(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, pipeline.OutcomeCompleted, result.Outcome)
	assert.Equal(t, 1, writerStage.calls)
	assert.Equal(t, 1, gateStage.calls)
	assert.Equal(t, 1, fin.calls)
	assert.Equal(t, "draft", result.FinalText)
	assert.Zero(t, st.RevisionCount)
}

func TestEngineRevisionBudgetBoundsWriterInvocations(t *testing.T) {
	stages, writerStage, _, fin := passthroughStages()
	stages.Gate = &stubStage{name: "gate", run: func(st *pipeline.State) (pipeline.Outcome, error) {
		st.GateVerdict = pipeline.VerdictFail
		st.GateScore = 20
		return pipeline.Outcome{}, nil
	}}
	budget := 2
	engine := pipeline.NewEngine(stages, budget, nil)

	result, err := engine.Run(context.Background(), &pipeline.State{Topic: "t"})
	require.NoError(t, err)

	// A permanently failing gate still terminates: writer runs budget+1
	// times, then the run proceeds to the optimizer with the last draft.
	assert.Equal(t, budget+1, writerStage.calls)
	assert.Equal(t, 1, fin.calls)
	assert.Equal(t, pipeline.OutcomeCompleted, result.Outcome)
	assert.Equal(t, budget, result.State.RevisionCount)
	assert.NotEmpty(t, result.FinalText)
}

func TestEngineZeroBudgetRunsWriterOnce(t *testing.T) {
	stages, writerStage, _, _ := passthroughStages()
	stages.Gate = &stubStage{name: "gate", run: func(st *pipeline.State) (pipeline.Outcome, error) {
		st.GateVerdict = pipeline.VerdictFail
		return pipeline.Outcome{}, nil
	}}
	engine := pipeline.NewEngine(stages, 0, nil)

	_, err := engine.Run(context.Background(), &pipeline.State{Topic: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, writerStage.calls)
}

func TestEngineResearchHaltEndsRunEarly(t *testing.T) {
	stages, writerStage, _, fin := passthroughStages()
	retrievalStage := &stubStage{name: "retrieval"}
	stages.Retrieval = retrievalStage
	stages.Research = &stubStage{name: "research", run: func(st *pipeline.State) (pipeline.Outcome, error) {
		st.ResearchStatus = pipeline.ResearchNeedsClarification
		st.ClarifyingQuestions = []string{"which company?"}
		return pipeline.Outcome{Halt: true}, nil
	}}
	engine := pipeline.NewEngine(stages, 2, nil)

	result, err := engine.Run(context.Background(), &pipeline.State{Topic: "ambiguous"})
	require.NoError(t, err)

	assert.Equal(t, pipeline.OutcomeNeedsClarification, result.Outcome)
	assert.Equal(t, []string{"which company?"}, result.ClarifyingQuestions)
	assert.Empty(t, result.FinalText)
	assert.Zero(t, retrievalStage.calls)
	assert.Zero(t, writerStage.calls)
	assert.Zero(t, fin.calls)
}

func TestEngineNeedsAngleOutcome(t *testing.T) {
	stages, _, _, _ := passthroughStages()
	stages.Research = &stubStage{name: "research", run: func(st *pipeline.State) (pipeline.Outcome, error) {
		st.ResearchStatus = pipeline.ResearchNeedsAngle
		st.SuggestedAngles = []string{"an angle"}
		return pipeline.Outcome{Halt: true}, nil
	}}
	engine := pipeline.NewEngine(stages, 2, nil)

	result, err := engine.Run(context.Background(), &pipeline.State{Topic: "AI"})
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeNeedsAngle, result.Outcome)
	assert.Equal(t, []string{"an angle"}, result.SuggestedAngles)
}

func TestEngineStageErrorPropagates(t *testing.T) {
	stages, _, _, _ := passthroughStages()
	stages.Retrieval = &stubStage{name: "retrieval", run: func(_ *pipeline.State) (pipeline.Outcome, error) {
		return pipeline.Outcome{}, errors.New("boom")
	}}
	engine := pipeline.NewEngine(stages, 2, nil)

	_, err := engine.Run(context.Background(), &pipeline.State{Topic: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage retrieval")
}

func TestEngineProgressSinkReceivesStages(t *testing.T) {
	stages, _, _, _ := passthroughStages()
	var order []string
	sink := func(name string, _ map[string]any) { order = append(order, name) }
	engine := pipeline.NewEngine(stages, 2, sink)

	_, err := engine.Run(context.Background(), &pipeline.State{Topic: "t"})
	require.NoError(t, err)
	assert.Equal(t, []string{"research", "retrieval", "writer", "gate", "optimizer"}, order)
}

func TestEnginePanickingSinkIsIsolated(t *testing.T) {
	stages, _, _, _ := passthroughStages()
	sink := func(string, map[string]any) { panic("observer bug") }
	engine := pipeline.NewEngine(stages, 2, sink)

	result, err := engine.Run(context.Background(), &pipeline.State{Topic: "t"})
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeCompleted, result.Outcome)
}

// Full-stack never-fail check: every generation call errors and the style
// store is offline, yet the run completes with non-empty final text.
func TestFullPipelineNeverFailsWithDeadProviders(t *testing.T) {
	dead := mocks.NewLLMClient()
	dead.FailCompleteWith(errors.New("provider down"))
	store := mocks.NewStyleStore()
	store.FailWith(errors.New("index down"))

	pol := policy.Default()
	stages := pipeline.Stages{
		Research:  research.NewStage(dead, dead),
		Retrieval: retrieval.NewStage(store, nil),
		Writer:    writer.NewStage(dead, dead, pol),
		Gate:      gate.NewStage(dead, pol),
		Optimizer: optimizer.NewStage(dead),
	}
	engine := pipeline.NewEngine(stages, pol.RevisionBudget, nil)

	for _, topic := range []string{"", "Company X raised $10M"} {
		st := &pipeline.State{Topic: topic, Mode: pipeline.ModeInformational}
		result, err := engine.Run(context.Background(), st)
		require.NoError(t, err)
		assert.Equal(t, pipeline.OutcomeCompleted, result.Outcome)
		assert.NotEmpty(t, result.FinalText)
		require.NotEmpty(t, result.State.Variants)
	}
}
