package writer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptforge/internal/mocks"
	"scriptforge/pkg/llm"
	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/policy"
)

func newWriterStage() (*Stage, *mocks.LLMClient, *mocks.LLMClient) {
	planner := mocks.NewLLMClient()
	writer := mocks.NewLLMClient()
	return NewStage(planner, writer, policy.Default()), planner, writer
}

func baseState() *pipeline.State {
	return &pipeline.State{
		Topic:        "Tesla FSD India launch",
		Mode:         pipeline.ModeInformational,
		ResearchText: "the research bundle",
		StyleContext: "the style context",
	}
}

func TestMultiAngleProducesThreeVariants(t *testing.T) {
	stage, planner, writer := newWriterStage()
	planner.RespondWith("```json\n" + plannerJSON + "\n```")
	writer.RespondWith("a full script body")

	st := baseState()
	out, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, out.Halt)

	require.Len(t, st.Variants, 3)
	assert.Equal(t, "The Hidden Revenue Model", st.Variants[0].AngleName)
	assert.Equal(t, 3, writer.CompleteCallCount())
	assert.Equal(t, 1, planner.CompleteCallCount())

	assert.Contains(t, st.CombinedOutput, "# 3 VIRAL SCRIPTS: TESLA FSD INDIA LAUNCH")
	assert.Contains(t, st.CombinedOutput, "a full script body")
	assert.Contains(t, st.SummaryTable, "| Script 1 | The Hidden Revenue Model |")
}

func TestSummaryTableExtractsFirstHook(t *testing.T) {
	variants := []pipeline.ScriptVariant{
		{AngleName: "Angle A", Body: "intro\nHook 1: They said it was impossible.\nHook 2: other"},
		{AngleName: "Angle B", Body: "no labelled hooks here"},
	}
	table := summaryTable(variants)
	assert.Contains(t, table, `| Script 1 | Angle A | "They said it was impossible." |`)
	assert.Contains(t, table, `| Script 2 | Angle B | "See script for hooks" |`)
}

func TestUnderProducingPlannerIsPaddedWithTemplates(t *testing.T) {
	stage, planner, writer := newWriterStage()
	planner.RespondWith(`{"angles": [{"name": "Only One", "focus": "x"}]}`)
	writer.RespondWith("script body")

	st := baseState()
	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, st.Variants, 3)
	assert.Equal(t, "Only One", st.Variants[0].AngleName)
	assert.NotEmpty(t, st.Variants[1].AngleName)
	assert.NotEmpty(t, st.Variants[2].AngleName)
}

func TestPlannerFailureFallsBackToSingleVariant(t *testing.T) {
	stage, planner, writer := newWriterStage()
	planner.FailCompleteWith(errors.New("planner down"))
	writer.RespondWith("the single draft")

	st := baseState()
	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, st.Variants, 1)
	assert.Equal(t, "the single draft", st.Variants[0].Body)
	assert.Equal(t, "the single draft", st.CombinedOutput)
}

func TestOneFailedTaskCollapsesTheWholeBatch(t *testing.T) {
	stage, planner, writer := newWriterStage()
	planner.RespondWith(plannerJSON)
	writer.OnComplete(func(_ context.Context, req llm.Request) (llm.Response, error) {
		for _, msg := range req.Messages {
			if strings.Contains(msg.Content, "SCRIPT #2") {
				return llm.Response{}, errors.New("provider timeout")
			}
		}
		return llm.Response{Content: "a draft", StopReason: "end_turn"}, nil
	})

	st := baseState()
	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)

	// All-or-nothing barrier: never a partial batch of 2.
	require.Len(t, st.Variants, 1)
	assert.Equal(t, "Single Draft", st.Variants[0].AngleName)
}

func TestTotalGenerationFailureProducesPlaceholder(t *testing.T) {
	stage, planner, writer := newWriterStage()
	planner.FailCompleteWith(errors.New("down"))
	writer.FailCompleteWith(errors.New("down"))

	st := baseState()
	out, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, out.Halt)

	require.Len(t, st.Variants, 1)
	assert.NotEmpty(t, st.Variants[0].Body)
	assert.Contains(t, st.Variants[0].Body, "Tesla FSD India launch")
	assert.NotEmpty(t, st.CombinedOutput)
}

func TestSingleVariantPolicySkipsPlanner(t *testing.T) {
	planner := mocks.NewLLMClient()
	writer := mocks.NewLLMClient()
	pol := policy.Default()
	pol.VariantCount = 1
	stage := NewStage(planner, writer, pol)
	writer.RespondWith("one script")

	st := baseState()
	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)

	assert.Zero(t, planner.CompleteCallCount())
	require.Len(t, st.Variants, 1)
}

func TestListicleModeChangesSinglePrompt(t *testing.T) {
	planner := mocks.NewLLMClient()
	writer := mocks.NewLLMClient()
	pol := policy.Default()
	pol.VariantCount = 1
	stage := NewStage(planner, writer, pol)

	st := baseState()
	st.Mode = pipeline.ModeListicle
	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, writer.CompleteCalledWith("countdown"))
}

func TestRevisionCarriesGateFeedback(t *testing.T) {
	planner := mocks.NewLLMClient()
	writer := mocks.NewLLMClient()
	pol := policy.Default()
	pol.VariantCount = 1
	stage := NewStage(planner, writer, pol)

	st := baseState()
	st.RevisionCount = 1
	st.GateReasons = []string{"contains banned term DESTROYED"}
	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.True(t, writer.CompleteCalledWith("contains banned term DESTROYED"))
}

func TestFirstRunIgnoresStaleGateReasons(t *testing.T) {
	planner := mocks.NewLLMClient()
	writer := mocks.NewLLMClient()
	pol := policy.Default()
	pol.VariantCount = 1
	stage := NewStage(planner, writer, pol)

	st := baseState()
	st.GateReasons = []string{"old reason"}
	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, writer.CompleteCalledWith("old reason"))
}
