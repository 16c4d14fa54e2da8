package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptforge/internal/mocks"
	"scriptforge/pkg/pipeline"
)

func TestFinalizeParsesMarkers(t *testing.T) {
	analyst := mocks.NewLLMClient()
	analyst.RespondWith(`Detailed hook analysis here.

## FINAL SCRIPT
The rewritten script, starting with the winning hook.

BEST_HOOK: 3
HOOK_RANKING: 3, 1, 5, 2, 4
CREDIBILITY_SCORE: 8
VIRAL_POTENTIAL: Strong`)
	stage := NewStage(analyst)

	st := &pipeline.State{
		Topic:          "some topic",
		Variants:       []pipeline.ScriptVariant{{Body: "the draft"}},
		CombinedOutput: "the draft",
	}
	decision, err := stage.Finalize(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, 3, decision.BestVariantIndex)
	assert.Equal(t, []int{3, 1, 5, 2, 4}, decision.RankedHookOrder)
	assert.Contains(t, decision.FinalText, "The rewritten script")
	assert.Equal(t, "Strong", decision.Summary["viral_potential"])
}

func TestFinalizeDefaultsOnUnparseableResponse(t *testing.T) {
	analyst := mocks.NewLLMClient()
	analyst.RespondWith("I liked the second hook the most, overall a solid script.")
	stage := NewStage(analyst)

	st := &pipeline.State{CombinedOutput: "the combined output"}
	decision, err := stage.Finalize(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, 1, decision.BestVariantIndex)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, decision.RankedHookOrder)
	assert.Equal(t, "the combined output", decision.FinalText)
}

func TestFinalizeNeverFailsOnAnalystError(t *testing.T) {
	analyst := mocks.NewLLMClient()
	analyst.FailCompleteWith(errors.New("analyst offline"))
	stage := NewStage(analyst)

	st := &pipeline.State{
		Topic:          "some topic",
		Variants:       []pipeline.ScriptVariant{{Body: "the only draft"}},
		CombinedOutput: "the only draft",
	}
	decision, err := stage.Finalize(context.Background(), st)
	require.NoError(t, err)

	assert.Equal(t, 1, decision.BestVariantIndex)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, decision.RankedHookOrder)
	assert.Equal(t, "the only draft", decision.FinalText)
}

func TestFinalizeEmptyStateStillProducesText(t *testing.T) {
	analyst := mocks.NewLLMClient()
	analyst.FailCompleteWith(errors.New("offline"))
	stage := NewStage(analyst)

	st := &pipeline.State{Topic: "bare topic"}
	decision, err := stage.Finalize(context.Background(), st)
	require.NoError(t, err)
	assert.NotEmpty(t, decision.FinalText)
	assert.Contains(t, decision.FinalText, "bare topic")
}

func TestFinalizeAnalyzesFirstVariantAsSample(t *testing.T) {
	analyst := mocks.NewLLMClient()
	stage := NewStage(analyst)

	st := &pipeline.State{
		Variants: []pipeline.ScriptVariant{
			{Body: "first variant body"},
			{Body: "second variant body"},
		},
		CombinedOutput: "everything combined",
	}
	_, err := stage.Finalize(context.Background(), st)
	require.NoError(t, err)

	assert.True(t, analyst.CompleteCalledWith("first variant body"))
	assert.False(t, analyst.CompleteCalledWith("second variant body"))
}

func TestParseAnalysisPartialMarkers(t *testing.T) {
	a := parseAnalysis("BEST_HOOK: 2\nsome trailing prose")
	assert.Equal(t, 2, a.BestHook)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, a.Ranking)
}

func TestParseAnalysisIgnoresZeroBestHook(t *testing.T) {
	a := parseAnalysis("BEST_HOOK: 0")
	assert.Equal(t, 1, a.BestHook)
}
