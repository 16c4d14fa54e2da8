package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptforge/internal/mocks"
	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/policy"
)

func newGateStage() (*Stage, *mocks.LLMClient) {
	critic := mocks.NewLLMClient()
	return NewStage(critic, policy.Default()), critic
}

func singleVariantState(body string) *pipeline.State {
	return &pipeline.State{
		Topic:          "some topic",
		Mode:           pipeline.ModeInformational,
		Variants:       []pipeline.ScriptVariant{{AngleName: "Draft", Body: body}},
		CombinedOutput: body,
	}
}

func TestMultiVariantAlwaysPasses(t *testing.T) {
	stage, critic := newGateStage()
	st := &pipeline.State{
		Variants: []pipeline.ScriptVariant{
			{Body: "this draft has DESTROYED and PANICKING and CHAOS in it"},
			{Body: "another draft"},
			{Body: "a third draft"},
		},
	}

	out, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, out.Halt)
	assert.Equal(t, pipeline.VerdictPass, st.GateVerdict)
	assert.Zero(t, critic.CompleteCallCount())
}

func TestBlocklistTermFailsWithFixedScore(t *testing.T) {
	stage, critic := newGateStage()
	st := singleVariantState("The market was DESTROYED overnight and everyone noticed.")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictFail, st.GateVerdict)
	assert.Equal(t, 20, st.GateScore)
	require.NotEmpty(t, st.GateReasons)
	assert.Contains(t, st.GateReasons[0], "DESTROYED")
	assert.Zero(t, critic.CompleteCallCount(), "local checks short-circuit the critique call")
}

func TestLowercaseBlocklistWordIsFine(t *testing.T) {
	stage, critic := newGateStage()
	critic.RespondWith("SCORE: 85\nVERDICT: PASS\nREASONS:\n- solid hooks")
	st := singleVariantState("The old playbook was quietly destroyed by a better product.")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictPass, st.GateVerdict)
}

func TestExcessCapsFailsWithFixedScore(t *testing.T) {
	stage, _ := newGateStage()
	st := singleVariantState("WAIT until you SEE what THEY did NEXT with this DEAL.")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictFail, st.GateVerdict)
	assert.Equal(t, 40, st.GateScore)
}

func TestAllowlistedAcronymsDoNotCountAsCaps(t *testing.T) {
	stage, critic := newGateStage()
	critic.RespondWith("SCORE: 75\nVERDICT: PASS\nREASONS:")
	st := singleVariantState("The CEO bet on AI and GPU clusters while the CTO built the API and SQL layer.")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictPass, st.GateVerdict)
	assert.Equal(t, 1, critic.CompleteCallCount())
}

func TestCritiqueBelowCutoffFails(t *testing.T) {
	stage, critic := newGateStage()
	critic.RespondWith("SCORE: 45\nVERDICT: FAIL\nREASONS:\n- no direct quote\n- hook starts with the company name")
	st := singleVariantState("a clean draft without local violations")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictFail, st.GateVerdict)
	assert.Equal(t, 45, st.GateScore)
	assert.Equal(t, []string{"no direct quote", "hook starts with the company name"}, st.GateReasons)
}

func TestCritiqueAtCutoffPasses(t *testing.T) {
	stage, critic := newGateStage()
	critic.RespondWith("SCORE: 60\nVERDICT: PASS\nREASONS:\n- pass with notes")
	st := singleVariantState("a clean draft")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictPass, st.GateVerdict)
}

func TestCritiqueFailureDefaultsOpen(t *testing.T) {
	stage, critic := newGateStage()
	critic.FailCompleteWith(errors.New("critic offline"))
	st := singleVariantState("a clean draft")

	out, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, out.Halt)
	assert.Equal(t, pipeline.VerdictPass, st.GateVerdict)
	assert.Equal(t, 60, st.GateScore)
}

func TestUnparseableCritiqueIsNeutral(t *testing.T) {
	stage, critic := newGateStage()
	critic.RespondWith("The draft seems fine to me overall.")
	st := singleVariantState("a clean draft")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictPass, st.GateVerdict)
	assert.Equal(t, 60, st.GateScore)
}

func TestCritiqueVerdictWinsOverScore(t *testing.T) {
	stage, critic := newGateStage()
	critic.RespondWith("SCORE: 72\nVERDICT: FAIL\nREASONS:\n- body runs long")
	st := singleVariantState("a clean draft")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictFail, st.GateVerdict, "an explicit critic verdict overrides the score cutoff")
	assert.Equal(t, 72, st.GateScore)
}

func TestCritiqueMissingVerdictFallsBackToScore(t *testing.T) {
	stage, critic := newGateStage()
	critic.RespondWith("SCORE: 45\nREASONS:\n- no direct quote")
	st := singleVariantState("a clean draft")

	_, err := stage.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictFail, st.GateVerdict)
}

func TestFindExcessCapsDeduplicates(t *testing.T) {
	caps := findExcessCaps("HUGE deal. HUGE win. HUGE news.", policy.Default().CapsAllowlist)
	assert.Equal(t, []string{"HUGE"}, caps)
}

func TestParseCritiqueClampsScore(t *testing.T) {
	c := parseCritique("SCORE: 400\nVERDICT: PASS")
	assert.Equal(t, 60, c.Score)
}
