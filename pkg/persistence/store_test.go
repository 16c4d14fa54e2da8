package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptforge/pkg/pipeline"
	"scriptforge/pkg/retrieval"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "scriptforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scriptforge.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestSaveAndGetRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	result := &pipeline.Result{
		State: &pipeline.State{
			Topic:                "Tesla FSD India launch",
			Mode:                 pipeline.ModeInformational,
			ResearchStatus:       pipeline.ResearchComplete,
			TopicType:            pipeline.TopicSpecific,
			ResearchQualityScore: 85,
			Variants:             make([]pipeline.ScriptVariant, 3),
			GateVerdict:          pipeline.VerdictPass,
			GateScore:            100,
			RevisionCount:        1,
		},
		Outcome:          pipeline.OutcomeCompleted,
		BestVariantIndex: 2,
		FinalText:        "the final script",
	}

	id, err := store.SaveRun(ctx, result)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Tesla FSD India launch", rec.Topic)
	assert.Equal(t, "informational", rec.Mode)
	assert.Equal(t, "completed", rec.Outcome)
	assert.Equal(t, 85, rec.ResearchQuality)
	assert.Equal(t, 3, rec.VariantCount)
	assert.Equal(t, "pass", rec.GateVerdict)
	assert.Equal(t, 1, rec.RevisionCount)
	assert.Equal(t, 2, rec.BestVariant)
	assert.Equal(t, "the final script", rec.FinalText)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetRun(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, topic := range []string{"first", "second", "third"} {
		_, err := store.SaveRun(ctx, &pipeline.Result{
			State:   &pipeline.State{Topic: topic, Mode: pipeline.ModeInformational},
			Outcome: pipeline.OutcomeCompleted,
		})
		require.NoError(t, err)
	}

	records, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestStyleStoreRanksByKeywordOverlap(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddStyleRef(ctx, retrieval.KindFull, "", "Tesla self driving launch changed everything overnight")
	require.NoError(t, err)
	_, err = store.AddStyleRef(ctx, retrieval.KindFull, "", "A thorium reactor design nobody believed in")
	require.NoError(t, err)

	docs, err := store.QuerySimilar(ctx, "Tesla self driving in India", "", retrieval.KindFull, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "Tesla")
}

func TestStyleStoreFiltersByKind(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddStyleRef(ctx, retrieval.KindFull, "", "a full reference script")
	require.NoError(t, err)
	_, err = store.AddStyleRef(ctx, retrieval.KindHook, "", "a punchy hook line")
	require.NoError(t, err)

	docs, err := store.QuerySimilar(ctx, "anything", "", retrieval.KindHook, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, retrieval.KindHook, docs[0].Kind)
}

func TestStyleStoreFiltersByMode(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.AddStyleRef(ctx, retrieval.KindFull, "listicle", "top five countdown script")
	require.NoError(t, err)
	_, err = store.AddStyleRef(ctx, retrieval.KindFull, "informational", "narrative deep dive script")
	require.NoError(t, err)

	docs, err := store.QuerySimilar(ctx, "countdown script", "listicle", retrieval.KindFull, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "countdown")
}

func TestStyleStoreEmptyCorpus(t *testing.T) {
	store := openTestStore(t)
	docs, err := store.QuerySimilar(context.Background(), "anything", "", retrieval.KindFull, 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
