package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDetectionClassLetters(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    TopicClass
	}{
		{"bold marker", "**TOPIC TYPE:** B\n\nsome reasoning", ClassGeneric},
		{"plain colon", "TOPIC TYPE: C because it is current news", ClassTrending},
		{"bare letter", "This is TYPE D, too broad", ClassAmbiguous},
		{"specific", "**TOPIC TYPE:** A\nProceed.", ClassSpecific},
		{"keyword fallback generic", "The topic is GENERIC and NEEDS TRANSFORMATION into a story.", ClassGeneric},
		{"keyword fallback ambiguous", "AMBIGUOUS topic, NEEDS CLARIFICATION from the user.", ClassAmbiguous},
		{"unparseable defaults to specific", "I think this is a fine topic.", ClassSpecific},
		{"empty defaults to specific", "", ClassSpecific},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetection(tt.content).Type)
		})
	}
}

func TestParseDetectionSuggestions(t *testing.T) {
	content := `**TOPIC TYPE:** B

ANGLE 1: "Sam Altman quietly shipped a model nobody asked for"
- Why it works: surprise

ANGLE 2: "An Indian startup beat OpenAI on pricing by 90 percent"

ANGLE 3: "Google paid $2.7 billion to rehire one person"

ANGLE 4: "A fourth angle that should be dropped"`

	d := parseDetection(content)
	require.Equal(t, ClassGeneric, d.Type)
	require.Len(t, d.Suggestions, 3, "capped at 3")
	assert.Equal(t, "Sam Altman quietly shipped a model nobody asked for", d.Suggestions[0])
}

func TestParseDetectionSuggestionsFallbackQuotes(t *testing.T) {
	content := `**TOPIC TYPE:** B

You could cover "how one founder rebuilt a dead company into a giant" instead.`

	d := parseDetection(content)
	require.Len(t, d.Suggestions, 1)
	assert.Contains(t, d.Suggestions[0], "rebuilt a dead company")
}

func TestParseDetectionQuestions(t *testing.T) {
	content := `**TOPIC TYPE:** D

Question 1: Which company do you mean?
Question 2: Are you interested in the product or the lawsuit?
Question 3: This one should be dropped?`

	d := parseDetection(content)
	require.Equal(t, ClassAmbiguous, d.Type)
	require.Len(t, d.Questions, 2, "capped at 2")
	assert.Equal(t, "Which company do you mean?", d.Questions[0])
}

func TestParseDetectionQuestionsBulletFallback(t *testing.T) {
	content := `**TOPIC TYPE:** D

- Which aspect of the company interests you?
- Do you want news or history?
- This line has no question mark`

	d := parseDetection(content)
	require.Len(t, d.Questions, 2)
	assert.Contains(t, d.Questions[0], "?")
}

func TestParseSelection(t *testing.T) {
	content := `### SELECTED ANGLE

**Winner:** The Underdog Story

**The Hook (Draft):** "A college dropout beat Google at its own game"

**Specific Search Queries for Deep Dive:**
1. "startup vs google search market"
2. "founder interview quotes 2025"
3. "india search engine usage statistics"
4. "search ad revenue numbers"
5. "a fifth query that should be dropped"

**Why This Angle Wins:**
Because it has everything.`

	sel := parseSelection(content)
	assert.Equal(t, "The Underdog Story", sel.Angle)
	assert.Equal(t, `"A college dropout beat Google at its own game"`, sel.DraftHook)
	require.Len(t, sel.SearchQueries, 4, "capped at 4")
	assert.Equal(t, "startup vs google search market", sel.SearchQueries[0])
}

func TestExtractSearchQueriesNumberingVariants(t *testing.T) {
	content := `**Specific Search Queries for Deep Dive:**
1. "numbered query"
"bare quoted query"
2."no space after the period"

**Why This Angle Wins:** reasons.`

	queries := extractSearchQueries(content)
	require.Len(t, queries, 3)
	assert.Equal(t, "numbered query", queries[0])
	assert.Equal(t, "bare quoted query", queries[1])
	assert.Equal(t, "no space after the period", queries[2])
}

func TestParseSelectionMissingMarkers(t *testing.T) {
	sel := parseSelection("The model rambled and followed no format at all.")
	assert.Empty(t, sel.Angle)
	assert.Empty(t, sel.DraftHook)
	assert.Empty(t, sel.SearchQueries)
	assert.NotEmpty(t, sel.Raw)
}

func TestExtractBetween(t *testing.T) {
	assert.Equal(t, "value", extractBetween("key: value\nnext", "key:", "\n"))
	assert.Equal(t, "", extractBetween("no marker here", "key:", "\n"))
	assert.Equal(t, "tail", extractBetween("key: tail", "key:", "\n"), "missing end marker takes the rest")
}
