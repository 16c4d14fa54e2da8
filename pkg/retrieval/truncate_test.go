package retrieval

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateIsRuneSafe(t *testing.T) {
	text := "résumé école gâteau"
	cut := truncate(text, 7)
	assert.True(t, utf8.ValidString(cut), "truncation must not split a rune")
	assert.Equal(t, "résumé ...", cut)

	assert.Equal(t, "short", truncate("  short  ", 100), "under the limit passes through trimmed")
}
