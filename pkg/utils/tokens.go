// Package utils provides tiktoken-based token counting and chunking helpers
// for sizing documents against generation context limits.
package utils

import (
	"fmt"
	"strings"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter provides token counting for prompt sizing. All providers are
// approximated with the GPT-4 encoding, which is close enough for chunking
// decisions.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter creates a token counter.
func NewTokenCounter() (*TokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec: %w", err)
	}
	return &TokenCounter{codec: codec}, nil
}

// CountTokens returns the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(text string) int {
	if tc == nil || tc.codec == nil {
		// Fallback to character-based estimation (4 chars ≈ 1 token)
		return len(text) / 4
	}
	count, err := tc.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return count
}

// CountTokensSimple counts tokens without a TokenCounter instance, falling
// back to character estimation if the codec cannot be built.
func CountTokensSimple(text string) int {
	counter, err := NewTokenCounter()
	if err != nil {
		return len(text) / 4
	}
	return counter.CountTokens(text)
}

// TruncateToTokenLimit truncates text to fit within the specified token
// limit. Truncation is by characters, not exact token boundaries.
func (tc *TokenCounter) TruncateToTokenLimit(text string, limit int) string {
	currentTokens := tc.CountTokens(text)
	if currentTokens <= limit {
		return text
	}

	runes := []rune(text)
	ratio := float64(limit) / float64(currentTokens)
	runeLimit := int(float64(len(runes)) * ratio * 0.9)
	if runeLimit >= len(runes) {
		return text
	}
	return string(runes[:runeLimit]) + "..."
}

// ChunkByTokens splits text into chunks of at most chunkTokens tokens each,
// preferring paragraph boundaries. A single paragraph larger than the budget
// is split on character boundaries rather than dropped.
func (tc *TokenCounter) ChunkByTokens(text string, chunkTokens int) []string {
	if chunkTokens <= 0 || tc.CountTokens(text) <= chunkTokens {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range strings.Split(text, "\n\n") {
		paraTokens := tc.CountTokens(para)

		if paraTokens > chunkTokens {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
				currentTokens = 0
			}
			chunks = append(chunks, tc.splitOversized(para, chunkTokens)...)
			continue
		}

		if currentTokens+paraTokens > chunkTokens && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentTokens = 0
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func (tc *TokenCounter) splitOversized(text string, chunkTokens int) []string {
	// Estimate a character window from the token budget and slice on it.
	charsPerChunk := chunkTokens * 4
	if charsPerChunk <= 0 {
		return []string{text}
	}
	var parts []string
	for len(text) > charsPerChunk {
		parts = append(parts, text[:charsPerChunk])
		text = text[charsPerChunk:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
