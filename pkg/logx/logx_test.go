package logx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerBuffersEntries(t *testing.T) {
	logger := NewLogger("test-component")
	logger.Info("hello %s", "world")

	entries := RecentEntries("test-component", time.Time{})
	require.NotEmpty(t, entries)

	last := entries[len(entries)-1]
	assert.Equal(t, "test-component", last.Component)
	assert.Equal(t, "INFO", last.Level)
	assert.Equal(t, "hello world", last.Message)
}

func TestRecentEntriesFiltersByComponent(t *testing.T) {
	NewLogger("alpha").Info("from alpha")
	NewLogger("beta").Info("from beta")

	entries := RecentEntries("alpha", time.Time{})
	for _, e := range entries {
		assert.Equal(t, "alpha", e.Component)
	}
}

func TestDebugDisabledByDefault(t *testing.T) {
	SetDebug(false)
	assert.False(t, IsDebugEnabledFor("engine"))

	SetDebug(true)
	assert.True(t, IsDebugEnabledFor("engine"))
	SetDebug(false)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
}

func TestWrapPreservesError(t *testing.T) {
	err := Errorf("base failure")
	wrapped := Wrap(err, "outer")
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "outer: base failure")
}
