package mocks

import (
	"context"
	"sync"

	"scriptforge/pkg/retrieval"
)

// StyleQuery records one QuerySimilar invocation.
type StyleQuery struct {
	Query string
	Mode  string
	Kind  retrieval.Kind
	Limit int
}

// StyleStore implements retrieval.StyleStore for testing.
type StyleStore struct {
	// QuerySimilarFunc is called when QuerySimilar is invoked. Override to
	// customize behavior.
	QuerySimilarFunc func(ctx context.Context, query string, mode string, kind retrieval.Kind, limit int) ([]retrieval.StyleDoc, error)

	// Calls tracks every query passed to QuerySimilar.
	Calls []StyleQuery

	mu sync.Mutex
}

// NewStyleStore creates a mock store that returns no documents until
// configured otherwise.
func NewStyleStore() *StyleStore {
	m := &StyleStore{}
	m.QuerySimilarFunc = func(_ context.Context, _ string, _ string, _ retrieval.Kind, _ int) ([]retrieval.StyleDoc, error) {
		return nil, nil
	}
	return m
}

// QuerySimilar implements retrieval.StyleStore.
func (m *StyleStore) QuerySimilar(ctx context.Context, query string, mode string, kind retrieval.Kind, limit int) ([]retrieval.StyleDoc, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, StyleQuery{Query: query, Mode: mode, Kind: kind, Limit: limit})
	m.mu.Unlock()
	return m.QuerySimilarFunc(ctx, query, mode, kind, limit)
}

// ReturnDocs configures QuerySimilar to answer every query with the given
// documents filtered by the requested kind and truncated to the limit.
func (m *StyleStore) ReturnDocs(docs ...retrieval.StyleDoc) {
	m.QuerySimilarFunc = func(_ context.Context, _ string, _ string, kind retrieval.Kind, limit int) ([]retrieval.StyleDoc, error) {
		var matched []retrieval.StyleDoc
		for _, doc := range docs {
			if doc.Kind == kind {
				matched = append(matched, doc)
			}
		}
		if limit > 0 && len(matched) > limit {
			matched = matched[:limit]
		}
		return matched, nil
	}
}

// FailWith configures QuerySimilar to return the specified error.
func (m *StyleStore) FailWith(err error) {
	m.QuerySimilarFunc = func(_ context.Context, _ string, _ string, _ retrieval.Kind, _ int) ([]retrieval.StyleDoc, error) {
		return nil, err
	}
}

// QueryCallCount returns the number of times QuerySimilar was called.
func (m *StyleStore) QueryCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
