package retrieval

import "context"

// Kind selects which slice of the reference corpus a query runs against.
type Kind string

const (
	// KindFull matches complete prior scripts.
	KindFull Kind = "full"
	// KindHook matches opening hooks only.
	KindHook Kind = "hook"
)

// StyleDoc is one retrieved reference snippet.
type StyleDoc struct {
	SourceID string
	Kind     Kind
	Content  string
}

// StyleStore serves similarity lookups over previously produced scripts.
// Implementations are read-only from the pipeline's perspective.
type StyleStore interface {
	QuerySimilar(ctx context.Context, query string, mode string, kind Kind, limit int) ([]StyleDoc, error)
}
