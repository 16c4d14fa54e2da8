package mocks

import (
	"context"
	"strings"
	"sync"

	"scriptforge/pkg/llm"
)

// LLMClient implements llm.Client for testing with configurable behavior.
//
//nolint:govet // fieldalignment: mock struct layout optimized for readability
type LLMClient struct {
	// CompleteFunc is called when Complete is invoked. Override to customize behavior.
	CompleteFunc func(ctx context.Context, req llm.Request) (llm.Response, error)

	// CompleteCalls tracks all calls to Complete for verification.
	CompleteCalls []llm.Request

	// modelName is the model name returned by ModelName.
	modelName string

	// mu protects the call tracking slice
	mu sync.Mutex
}

// NewLLMClient creates a mock client whose Complete returns a fixed
// placeholder response until configured otherwise.
func NewLLMClient() *LLMClient {
	m := &LLMClient{
		modelName: "mock-model",
	}
	m.CompleteFunc = func(_ context.Context, _ llm.Request) (llm.Response, error) {
		return llm.Response{
			Content:    "Mock response",
			StopReason: "end_turn",
		}, nil
	}
	return m
}

// Complete implements llm.Client.
func (m *LLMClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, req)
	m.mu.Unlock()
	return m.CompleteFunc(ctx, req)
}

// ModelName implements llm.Client.
func (m *LLMClient) ModelName() string {
	return m.modelName
}

// SetModelName sets the model name returned by ModelName.
func (m *LLMClient) SetModelName(name string) {
	m.modelName = name
}

// OnComplete sets a custom handler for Complete calls.
func (m *LLMClient) OnComplete(fn func(ctx context.Context, req llm.Request) (llm.Response, error)) {
	m.CompleteFunc = fn
}

// FailCompleteWith configures Complete to return the specified error.
func (m *LLMClient) FailCompleteWith(err error) {
	m.CompleteFunc = func(_ context.Context, _ llm.Request) (llm.Response, error) {
		return llm.Response{}, err
	}
}

// RespondWith configures Complete to return the specified content.
func (m *LLMClient) RespondWith(content string) {
	m.CompleteFunc = func(_ context.Context, _ llm.Request) (llm.Response, error) {
		return llm.Response{
			Content:    content,
			StopReason: "end_turn",
		}, nil
	}
}

// RespondWithSequence configures Complete to return different responses for
// each call, returning the last one for any additional calls.
func (m *LLMClient) RespondWithSequence(responses ...llm.Response) {
	var seqMu sync.Mutex
	callIndex := 0
	m.CompleteFunc = func(_ context.Context, _ llm.Request) (llm.Response, error) {
		seqMu.Lock()
		defer seqMu.Unlock()
		if callIndex < len(responses) {
			resp := responses[callIndex]
			callIndex++
			return resp, nil
		}
		return responses[len(responses)-1], nil
	}
}

// RespondByPrompt configures Complete to pick a response by substring match
// against the request's messages. Keys are checked in unspecified order, so
// they should be mutually exclusive. Falls back to fallback when nothing
// matches.
func (m *LLMClient) RespondByPrompt(responses map[string]string, fallback string) {
	m.CompleteFunc = func(_ context.Context, req llm.Request) (llm.Response, error) {
		for needle, content := range responses {
			for i := range req.Messages {
				if strings.Contains(req.Messages[i].Content, needle) {
					return llm.Response{Content: content, StopReason: "end_turn"}, nil
				}
			}
		}
		return llm.Response{Content: fallback, StopReason: "end_turn"}, nil
	}
}

// Reset clears all recorded calls.
func (m *LLMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls = nil
}

// CompleteCallCount returns the number of times Complete was called.
func (m *LLMClient) CompleteCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompleteCalls)
}

// LastCompleteCall returns the most recent Complete call request, or nil if none.
func (m *LLMClient) LastCompleteCall() *llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CompleteCalls) == 0 {
		return nil
	}
	return &m.CompleteCalls[len(m.CompleteCalls)-1]
}

// CompleteCalledWith reports whether any Complete call contained the given
// substring in one of its messages.
func (m *LLMClient) CompleteCalledWith(expectedContentSubstr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.CompleteCalls {
		for _, msg := range m.CompleteCalls[i].Messages {
			if strings.Contains(msg.Content, expectedContentSubstr) {
				return true
			}
		}
	}
	return false
}
