// Package ollama provides the Ollama implementation of llm.Client.
// Ollama is a local LLM runtime that allows running open-source models.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"scriptforge/pkg/llm"
)

// Client wraps the Ollama API client to implement llm.Client.
type Client struct {
	client *api.Client
	model  string
}

// New creates an Ollama client for the given model. hostURL should be the
// Ollama server URL (e.g., "http://localhost:11434").
func New(hostURL, model string) *Client {
	parsedURL, err := url.Parse(hostURL)
	if err != nil || hostURL == "" {
		parsedURL, _ = url.Parse("http://localhost:11434")
	}
	return &Client{
		client: api.NewClient(parsedURL, http.DefaultClient),
		model:  model,
	}
}

// Complete implements llm.Client.
func (o *Client) Complete(ctx context.Context, in llm.Request) (llm.Response, error) {
	if len(in.Messages) == 0 {
		return llm.Response{}, llm.NewError(llm.ErrorTypeBadPrompt, "message list cannot be empty")
	}

	messages := make([]api.Message, 0, len(in.Messages))
	for i := range in.Messages {
		msg := &in.Messages[i]
		messages = append(messages, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": in.Temperature,
			"num_predict": in.MaxTokens,
		},
	}

	var response api.ChatResponse
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return llm.Response{}, classifyError(err)
	}
	if response.Message.Content == "" {
		return llm.Response{}, llm.NewError(llm.ErrorTypeEmptyResponse, "empty response from Ollama API")
	}

	return llm.Response{
		Content:    response.Message.Content,
		StopReason: stopReason(&response),
	}, nil
}

// ModelName implements llm.Client.
func (o *Client) ModelName() string {
	return o.model
}

// stopReason converts Ollama's done_reason to our stop reason format.
func stopReason(resp *api.ChatResponse) string {
	if !resp.Done {
		return "incomplete"
	}
	switch resp.DoneReason {
	case "stop", "":
		return "end_turn"
	case "length":
		return "max_tokens"
	default:
		return resp.DoneReason
	}
}

// classifyError converts Ollama errors to our error types.
func classifyError(err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return llm.NewError(llm.ErrorTypeTransient, fmt.Sprintf("Ollama server not reachable: %v", err))
	case strings.Contains(errStr, "model") && strings.Contains(errStr, "not found"):
		return llm.NewError(llm.ErrorTypeBadPrompt, fmt.Sprintf("Ollama model not found: %v", err))
	case strings.Contains(errStr, "context canceled"):
		return llm.NewError(llm.ErrorTypeTransient, fmt.Sprintf("request canceled: %v", err))
	case strings.Contains(errStr, "timeout"):
		return llm.NewError(llm.ErrorTypeTransient, fmt.Sprintf("request timeout: %v", err))
	default:
		return llm.NewError(llm.ErrorTypeUnknown, fmt.Sprintf("Ollama API error: %v", err))
	}
}
