// Package llm defines the generation-client boundary: a provider-agnostic
// interface for text generation plus request/response types shared by all
// provider implementations.
package llm

import (
	"context"
	"fmt"
)

// Role identifies who authored a message in a generation request.
type Role string

const (
	// RoleSystem carries instructions and context for the model.
	RoleSystem Role = "system"
	// RoleUser carries the request content.
	RoleUser Role = "user"
	// RoleAssistant carries a prior model response.
	RoleAssistant Role = "assistant"
)

const (
	// TemperatureCreative is used for script writing, where divergent
	// output is the point.
	TemperatureCreative = 0.8
	// TemperaturePlanning is used for angle planning and selection.
	TemperaturePlanning = 0.3
	// TemperatureCritique is used for validation and scoring calls.
	TemperatureCritique = 0.0

	// DefaultMaxTokens bounds a generation response when the caller does
	// not specify a budget.
	DefaultMaxTokens = 4096
)

// Message is one turn in a generation request.
type Message struct {
	Role    Role
	Content string
}

// Request describes a single generation call.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Response is the result of a generation call.
type Response struct {
	Content    string
	StopReason string // provider stop reason when available: "end_turn", "max_tokens", ...
}

// Client is the minimal interface every generation provider implements.
// Complete blocks until the provider answers, the context is cancelled, or
// the provider-side timeout fires.
type Client interface {
	Complete(ctx context.Context, in Request) (Response, error)

	// ModelName returns the provider model identifier, used for logging
	// and metrics labels.
	ModelName() string
}

// NewRequest builds a request from a system prompt and a user prompt with
// default token and temperature settings.
func NewRequest(systemPrompt, userPrompt string) Request {
	msgs := make([]Message, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: systemPrompt})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: userPrompt})
	return Request{
		Messages:    msgs,
		MaxTokens:   DefaultMaxTokens,
		Temperature: TemperaturePlanning,
	}
}

// Config holds the settings needed to construct a provider client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Host        string // local providers only (ollama)
	MaxTokens   int
	Temperature float32
}

// Validate checks that the configuration can produce a usable client.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if c.Provider != "ollama" && c.APIKey == "" {
		return fmt.Errorf("API key cannot be empty for provider %q", c.Provider)
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0")
	}
	return nil
}

// SplitSystem separates system messages from conversation messages, joining
// multiple system parts. Providers that take the system prompt as a separate
// parameter (Anthropic, Gemini) use this.
func SplitSystem(messages []Message) (systemPrompt string, rest []Message) {
	var sys string
	rest = make([]Message, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		if m.Role == RoleSystem {
			if sys != "" {
				sys += "\n\n"
			}
			sys += m.Content
			continue
		}
		rest = append(rest, *m)
	}
	return sys, rest
}
