// Package google provides the Google Gemini implementation of llm.Client.
package google

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"scriptforge/pkg/llm"
)

// Client wraps the Google GenAI client to implement llm.Client.
type Client struct {
	client *genai.Client
	apiKey string
	model  string
}

// New creates a Gemini client for the given model. Client creation requires
// a context, so the underlying genai client is created lazily on first use.
func New(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
	}
}

// Complete implements llm.Client.
func (g *Client) Complete(ctx context.Context, in llm.Request) (llm.Response, error) {
	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return llm.Response{}, llm.WrapError(llm.ErrorTypeAuth, err, "failed to create Gemini client")
		}
		g.client = client
	}

	contents, systemInstruction, err := convertMessages(in.Messages)
	if err != nil {
		return llm.Response{}, llm.WrapError(llm.ErrorTypeBadPrompt, err, "message conversion error")
	}

	//nolint:gosec // MaxTokens validated at higher layer, overflow acceptable
	maxTokens := int32(in.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}
	temperature := in.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return llm.Response{}, llm.ClassifyError(err)
	}
	if result == nil {
		return llm.Response{}, llm.NewError(llm.ErrorTypeEmptyResponse, "empty response from Gemini API")
	}

	text := result.Text()
	if text == "" {
		return llm.Response{}, llm.NewError(llm.ErrorTypeEmptyResponse, "no text content in Gemini response")
	}

	return llm.Response{Content: text, StopReason: "end_turn"}, nil
}

// ModelName implements llm.Client.
func (g *Client) ModelName() string {
	return g.model
}

// convertMessages converts messages to Gemini's Content format. System
// messages are lifted out into a separate system instruction.
func convertMessages(messages []llm.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("message list cannot be empty")
	}

	var systemInstruction string
	var contents []*genai.Content
	for i := range messages {
		msg := &messages[i]
		if msg.Role == llm.RoleSystem {
			if systemInstruction != "" {
				systemInstruction += "\n\n" + msg.Content
			} else {
				systemInstruction = msg.Content
			}
			continue
		}

		var role string
		switch msg.Role {
		case llm.RoleUser:
			role = "user"
		case llm.RoleAssistant:
			role = "model" // Gemini uses "model" instead of "assistant"
		default:
			return nil, "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}

		if msg.Content == "" {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	return contents, systemInstruction, nil
}
