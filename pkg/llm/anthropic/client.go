// Package anthropic provides the Anthropic Claude implementation of llm.Client.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"scriptforge/pkg/llm"
)

// Client wraps the Anthropic SDK to implement llm.Client.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Claude client for the given model. Middleware (retry,
// metrics) is applied at a higher level.
func New(apiKey, model string) *Client {
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, in llm.Request) (llm.Response, error) {
	systemPrompt, rest := llm.SplitSystem(in.Messages)
	if len(rest) == 0 {
		return llm.Response{}, llm.NewError(llm.ErrorTypeBadPrompt, "request has no user message")
	}

	// Anthropic requires strict user/assistant alternation starting and
	// ending with user; merge consecutive same-role messages.
	messages := make([]anthropic.MessageParam, 0, len(rest))
	for i := range rest {
		m := &rest[i]
		role := anthropic.MessageParamRoleUser
		if m.Role == llm.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		if n := len(messages); n > 0 && messages[n-1].Role == role {
			prev := messages[n-1].Content[0].OfText
			prev.Text = prev.Text + "\n\n" + m.Content
			continue
		}
		messages = append(messages, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
		})
	}
	if messages[0].Role != anthropic.MessageParamRoleUser {
		return llm.Response{}, llm.NewError(llm.ErrorTypeBadPrompt, "conversation must start with a user message")
	}

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(in.Temperature)),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt, Type: "text"}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Response{}, llm.ClassifyError(err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return llm.Response{}, llm.NewError(llm.ErrorTypeEmptyResponse, "empty response from Anthropic API")
	}

	var text strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}
	if text.Len() == 0 {
		return llm.Response{}, llm.NewError(llm.ErrorTypeEmptyResponse, "no text content in Anthropic response")
	}

	return llm.Response{
		Content:    text.String(),
		StopReason: string(resp.StopReason),
	}, nil
}

// ModelName implements llm.Client.
func (c *Client) ModelName() string {
	return string(c.model)
}
