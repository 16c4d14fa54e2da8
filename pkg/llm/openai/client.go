// Package openai provides the OpenAI implementation of llm.Client using
// the official OpenAI Go package.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"scriptforge/pkg/llm"
)

// Client wraps the official OpenAI Go client to implement llm.Client.
type Client struct {
	client openai.Client
	model  string
}

// New creates an OpenAI client for the given model (raw client, middleware
// applied at a higher level).
func New(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete implements llm.Client using the Responses API.
func (c *Client) Complete(ctx context.Context, in llm.Request) (llm.Response, error) {
	// The Responses API takes a single input string; fold the conversation
	// into one prompt with role prefixes.
	var inputText string
	for i := range in.Messages {
		msg := &in.Messages[i]
		switch msg.Role {
		case llm.RoleSystem:
			inputText += fmt.Sprintf("System: %s\n\n", msg.Content)
		case llm.RoleUser:
			inputText += msg.Content
		case llm.RoleAssistant:
			inputText += fmt.Sprintf("Assistant: %s\n\n", msg.Content)
		}
	}
	if inputText == "" {
		return llm.Response{}, llm.NewError(llm.ErrorTypeBadPrompt, "request has no messages")
	}

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(int64(maxTokens)),
		Temperature:     openai.Float(float64(in.Temperature)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(inputText)},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return llm.Response{}, llm.ClassifyError(err)
	}
	if resp == nil {
		return llm.Response{}, llm.NewError(llm.ErrorTypeEmptyResponse, "empty response from OpenAI Responses API")
	}

	content := resp.OutputText()
	if content == "" {
		return llm.Response{}, llm.NewError(llm.ErrorTypeEmptyResponse, "no text content in OpenAI response")
	}

	return llm.Response{Content: content}, nil
}

// ModelName implements llm.Client.
func (c *Client) ModelName() string {
	return c.model
}
