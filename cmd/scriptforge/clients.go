package main

import (
	"scriptforge/pkg/config"
	"scriptforge/pkg/llm"
	"scriptforge/pkg/llm/anthropic"
	"scriptforge/pkg/llm/google"
	"scriptforge/pkg/llm/ollama"
	"scriptforge/pkg/llm/openai"
	"scriptforge/pkg/metrics"
)

// roleClients holds one generation client per pipeline role. Roles may point
// at different providers; each client carries retry and metrics middleware.
type roleClients struct {
	Researcher llm.Client
	Selector   llm.Client
	Planner    llm.Client
	Writer     llm.Client
	Critic     llm.Client
}

func buildClients(cfg *config.Config) (*roleClients, error) {
	var (
		clients roleClients
		err     error
	)
	if clients.Researcher, err = newClient(cfg, cfg.Models.Researcher, "researcher"); err != nil {
		return nil, err
	}
	if clients.Selector, err = newClient(cfg, cfg.Models.Selector, "selector"); err != nil {
		return nil, err
	}
	if clients.Planner, err = newClient(cfg, cfg.Models.Planner, "planner"); err != nil {
		return nil, err
	}
	if clients.Writer, err = newClient(cfg, cfg.Models.Writer, "writer"); err != nil {
		return nil, err
	}
	if clients.Critic, err = newClient(cfg, cfg.Models.Critic, "critic"); err != nil {
		return nil, err
	}
	return &clients, nil
}

// newClient constructs the provider client for one role. A model that maps
// to no provider, or a provider without credentials, is a fatal
// configuration error: it is the one failure the pipeline cannot degrade
// around.
func newClient(cfg *config.Config, model, role string) (llm.Client, error) {
	provider, err := config.GetModelProvider(model)
	if err != nil {
		return nil, err
	}
	apiKey, err := config.APIKeyFor(provider)
	if err != nil {
		return nil, err
	}

	var base llm.Client
	switch provider {
	case config.ProviderAnthropic:
		base = anthropic.New(apiKey, model)
	case config.ProviderOpenAI:
		base = openai.New(apiKey, model)
	case config.ProviderGoogle:
		base = google.New(apiKey, model)
	case config.ProviderOllama:
		base = ollama.New(cfg.OllamaHost, model)
	default:
		return nil, config.Fatalf("no client implementation for provider %q", provider)
	}

	return llm.WithRetry(llm.Chain(base, metrics.Middleware(role))), nil
}
