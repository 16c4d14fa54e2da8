package llm

import "context"

// Middleware wraps a Client with additional behavior (retry, metrics,
// logging). Middlewares compose with Chain.
type Middleware func(next Client) Client

// clientFunc adapts plain functions to the Client interface for middleware
// implementations.
type clientFunc struct {
	complete  func(context.Context, Request) (Response, error)
	modelName func() string
}

func (f clientFunc) Complete(ctx context.Context, in Request) (Response, error) {
	return f.complete(ctx, in)
}

func (f clientFunc) ModelName() string {
	return f.modelName()
}

// WrapClient builds a Client from function implementations.
func WrapClient(
	complete func(context.Context, Request) (Response, error),
	modelName func() string,
) Client {
	return clientFunc{complete: complete, modelName: modelName}
}

// Chain composes middlewares around a base client. The first middleware in
// the list is outermost:
//
//	Chain(client, mw1, mw2) => mw1 -> mw2 -> client
func Chain(base Client, middlewares ...Middleware) Client {
	client := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		client = middlewares[i](client)
	}
	return client
}
