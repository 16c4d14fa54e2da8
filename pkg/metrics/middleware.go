package metrics

import (
	"context"
	"time"

	"scriptforge/pkg/llm"
)

// Middleware instruments a generation client with request counts and
// latency, labeled with the pipeline role the client serves.
func Middleware(role string) llm.Middleware {
	return func(next llm.Client) llm.Client {
		model := next.ModelName()
		return llm.WrapClient(func(ctx context.Context, in llm.Request) (llm.Response, error) {
			start := time.Now()
			resp, err := next.Complete(ctx, in)
			ObserveGenerationDuration(model, time.Since(start))
			status := StatusOK
			if err != nil {
				status = StatusError
			}
			RecordGenerationRequest(model, role, status)
			return resp, err
		}, next.ModelName)
	}
}
