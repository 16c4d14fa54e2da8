package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"scriptforge/pkg/logx"
)

// RetryableClient wraps a Client with per-error-type exponential backoff.
// Auth and bad-prompt errors are surfaced immediately; everything else is
// retried up to the policy limit for its classified type.
type RetryableClient struct {
	client Client
	logger *logx.Logger
}

// WithRetry wraps a client with retry behavior.
func WithRetry(client Client) *RetryableClient {
	return &RetryableClient{
		client: client,
		logger: logx.NewLogger("llm-retry"),
	}
}

// Complete implements Client with retries.
func (r *RetryableClient) Complete(ctx context.Context, in Request) (Response, error) {
	var lastErr error
	policy := retryPolicies[ErrorTypeUnknown]

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt, policy)
			select {
			case <-ctx.Done():
				return Response{}, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		start := time.Now()
		resp, err := r.client.Complete(ctx, in)
		if err == nil {
			if attempt > 0 {
				r.logger.Debug("completion succeeded after %d retries in %v", attempt, time.Since(start))
			}
			return resp, nil
		}
		lastErr = err

		classified := ClassifyError(err)
		policy = classified.Policy()

		if !classified.IsRetryable() || attempt >= policy.MaxRetries {
			break
		}
		r.logger.Debug("attempt %d failed (%s), retrying: %v", attempt+1, classified.Type, err)

		// Context errors never recover on retry.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				break
			}
		}
	}

	return Response{}, fmt.Errorf("generation failed after retries (%s): %w",
		TypeOf(lastErr).String(), lastErr)
}

// ModelName delegates to the wrapped client.
func (r *RetryableClient) ModelName() string {
	return r.client.ModelName()
}

// backoffDelay computes the exponential backoff delay with jitter for the
// given attempt under a policy.
func backoffDelay(attempt int, policy RetryPolicy) time.Duration {
	if attempt == 0 || policy.InitialDelay == 0 {
		return 0
	}
	delay := time.Duration(float64(policy.InitialDelay) * math.Pow(policy.BackoffFactor, float64(attempt-1)))
	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	// 10% jitter to avoid thundering herds on shared rate limits.
	jitter := time.Duration(rand.Int63n(int64(delay)/10 + 1)) //nolint:gosec // non-cryptographic jitter
	return delay + jitter
}
