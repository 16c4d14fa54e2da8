package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// ModelUsage represents aggregated generation metrics for one model.
type ModelUsage struct {
	Model         string  `json:"model"`
	Requests      int64   `json:"requests"`
	Failures      int64   `json:"failures"`
	TotalDuration float64 `json:"total_duration_seconds"`
}

// QueryService queries aggregated generation metrics from a Prometheus
// server scraping this process.
type QueryService struct {
	client   api.Client
	queryAPI v1.API
}

// NewQueryService creates a metrics query service.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &QueryService{
		client:   client,
		queryAPI: v1.NewAPI(client),
	}, nil
}

// GetModelUsage retrieves per-model request counts, failures and total
// generation time across all recorded runs.
func (q *QueryService) GetModelUsage(ctx context.Context) (map[string]*ModelUsage, error) {
	result := make(map[string]*ModelUsage)

	requestsQuery := `sum by (model) (generation_requests_total)`
	requestsResult, _, err := q.queryAPI.Query(ctx, requestsQuery, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query request totals: %w", err)
	}
	if vector, ok := requestsResult.(model.Vector); ok {
		for _, sample := range vector {
			name := string(sample.Metric["model"])
			result[name] = &ModelUsage{
				Model:    name,
				Requests: int64(sample.Value),
			}
		}
	}

	failuresQuery := `sum by (model) (generation_requests_total{status="error"})`
	failuresResult, _, err := q.queryAPI.Query(ctx, failuresQuery, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query failure totals: %w", err)
	}
	if vector, ok := failuresResult.(model.Vector); ok {
		for _, sample := range vector {
			name := string(sample.Metric["model"])
			if usage, exists := result[name]; exists {
				usage.Failures = int64(sample.Value)
			}
		}
	}

	durationQuery := `sum by (model) (generation_request_duration_seconds_sum)`
	durationResult, _, err := q.queryAPI.Query(ctx, durationQuery, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query duration totals: %w", err)
	}
	if vector, ok := durationResult.(model.Vector); ok {
		for _, sample := range vector {
			name := string(sample.Metric["model"])
			if usage, exists := result[name]; exists {
				usage.TotalDuration = float64(sample.Value)
			}
		}
	}

	return result, nil
}

// GetRoleRequestCounts retrieves generation request counts grouped by
// pipeline role (researcher, planner, writer, critic).
func (q *QueryService) GetRoleRequestCounts(ctx context.Context) (map[string]int64, error) {
	result := make(map[string]int64)

	roleQuery := `sum by (role) (generation_requests_total)`
	roleResult, _, err := q.queryAPI.Query(ctx, roleQuery, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query role totals: %w", err)
	}
	if vector, ok := roleResult.(model.Vector); ok {
		for _, sample := range vector {
			result[string(sample.Metric["role"])] = int64(sample.Value)
		}
	}

	return result, nil
}
