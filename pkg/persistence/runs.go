package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scriptforge/pkg/pipeline"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the durable summary of one pipeline run.
type RunRecord struct {
	ID              string
	Topic           string
	Mode            string
	Outcome         string
	ResearchStatus  string
	TopicType       string
	ResearchQuality int
	VariantCount    int
	GateVerdict     string
	GateScore       int
	RevisionCount   int
	BestVariant     int
	FinalText       string
	CreatedAt       time.Time
}

// SaveRun persists the terminal result of a run and returns the new run id.
func (s *Store) SaveRun(ctx context.Context, result *pipeline.Result) (string, error) {
	id := uuid.New().String()
	st := result.State

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, topic, mode, outcome, research_status, topic_type,
			research_quality, variant_count, gate_verdict, gate_score,
			revision_count, best_variant, final_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, st.Topic, string(st.Mode), string(result.Outcome),
		string(st.ResearchStatus), string(st.TopicType),
		st.ResearchQualityScore, len(st.Variants),
		string(st.GateVerdict), st.GateScore,
		st.RevisionCount, result.BestVariantIndex, result.FinalText,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	s.logger.Info("saved run %s (%s)", id, result.Outcome)
	return id, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, topic, mode, outcome, research_status, topic_type,
			research_quality, variant_count, gate_verdict, gate_score,
			revision_count, best_variant, final_text, created_at
		FROM runs WHERE id = ?`, id)

	var r RunRecord
	err := row.Scan(
		&r.ID, &r.Topic, &r.Mode, &r.Outcome, &r.ResearchStatus, &r.TopicType,
		&r.ResearchQuality, &r.VariantCount, &r.GateVerdict, &r.GateScore,
		&r.RevisionCount, &r.BestVariant, &r.FinalText, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic, mode, outcome, research_status, topic_type,
			research_quality, variant_count, gate_verdict, gate_score,
			revision_count, best_variant, final_text, created_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.Topic, &r.Mode, &r.Outcome, &r.ResearchStatus, &r.TopicType,
			&r.ResearchQuality, &r.VariantCount, &r.GateVerdict, &r.GateScore,
			&r.RevisionCount, &r.BestVariant, &r.FinalText, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}
