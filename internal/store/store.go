// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"options-visualizer/internal/models"
	"options-visualizer/internal/strategy"
)

// EvaluationStore defines the interface for evaluation history.
type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, summary *models.StrategySummary) (string, error)
	ListEvaluations(ctx context.Context, filter EvaluationFilter) ([]models.StrategySummary, error)
	GetEvaluation(ctx context.Context, id string) (*models.StrategySummary, error)
	DeleteEvaluation(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// EvaluationFilter represents filters for querying evaluations.
// A zero Strategy matches every variant.
type EvaluationFilter struct {
	Symbol   string
	Strategy strategy.Variant
	Limit    int
}
