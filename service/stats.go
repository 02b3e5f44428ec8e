package service

import (
	"context"
	"fmt"
)

// StatsStore is the storage surface for the stats read. *store.DB
// implements it.
type StatsStore interface {
	ScoreStats(ctx context.Context) (total int64, avg float64, err error)
	CounterValue(ctx context.Context, name string) (int64, error)
}

// ModelStats describes the current global model.
type ModelStats struct {
	TotalScores  int64   `json:"totalScores"`
	AverageScore float64 `json:"averageScore"`
	TrainingRuns int64   `json:"trainingRuns"`
}

// Stats reports global model size, average score, and how many training runs
// have completed.
func Stats(ctx context.Context, store StatsStore) (*ModelStats, error) {
	total, avg, err := store.ScoreStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("score stats: %w", err)
	}
	runs, err := store.CounterValue(ctx, CounterTrainingRuns)
	if err != nil {
		return nil, fmt.Errorf("counter value: %w", err)
	}
	return &ModelStats{TotalScores: total, AverageScore: avg, TrainingRuns: runs}, nil
}
