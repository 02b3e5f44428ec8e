package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/libroteka/recommendation-service/models"
	"github.com/rs/zerolog"
)

// Training defaults, overridable through config.
const (
	DefaultTrainTopN     = 20
	DefaultRetentionDays = 365
)

// CounterTrainingRuns is the store-backed counter bumped once per completed
// training run.
const CounterTrainingRuns = "training_runs"

// TrainerStore is the storage surface the trainer works against. *store.DB
// implements it.
type TrainerStore interface {
	CountLoansByBook(ctx context.Context, statuses []string, limit int64) ([]models.BookLoanCount, error)
	BookIDsLoanedSince(ctx context.Context, cutoff time.Time) ([]string, error)
	UpsertScore(ctx context.Context, bookID string, score float64, updatedAt time.Time) error
	DeleteScoresNotIn(ctx context.Context, keep []string) (int64, error)
	IncrementCounter(ctx context.Context, name string, delta int64) (int64, error)
}

// Trainer recomputes the global popularity model from loan history and
// prunes entries for books with no recent activity. Concurrent runs converge
// through last-upsert-wins per bookId; no locking needed.
type Trainer struct {
	store    TrainerStore
	notifier Notifier // nil disables notifications
	topN     int64
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTrainer(store TrainerStore, notifier Notifier, topN int64, logger zerolog.Logger) *Trainer {
	if topN <= 0 {
		topN = DefaultTrainTopN
	}
	return &Trainer{
		store:    store,
		notifier: notifier,
		topN:     topN,
		logger:   logger,
		now:      time.Now,
	}
}

// TrainResult summarizes one training run.
type TrainResult struct {
	RunID   string `json:"runId"`
	Updated int    `json:"updated"`
}

// TrainGlobalModel aggregates relevant loans per book, takes the topN most
// loaned, and upserts each as a global score equal to its loan count. Scores
// are recomputed from scratch, not accumulated; books outside the topN
// window keep their previous score. A failing upsert is logged and skipped
// so the rest of the batch still lands; the returned count covers only
// successful upserts.
func (t *Trainer) TrainGlobalModel(ctx context.Context) (*TrainResult, error) {
	runID := uuid.New().String()
	counts, err := t.store.CountLoansByBook(ctx, models.RelevantLoanStatuses, t.topN)
	if err != nil {
		return nil, fmt.Errorf("aggregate loans: %w", err)
	}

	now := t.now()
	updated := 0
	for _, c := range counts {
		if err := t.store.UpsertScore(ctx, c.BookID, float64(c.Count), now); err != nil {
			t.logger.Error().Err(err).
				Str("runId", runID).
				Str("bookId", c.BookID).
				Msg("score upsert failed")
			continue
		}
		updated++
	}

	if _, err := t.store.IncrementCounter(ctx, CounterTrainingRuns, 1); err != nil {
		t.logger.Error().Err(err).Str("runId", runID).Msg("training counter increment failed")
	}

	t.notifyTrainingComplete(ctx, runID, updated)

	t.logger.Info().
		Str("runId", runID).
		Int("updated", updated).
		Msg("global recommendation model updated")
	return &TrainResult{RunID: runID, Updated: updated}, nil
}

// notifyTrainingComplete is best-effort: failures are logged, never returned.
func (t *Trainer) notifyTrainingComplete(ctx context.Context, runID string, updated int) {
	if t.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, NotifyTimeout)
	defer cancel()
	if err := t.notifier.NotifyTrainingComplete(ctx, runID, updated); err != nil {
		t.logger.Warn().Err(err).Str("runId", runID).Msg("training notification failed")
	}
}

// PruneObsolete deletes every global score whose book has had no loan within
// the retention window. Returns the number of scores removed.
func (t *Trainer) PruneObsolete(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("%w: retentionDays must be positive", ErrInvalidInput)
	}
	cutoff := t.now().AddDate(0, 0, -retentionDays)
	keep, err := t.store.BookIDsLoanedSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("collect recent loans: %w", err)
	}
	deleted, err := t.store.DeleteScoresNotIn(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("delete obsolete scores: %w", err)
	}
	t.logger.Info().
		Int64("deleted", deleted).
		Int("retentionDays", retentionDays).
		Msg("obsolete recommendations pruned")
	return deleted, nil
}
