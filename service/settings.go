package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/libroteka/recommendation-service/models"
	"github.com/rs/zerolog"
)

// SettingsStore is the storage surface for preference operations. *store.DB
// implements it.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	UpsertSettings(ctx context.Context, userID string, patch models.SettingsPatch) error
	UpdateSettingsIfExists(ctx context.Context, userID string, patch models.SettingsPatch) (bool, error)
	SetNotify(ctx context.Context, userID string, notify bool) (bool, error)
	ResetSettings(ctx context.Context, userID string, at time.Time) error
	DeleteUserRecommendations(ctx context.Context, userID string) (int64, error)
}

// Settings implements the user preference operations. Writes are partial
// merges: only fields present in a patch touch the stored document.
type Settings struct {
	store  SettingsStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewSettings(store SettingsStore, logger zerolog.Logger) *Settings {
	return &Settings{store: store, logger: logger, now: time.Now}
}

// normalize lower-cases preference genres so ranking is case-insensitive.
func normalize(patch models.SettingsPatch) models.SettingsPatch {
	if patch.Genres == nil {
		return patch
	}
	genres := make([]string, 0, len(*patch.Genres))
	for _, g := range *patch.Genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			genres = append(genres, g)
		}
	}
	patch.Genres = &genres
	return patch
}

// Set creates or updates the user's settings from the patch.
func (s *Settings) Set(ctx context.Context, userID string, patch models.SettingsPatch) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.store.UpsertSettings(ctx, userID, normalize(patch))
}

// Update applies the patch to an existing settings document. An empty patch
// is an input error; a missing document is not found — Update never creates.
func (s *Settings) Update(ctx context.Context, userID string, patch models.SettingsPatch) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if patch.Empty() {
		return fmt.Errorf("%w: no fields provided for update", ErrInvalidInput)
	}
	matched, err := s.store.UpdateSettingsIfExists(ctx, userID, normalize(patch))
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if !matched {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

// SetNotify toggles notifications for an existing user.
func (s *Settings) SetNotify(ctx context.Context, userID string, notify bool) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	matched, err := s.store.SetNotify(ctx, userID, notify)
	if err != nil {
		return fmt.Errorf("set notify: %w", err)
	}
	if !matched {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

// Reset clears the user's genres, disables notifications, stamps the reset
// time, and drops any cached recommendation rows for the user. The global
// model is never touched.
func (s *Settings) Reset(ctx context.Context, userID string) (time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return time.Time{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	at := s.now()
	if err := s.store.ResetSettings(ctx, userID, at); err != nil {
		return time.Time{}, fmt.Errorf("reset settings: %w", err)
	}
	deleted, err := s.store.DeleteUserRecommendations(ctx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("clear cached recommendations: %w", err)
	}
	if deleted > 0 {
		s.logger.Info().Str("userId", userID).Int64("deleted", deleted).Msg("cleared cached recommendations")
	}
	return at, nil
}
