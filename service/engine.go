package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/libroteka/recommendation-service/models"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default result sizes; callers may override with any positive limit.
const (
	DefaultPersonalizedLimit = 5
	DefaultTopLimit          = 20
)

// EngineStore is the storage surface the recommendation engine reads from.
// *store.DB implements it.
type EngineStore interface {
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	LoansByUser(ctx context.Context, userID string, statuses []string) ([]models.Loan, error)
	BooksByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error)
	CandidateBooks(ctx context.Context, excludeIDs []primitive.ObjectID, authors, genres []string) ([]models.Book, error)
	TopScores(ctx context.Context, n int64) ([]models.GlobalScore, error)
}

// Engine produces recommendations. It never writes shared state; any number
// of concurrent reads are safe.
type Engine struct {
	store  EngineStore
	logger zerolog.Logger
}

func NewEngine(store EngineStore, logger zerolog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Personalized recommends up to limit books for the user. With no loan
// history it falls back to the global top scores; otherwise it matches the
// catalog on the authors and genres of borrowed books, excludes everything
// the user already borrowed, and orders by the user's preferred genres.
func (e *Engine) Personalized(ctx context.Context, userID string, limit int) (*models.RecommendationResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	settings, err := e.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	var preferred []string
	if settings != nil {
		preferred = settings.Genres
	}

	loans, err := e.store.LoansByUser(ctx, userID, models.RelevantLoanStatuses)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	if len(loans) == 0 {
		return e.globalFallback(ctx, userID, limit)
	}

	borrowed := e.borrowedIDs(userID, loans)
	authors, genres, err := e.historySignals(ctx, borrowed)
	if err != nil {
		return nil, err
	}
	result := &models.RecommendationResult{UserID: userID, Recommendations: []models.Recommendation{}}
	if len(authors) == 0 && len(genres) == 0 {
		// History exists but carries no usable signal. Distinct from the
		// no-history fallback: the answer is an empty list.
		return result, nil
	}

	candidates, err := e.store.CandidateBooks(ctx, borrowed, authors, genres)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	rankByPreference(candidates, preferred)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for _, b := range candidates {
		result.Recommendations = append(result.Recommendations, models.Recommendation{BookID: b.ID.Hex()})
	}
	return result, nil
}

// TopGlobal returns the limit highest-score global entries, each with its
// numeric score.
func (e *Engine) TopGlobal(ctx context.Context, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	scores, err := e.store.TopScores(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("load global scores: %w", err)
	}
	recs := make([]models.Recommendation, 0, len(scores))
	for _, s := range scores {
		score := s.Score
		recs = append(recs, models.Recommendation{BookID: s.BookID, Score: &score})
	}
	return recs, nil
}

func (e *Engine) globalFallback(ctx context.Context, userID string, limit int) (*models.RecommendationResult, error) {
	recs, err := e.TopGlobal(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &models.RecommendationResult{UserID: userID, Recommendations: recs}, nil
}

// borrowedIDs builds the distinct exclusion set from the user's loans.
// Malformed bookIds are logged and skipped per record; they never abort the
// request.
func (e *Engine) borrowedIDs(userID string, loans []models.Loan) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(loans))
	ids := make([]primitive.ObjectID, 0, len(loans))
	for _, loan := range loans {
		id, err := primitive.ObjectIDFromHex(loan.BookID)
		if err != nil {
			e.logger.Warn().
				Str("userId", userID).
				Str("bookId", loan.BookID).
				Msg("skipping loan with malformed bookId")
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// historySignals resolves borrowed books and extracts the distinct author
// and genre sets. Ids missing from the catalog contribute nothing.
func (e *Engine) historySignals(ctx context.Context, borrowed []primitive.ObjectID) (authors, genres []string, err error) {
	books, err := e.store.BooksByIDs(ctx, borrowed)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve borrowed books: %w", err)
	}
	authorSet := make(map[string]struct{})
	genreSet := make(map[string]struct{})
	for _, b := range books {
		if b.Author != "" {
			if _, ok := authorSet[b.Author]; !ok {
				authorSet[b.Author] = struct{}{}
				authors = append(authors, b.Author)
			}
		}
		if b.Genre != "" {
			if _, ok := genreSet[b.Genre]; !ok {
				genreSet[b.Genre] = struct{}{}
				genres = append(genres, b.Genre)
			}
		}
	}
	return authors, genres, nil
}

// rankByPreference stable-sorts candidates by the position of their genre in
// the user's preference list. Genres absent from the list sort after every
// listed genre, keeping their original relative order. An empty preference
// list leaves the order untouched.
func rankByPreference(candidates []models.Book, preferred []string) {
	if len(preferred) == 0 {
		return
	}
	rank := make(map[string]int, len(preferred))
	for i, g := range preferred {
		rank[strings.ToLower(g)] = i
	}
	pos := func(b models.Book) int {
		if r, ok := rank[strings.ToLower(b.Genre)]; ok {
			return r
		}
		return len(preferred)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return pos(candidates[i]) < pos(candidates[j])
	})
}
