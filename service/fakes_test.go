package service

import (
	"context"
	"sort"
	"time"

	"github.com/libroteka/recommendation-service/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory stand-in for *store.DB covering every store
// interface the services consume.
type fakeStore struct {
	settings map[string]models.UserSettings
	loans    []models.Loan
	books    []models.Book

	scores     map[string]models.GlobalScore
	scoreOrder []string // insertion order, breaks score ties
	userRecs   map[string]int64
	counters   map[string]int64

	upsertErrs map[string]error // bookId -> forced UpsertScore failure
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings:   map[string]models.UserSettings{},
		scores:     map[string]models.GlobalScore{},
		userRecs:   map[string]int64{},
		counters:   map[string]int64{},
		upsertErrs: map[string]error{},
	}
}

func (f *fakeStore) addScore(bookID string, score float64) {
	if _, ok := f.scores[bookID]; !ok {
		f.scoreOrder = append(f.scoreOrder, bookID)
	}
	f.scores[bookID] = models.GlobalScore{BookID: bookID, Score: score}
}

func (f *fakeStore) GetSettings(_ context.Context, userID string) (*models.UserSettings, error) {
	s, ok := f.settings[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) LoansByUser(_ context.Context, userID string, statuses []string) ([]models.Loan, error) {
	allowed := map[string]bool{}
	for _, s := range statuses {
		allowed[s] = true
	}
	var out []models.Loan
	for _, l := range f.loans {
		if l.UserID == userID && allowed[l.Status] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) BooksByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Book
	for _, b := range f.books {
		if want[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) CandidateBooks(_ context.Context, excludeIDs []primitive.ObjectID, authors, genres []string) ([]models.Book, error) {
	if len(authors) == 0 && len(genres) == 0 {
		return nil, nil
	}
	excluded := map[primitive.ObjectID]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	authorSet := map[string]bool{}
	for _, a := range authors {
		authorSet[a] = true
	}
	genreSet := map[string]bool{}
	for _, g := range genres {
		genreSet[g] = true
	}
	var out []models.Book
	for _, b := range f.books {
		if excluded[b.ID] {
			continue
		}
		if authorSet[b.Author] || genreSet[b.Genre] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) TopScores(_ context.Context, n int64) ([]models.GlobalScore, error) {
	order := map[string]int{}
	for i, id := range f.scoreOrder {
		order[id] = i
	}
	out := make([]models.GlobalScore, 0, len(f.scores))
	for _, s := range f.scores {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return order[out[i].BookID] < order[out[j].BookID]
	})
	if int64(len(out)) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeStore) CountLoansByBook(_ context.Context, statuses []string, limit int64) ([]models.BookLoanCount, error) {
	allowed := map[string]bool{}
	for _, s := range statuses {
		allowed[s] = true
	}
	counts := map[string]int64{}
	for _, l := range f.loans {
		if allowed[l.Status] {
			counts[l.BookID]++
		}
	}
	out := make([]models.BookLoanCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, models.BookLoanCount{BookID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].BookID < out[j].BookID
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) BookIDsLoanedSince(_ context.Context, cutoff time.Time) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, l := range f.loans {
		if !l.LoanDate.Before(cutoff) && !seen[l.BookID] {
			seen[l.BookID] = true
			out = append(out, l.BookID)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertScore(_ context.Context, bookID string, score float64, updatedAt time.Time) error {
	if err := f.upsertErrs[bookID]; err != nil {
		return err
	}
	if _, ok := f.scores[bookID]; !ok {
		f.scoreOrder = append(f.scoreOrder, bookID)
	}
	f.scores[bookID] = models.GlobalScore{BookID: bookID, Score: score, UpdatedAt: updatedAt}
	return nil
}

func (f *fakeStore) DeleteScoresNotIn(_ context.Context, keep []string) (int64, error) {
	keepSet := map[string]bool{}
	for _, id := range keep {
		keepSet[id] = true
	}
	var deleted int64
	remaining := f.scoreOrder[:0]
	for _, id := range f.scoreOrder {
		if keepSet[id] {
			remaining = append(remaining, id)
			continue
		}
		delete(f.scores, id)
		deleted++
	}
	f.scoreOrder = remaining
	return deleted, nil
}

func (f *fakeStore) DeleteUserRecommendations(_ context.Context, userID string) (int64, error) {
	n := f.userRecs[userID]
	delete(f.userRecs, userID)
	return n, nil
}

func (f *fakeStore) IncrementCounter(_ context.Context, name string, delta int64) (int64, error) {
	f.counters[name] += delta
	return f.counters[name], nil
}

func (f *fakeStore) CounterValue(_ context.Context, name string) (int64, error) {
	return f.counters[name], nil
}

func (f *fakeStore) ScoreStats(_ context.Context) (int64, float64, error) {
	if len(f.scores) == 0 {
		return 0, 0, nil
	}
	var sum float64
	for _, s := range f.scores {
		sum += s.Score
	}
	return int64(len(f.scores)), sum / float64(len(f.scores)), nil
}

func (f *fakeStore) UpsertSettings(_ context.Context, userID string, patch models.SettingsPatch) error {
	s := f.settings[userID]
	s.UserID = userID
	applyPatch(&s, patch)
	f.settings[userID] = s
	return nil
}

func (f *fakeStore) UpdateSettingsIfExists(_ context.Context, userID string, patch models.SettingsPatch) (bool, error) {
	s, ok := f.settings[userID]
	if !ok {
		return false, nil
	}
	applyPatch(&s, patch)
	f.settings[userID] = s
	return true, nil
}

func (f *fakeStore) SetNotify(_ context.Context, userID string, notify bool) (bool, error) {
	s, ok := f.settings[userID]
	if !ok {
		return false, nil
	}
	s.Notify = notify
	f.settings[userID] = s
	return true, nil
}

func (f *fakeStore) ResetSettings(_ context.Context, userID string, at time.Time) error {
	s := f.settings[userID]
	s.UserID = userID
	s.Genres = []string{}
	s.Notify = false
	t := at
	s.LastRecommendationDate = &t
	f.settings[userID] = s
	return nil
}

func applyPatch(s *models.UserSettings, patch models.SettingsPatch) {
	if patch.Genres != nil {
		s.Genres = *patch.Genres
	}
	if patch.Notify != nil {
		s.Notify = *patch.Notify
	}
}
