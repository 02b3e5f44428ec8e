package models

import "time"

// GlobalScore is one row of the global popularity model: the number of
// relevant loans a book received in the last training run. Rewritten in full
// on every run for the books the run covers.
type GlobalScore struct {
	BookID    string    `bson:"bookId" json:"bookId"`
	Score     float64   `bson:"score" json:"score"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Recommendation is one ranked entry of a recommendation response. Score is
// nil for catalog-matched candidates (similarity has no numeric score) and
// set for global fallback entries.
type Recommendation struct {
	BookID string   `json:"bookId"`
	Score  *float64 `json:"score"`
}

// RecommendationResult is the full response for one user.
type RecommendationResult struct {
	UserID          string           `json:"userId"`
	Recommendations []Recommendation `json:"recommendations"`
}
