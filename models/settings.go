package models

import "time"

// UserSettings holds a user's recommendation preferences. Genres are stored
// lower-cased, most-preferred first; the order drives candidate ranking.
type UserSettings struct {
	UserID                 string     `bson:"userId" json:"userId"`
	Genres                 []string   `bson:"genres,omitempty" json:"genres,omitempty"`
	Notify                 bool       `bson:"notify" json:"notify"`
	LastRecommendationDate *time.Time `bson:"lastRecommendationDate,omitempty" json:"lastRecommendationDate,omitempty"`
}

// SettingsPatch is a partial settings update. Nil fields are left untouched
// in the stored document.
type SettingsPatch struct {
	Genres *[]string `json:"genres,omitempty"`
	Notify *bool     `json:"notify,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (p SettingsPatch) Empty() bool {
	return p.Genres == nil && p.Notify == nil
}
