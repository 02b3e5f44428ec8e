package store

import (
	"context"
	"time"

	"github.com/libroteka/recommendation-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureSettingsIndex creates a unique index on userId so each user has at
// most one settings document.
func (db *DB) EnsureSettingsIndex(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := db.UserSettings().Indexes().CreateOne(ctx, idx)
	return err
}

// GetSettings returns the settings document for a user, or nil if none.
func (db *DB) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	var s models.UserSettings
	err := db.UserSettings().FindOne(ctx, bson.M{"userId": userID}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func settingsSet(patch models.SettingsPatch) bson.M {
	set := bson.M{}
	if patch.Genres != nil {
		set["genres"] = *patch.Genres
	}
	if patch.Notify != nil {
		set["notify"] = *patch.Notify
	}
	return set
}

// UpsertSettings applies the patch, creating the document when missing. Only
// fields present in the patch are written.
func (db *DB) UpsertSettings(ctx context.Context, userID string, patch models.SettingsPatch) error {
	set := settingsSet(patch)
	set["userId"] = userID
	opts := options.Update().SetUpsert(true)
	_, err := db.UserSettings().UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": set}, opts)
	return err
}

// UpdateSettingsIfExists applies the patch without upserting and reports
// whether a document matched.
func (db *DB) UpdateSettingsIfExists(ctx context.Context, userID string, patch models.SettingsPatch) (bool, error) {
	res, err := db.UserSettings().UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": settingsSet(patch)})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetNotify flips the notify flag for an existing user.
func (db *DB) SetNotify(ctx context.Context, userID string, notify bool) (bool, error) {
	res, err := db.UserSettings().UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": bson.M{"notify": notify}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ResetSettings clears genres, disables notify, and stamps the reset time.
// The document is created if it does not exist yet.
func (db *DB) ResetSettings(ctx context.Context, userID string, at time.Time) error {
	set := bson.M{
		"userId":                 userID,
		"genres":                 []string{},
		"notify":                 false,
		"lastRecommendationDate": at,
	}
	opts := options.Update().SetUpsert(true)
	_, err := db.UserSettings().UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": set}, opts)
	return err
}
