package store

import (
	"context"
	"time"

	"github.com/libroteka/recommendation-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global score documents live in the recommendations collection keyed by
// bookId and carry no userId. Per-user cached rows (if any exist) carry a
// userId and are excluded from every global query here.
var globalScoreFilter = bson.M{"userId": bson.M{"$exists": false}}

// UpsertScore fully replaces the score and timestamp for one book.
func (db *DB) UpsertScore(ctx context.Context, bookID string, score float64, updatedAt time.Time) error {
	set := bson.M{"score": score, "updatedAt": updatedAt}
	opts := options.Update().SetUpsert(true)
	_, err := db.Recommendations().UpdateOne(ctx, bson.M{"bookId": bookID}, bson.M{"$set": set}, opts)
	return err
}

// TopScores returns the n highest-score global entries, descending. Insertion
// order breaks ties, which is stable across reads of unchanged data.
func (db *DB) TopScores(ctx context.Context, n int64) ([]models.GlobalScore, error) {
	opts := options.Find().SetSort(bson.M{"score": -1}).SetLimit(n)
	cur, err := db.Recommendations().Find(ctx, globalScoreFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var scores []models.GlobalScore
	if err := cur.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// DeleteScoresNotIn removes every global score whose bookId is outside keep
// and returns the number removed.
func (db *DB) DeleteScoresNotIn(ctx context.Context, keep []string) (int64, error) {
	filter := bson.M{
		"bookId": bson.M{"$nin": keep},
		"userId": bson.M{"$exists": false},
	}
	res, err := db.Recommendations().DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteUserRecommendations clears any cached per-user rows for the given
// user. Reads always recompute, so this only ever drops stale cache.
func (db *DB) DeleteUserRecommendations(ctx context.Context, userID string) (int64, error) {
	res, err := db.Recommendations().DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ScoreStats returns the total number of global score rows and their average
// score.
func (db *DB) ScoreStats(ctx context.Context) (total int64, avg float64, err error) {
	total, err = db.Recommendations().CountDocuments(ctx, globalScoreFilter)
	if err != nil {
		return 0, 0, err
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: globalScoreFilter}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "avgScore": bson.M{"$avg": "$score"}}}},
	}
	cur, err := db.Recommendations().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		AvgScore float64 `bson:"avgScore"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) > 0 {
		avg = rows[0].AvgScore
	}
	return total, avg, nil
}
