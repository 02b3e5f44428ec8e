package store

import (
	"context"
	"time"

	"github.com/libroteka/recommendation-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// LoansByUser returns the user's loans with one of the given statuses.
func (db *DB) LoansByUser(ctx context.Context, userID string, statuses []string) ([]models.Loan, error) {
	filter := bson.M{
		"userId": userID,
		"status": bson.M{"$in": statuses},
	}
	cur, err := db.Loans().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var loans []models.Loan
	if err := cur.All(ctx, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// CountLoansByBook aggregates fleet-wide loan counts per book for the given
// statuses, most-loaned first. Equal counts order by bookId ascending so the
// top-N window is reproducible.
func (db *DB) CountLoansByBook(ctx context.Context, statuses []string, limit int64) ([]models.BookLoanCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"status": bson.M{"$in": statuses}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$bookId", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}
	cur, err := db.Loans().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var counts []models.BookLoanCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// BookIDsLoanedSince returns the distinct bookIds with at least one loan
// dated on or after the cutoff.
func (db *DB) BookIDsLoanedSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	raw, err := db.Loans().Distinct(ctx, "bookId", bson.M{"loanDate": bson.M{"$gte": cutoff}})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}
