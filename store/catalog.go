package store

import (
	"context"

	"github.com/libroteka/recommendation-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BooksByIDs resolves catalog entries for the given ids. Missing ids are
// simply absent from the result, never an error.
func (db *DB) BooksByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := db.Books().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// CandidateBooks returns catalog books outside excludeIDs whose author or
// genre matches one of the given signal sets. Both sets empty yields no
// candidates.
func (db *DB) CandidateBooks(ctx context.Context, excludeIDs []primitive.ObjectID, authors, genres []string) ([]models.Book, error) {
	var or []bson.M
	if len(authors) > 0 {
		or = append(or, bson.M{"author": bson.M{"$in": authors}})
	}
	if len(genres) > 0 {
		or = append(or, bson.M{"genre": bson.M{"$in": genres}})
	}
	if len(or) == 0 {
		return nil, nil
	}
	filter := bson.M{
		"_id": bson.M{"$nin": excludeIDs},
		"$or": or,
	}
	cur, err := db.Books().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}
