package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB wraps the Mongo client. The service owns its own database
// (recommendations, user_settings, counters, users); loans and the book
// catalog live in other services' databases and are read-only here.
type DB struct {
	Client    *mongo.Client
	Database  *mongo.Database
	LoansDB   *mongo.Database
	CatalogDB *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName, loansDB, catalogDB string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &DB{
		Client:    client,
		Database:  client.Database(dbName),
		LoansDB:   client.Database(loansDB),
		CatalogDB: client.Database(catalogDB),
	}, nil
}

func (db *DB) Recommendations() *mongo.Collection {
	return db.Database.Collection("recommendations")
}

func (db *DB) UserSettings() *mongo.Collection {
	return db.Database.Collection("user_settings")
}

func (db *DB) Counters() *mongo.Collection {
	return db.Database.Collection("counters")
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Loans() *mongo.Collection {
	return db.LoansDB.Collection("loans")
}

func (db *DB) Books() *mongo.Collection {
	return db.CatalogDB.Collection("books")
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
