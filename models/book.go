package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is a catalog entry. The catalog is owned by the book service; this
// service only ever reads it.
type Book struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title  string             `bson:"title,omitempty" json:"title,omitempty"`
	Author string             `bson:"author,omitempty" json:"author,omitempty"`
	Genre  string             `bson:"genre,omitempty" json:"genre,omitempty"`
}
