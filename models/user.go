package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants carried in JWT claims. The admin role gates training and
// pruning at the HTTP boundary.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a login account for this service. Regular library members get
// their tokens from the user service; accounts here exist mainly so an
// operator can obtain an admin token to run training.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
