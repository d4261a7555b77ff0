package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a dashboard manager account. Password holds the bcrypt hash.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
