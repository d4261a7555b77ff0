package database

import (
	"context"
	"time"

	"greencart-ops-api/internal/apperr"
	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateUser inserts a manager account. Password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.collection(usersCollection).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Wrap(apperr.Conflict, err, "Username already exists.")
	}
	return classify("create user", err, "User")
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, classify("find user", err, "User")
	}
	return &u, nil
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	n, err := s.collection(usersCollection).CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, classify("count users", err, "User")
	}
	return n > 0, nil
}
