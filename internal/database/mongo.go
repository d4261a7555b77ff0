// Package database is the MongoDB persistence layer: CRUD for drivers, routes,
// orders, simulations and users, plus the atomic write of a simulation run.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greencart-ops-api/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection       = "users"
	driversCollection     = "drivers"
	routesCollection      = "routes"
	ordersCollection      = "orders"
	simulationsCollection = "simulations"
)

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique business-code indexes and the lookup
// indexes the list endpoints rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		routesCollection: {
			{Keys: bson.D{{Key: "routeID", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "orderID", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "deliveryTimestamp", Value: 1}}},
		},
		simulationsCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
	}

	for coll, idx := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("ensure indexes: %s: %w", coll, err)
		}
	}
	return nil
}

// Store implements every persistence interface of the service on one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	// transactions wraps ApplySimulation in a multi-document transaction.
	// Requires a replica set or sharded cluster.
	transactions bool
}

func NewStore(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{client: client, db: db, transactions: transactions}
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// classify turns driver errors into apperr kinds. entity names the record in
// caller-facing messages ("Driver", "Route").
func classify(op string, err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.NotFound, err, entity+" not found.")
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.Conflict, err, entity+" already exists.")
	default:
		return apperr.Wrap(apperr.Internal, fmt.Errorf("%s: %w", op, err), "Database error.")
	}
}

// Ping reports whether the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
