package database

import (
	"context"
	"errors"

	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecentSimulations returns the newest limit run records, newest first.
func (s *Store) RecentSimulations(ctx context.Context, limit int) ([]models.Simulation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection(simulationsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify("recent simulations", err, "Simulation")
	}
	defer cursor.Close(ctx)

	sims := []models.Simulation{}
	if err := cursor.All(ctx, &sims); err != nil {
		return nil, classify("decode simulations", err, "Simulation")
	}
	for i := range sims {
		normalizeTags(&sims[i])
	}
	return sims, nil
}

func (s *Store) GetSimulation(ctx context.Context, id primitive.ObjectID) (*models.Simulation, error) {
	var sim models.Simulation
	if err := s.collection(simulationsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&sim); err != nil {
		return nil, classify("get simulation", err, "Simulation")
	}
	normalizeTags(&sim)
	return &sim, nil
}

// SaveSummary records the generated summary and tags on a run that has none
// yet and returns the stored record. When another caller has already saved a
// summary, that one is kept and returned unchanged.
func (s *Store) SaveSummary(ctx context.Context, id primitive.ObjectID, summary string, tags []string) (*models.Simulation, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"aiSummary": bson.M{"$in": bson.A{nil, ""}}},
			bson.M{"tags": bson.M{"$in": bson.A{nil, bson.A{}}}},
		},
	}
	update := bson.M{"$set": bson.M{"aiSummary": summary, "tags": tags}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sim models.Simulation
	err := s.collection(simulationsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&sim)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the run is gone or it was summarized concurrently.
		return s.GetSimulation(ctx, id)
	}
	if err != nil {
		return nil, classify("save summary", err, "Simulation")
	}
	normalizeTags(&sim)
	return &sim, nil
}

// DeleteSimulation removes a run record. Orders and drivers it updated keep
// their state.
func (s *Store) DeleteSimulation(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, simulationsCollection, id, "Simulation")
}

func normalizeTags(sim *models.Simulation) {
	if sim.Tags == nil {
		sim.Tags = []string{}
	}
}
