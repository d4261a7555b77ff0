package database

import (
	"context"
	"fmt"

	"greencart-ops-api/internal/models"
	"greencart-ops-api/internal/simulation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplySimulation writes the delivered orders, the closed driver shifts and the
// run record. With transactions enabled the three writes commit together;
// otherwise they are applied in that order and the first failure stops the rest.
func (s *Store) ApplySimulation(ctx context.Context, c simulation.Commit) (*models.Simulation, error) {
	sim := c.Simulation
	if sim.ID.IsZero() {
		sim.ID = primitive.NewObjectID()
	}
	normalizeTags(&sim)

	write := func(ctx context.Context) error {
		if err := s.markDelivered(ctx, c.Deliveries); err != nil {
			return err
		}
		if err := s.closeShifts(ctx, c.Drivers); err != nil {
			return err
		}
		if _, err := s.collection(simulationsCollection).InsertOne(ctx, sim); err != nil {
			return fmt.Errorf("insert simulation: %w", err)
		}
		return nil
	}

	if !s.transactions {
		if err := write(ctx); err != nil {
			return nil, fmt.Errorf("apply simulation: %w", err)
		}
		return &sim, nil
	}

	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("apply simulation: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, write(sc)
	})
	if err != nil {
		return nil, fmt.Errorf("apply simulation: transaction: %w", err)
	}
	return &sim, nil
}

// markDelivered only touches orders that are still pending, so a delivered
// order is never rewritten.
func (s *Store) markDelivered(ctx context.Context, deliveries []simulation.OrderDelivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(deliveries))
	for _, d := range deliveries {
		filter := bson.M{"_id": d.OrderID, "deliveryTimestamp": bson.M{"$exists": false}}
		update := bson.M{"$set": bson.M{
			"deliveryTimestamp": d.DeliveredAt,
			"isDeliveredOnTime": d.OnTime,
		}}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update))
	}
	if _, err := s.collection(ordersCollection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("mark orders delivered: %w", err)
	}
	return nil
}

func (s *Store) closeShifts(ctx context.Context, drivers []models.Driver) error {
	if len(drivers) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(drivers))
	for _, d := range drivers {
		update := bson.M{"$set": bson.M{
			"past7DayWorkHours": d.Past7DayWorkHours,
			"isFatigued":        d.IsFatigued,
		}}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(bson.M{"_id": d.ID}).SetUpdate(update))
	}
	if _, err := s.collection(driversCollection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("close driver shifts: %w", err)
	}
	return nil
}
